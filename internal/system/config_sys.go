package system

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mpay-order-api/internal/logger"
	mainmodel "mpay-order-api/internal/model/main"
	rediskey "mpay-order-api/internal/types/redis-key"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	// KeyTelegramGroup 异常告警群
	KeyTelegramGroup = "sys.telegram.notify.group"
)

// Entry 参数值，同时是缓存内容
type Entry struct {
	ConfigId    int       `json:"id"`
	ConfigKey   string    `json:"key"`
	ConfigValue string    `json:"value"`
	UpdateTime  time.Time `json:"updatedAt"`
}

// HashCache *redis.Client 已实现
type HashCache interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
}

type ConfigSystem struct {
	db    *gorm.DB
	cache HashCache // 可为空
}

func NewConfigSystem(db *gorm.DB, cache HashCache) *ConfigSystem {
	return &ConfigSystem{db: db, cache: cache}
}

// GetConfigByConfigKey 根据参数key获取参数值，不存在时 ConfigId 为 0
func (s *ConfigSystem) GetConfigByConfigKey(ctx context.Context, configKey string) (Entry, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Model(&mainmodel.SysConfig{}).
		Where("config_key = ?", configKey).Order("config_id DESC").Limit(1).Scan(&entry).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return entry, err
	}
	return entry, nil
}

// GetConfigCacheByConfigKey 缓存不为空不从数据库读取
func (s *ConfigSystem) GetConfigCacheByConfigKey(ctx context.Context, configKey string) (Entry, error) {
	if s.cache != nil {
		if raw, _ := s.cache.HGet(ctx, rediskey.SysConfigKey(), configKey).Result(); raw != "" {
			var cached Entry
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	entry, err := s.GetConfigByConfigKey(ctx, configKey)
	if err != nil {
		return entry, err
	}
	if entry.ConfigId > 0 && s.cache != nil {
		b, _ := json.Marshal(&entry)
		if err := s.cache.HSet(ctx, rediskey.SysConfigKey(), configKey, string(b)).Err(); err != nil {
			logger.L.Warnf("[SYS-CONFIG] 写缓存失败 key=%s: %v", configKey, err)
		}
	}
	return entry, nil
}

// Value 取参数值，没有配置或读取失败时用 fallback
func (s *ConfigSystem) Value(ctx context.Context, configKey, fallback string) string {
	entry, err := s.GetConfigCacheByConfigKey(ctx, configKey)
	if err != nil {
		logger.L.Warnf("[SYS-CONFIG] 读取参数失败 key=%s: %v", configKey, err)
		return fallback
	}
	if v := strings.TrimSpace(entry.ConfigValue); v != "" {
		return v
	}
	return fallback
}

// Evict 管理端修改参数后清除缓存
func (s *ConfigSystem) Evict(ctx context.Context, configKey string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.HDel(ctx, rediskey.SysConfigKey(), configKey).Err()
}
