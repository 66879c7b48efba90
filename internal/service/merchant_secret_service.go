package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"mpay-order-api/internal/dao"
	mainmodel "mpay-order-api/internal/model/main"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// MerchantReader 商户查询，MainDao 实现
type MerchantReader interface {
	GetMerchant(ctx context.Context, mid uint64) (*mainmodel.Merchant, error)
}

type cachedMerchant struct {
	m        *mainmodel.Merchant
	loadedAt time.Time
}

// MerchantSecretService 商户密钥查询，LRU 缓存 + singleflight 合并并发回源
type MerchantSecretService struct {
	reader MerchantReader
	cache  *lru.Cache
	ttl    time.Duration
	group  singleflight.Group
}

func NewMerchantSecretService(reader MerchantReader, size int, ttl time.Duration) *MerchantSecretService {
	if size <= 0 {
		size = 1024
	}
	c, _ := lru.New(size) // size > 0 时不会出错
	return &MerchantSecretService{reader: reader, cache: c, ttl: ttl}
}

func NewDefaultMerchantSecretService(size int, ttl time.Duration) *MerchantSecretService {
	return NewMerchantSecretService(dao.NewMainDao(), size, ttl)
}

// Merchant 不存在返回 nil, nil
func (s *MerchantSecretService) Merchant(ctx context.Context, mid uint64) (*mainmodel.Merchant, error) {
	if v, ok := s.cache.Get(mid); ok {
		entry := v.(cachedMerchant)
		if s.ttl <= 0 || time.Since(entry.loadedAt) < s.ttl {
			return entry.m, nil
		}
		s.cache.Remove(mid)
	}

	v, err, _ := s.group.Do(strconv.FormatUint(mid, 10), func() (interface{}, error) {
		m, err := s.reader.GetMerchant(ctx, mid)
		if err != nil {
			return nil, fmt.Errorf("load merchant %d: %w", mid, err)
		}
		if m != nil {
			s.cache.Add(mid, cachedMerchant{m: m, loadedAt: time.Now()})
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.(*mainmodel.Merchant)
	return m, nil
}

// Secret 商户未配置密钥或商户不存在时返回空串
func (s *MerchantSecretService) Secret(ctx context.Context, mid uint64) (string, error) {
	m, err := s.Merchant(ctx, mid)
	if err != nil || m == nil {
		return "", err
	}
	return m.SecretKey, nil
}

// Invalidate 管理端改密钥后调用
func (s *MerchantSecretService) Invalidate(mid uint64) {
	s.cache.Remove(mid)
}
