package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// WeightedNode 表示一个有权节点
type WeightedNode struct {
	ID      uint64
	Weight  int
	Current int
}

// SmoothWeightedRR 平滑加权轮询（Redis 持久化状态）
// redisKey: 全局唯一状态键，例如 mpay:rr:{mid}:{type}
// weights: map[通道ID]权重
// 返回被选中的通道ID，没有可选节点返回 0
func SmoothWeightedRR(ctx context.Context, rdb *redis.Client, redisKey string, weights map[uint64]int) uint64 {
	if len(weights) == 0 {
		return 0
	}

	// 尝试读取历史状态，读不到就从零开始
	last := map[uint64]int{}
	if rdb != nil {
		if stateJSON, err := rdb.Get(ctx, redisKey).Result(); err == nil && stateJSON != "" {
			if err := json.Unmarshal([]byte(stateJSON), &last); err != nil {
				logrus.Warnf("[SW-RR] 解析Redis状态失败: %v", err)
			}
		}
	}

	var nodes []WeightedNode
	var total int
	for id, w := range weights {
		if w <= 0 {
			continue
		}
		total += w
		nodes = append(nodes, WeightedNode{ID: id, Weight: w, Current: last[id] + w})
	}
	if len(nodes) == 0 {
		return 0
	}

	// 找出当前最大 current 的节点，相同取 ID 小的，保证结果稳定
	best := &nodes[0]
	for i := range nodes {
		if nodes[i].Current > best.Current || (nodes[i].Current == best.Current && nodes[i].ID < best.ID) {
			best = &nodes[i]
		}
	}

	best.Current -= total
	for _, n := range nodes {
		last[n.ID] = n.Current
	}

	if rdb != nil {
		b, _ := json.Marshal(last)
		if err := rdb.Set(ctx, redisKey, string(b), 10*time.Minute).Err(); err != nil {
			logrus.Warnf("[SW-RR] Redis写入失败: %v", err)
		}
	}
	return best.ID
}
