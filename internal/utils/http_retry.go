package utils

import (
	"context"
	"fmt"
	"time"
)

// LinearBackoff 第 n 次失败后等待 n*base
func LinearBackoff(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// DoWithRetry 最多执行 maxAttempts 次，fn 收到当前是第几次
func DoWithRetry(ctx context.Context, maxAttempts int, backoff func(attempt int) time.Duration, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		// 最后一次失败则直接返回
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("上下文已取消或超时: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
