package service

import (
	"context"
	"time"
)

// Latency giả lập độ trễ mạng cho các thao tác auth.
type Latency interface {
	Wait(ctx context.Context) error
}

type FixedLatency time.Duration

func (d FixedLatency) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoLatency dùng trong test.
var NoLatency Latency = FixedLatency(0)
