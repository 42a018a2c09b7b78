package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPool_DoReturnsResult(t *testing.T) {
	pool := NewPool(2)

	got, meta := pool.Do(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if meta.TimedOut || meta.Err != nil {
		t.Fatalf("Do() meta = %+v", meta)
	}
	if got != "ok" {
		t.Fatalf("Do() = %q, want ok", got)
	}
}

func TestPool_DoTimeout(t *testing.T) {
	pool := NewPool(1)

	started := time.Now()
	got, meta := pool.Do(context.Background(), 30*time.Millisecond, func(ctx context.Context) (string, error) {
		time.Sleep(300 * time.Millisecond)
		return "late", nil
	})
	if !meta.TimedOut {
		t.Fatalf("Do() meta = %+v, want timed out", meta)
	}
	if got != "" {
		t.Fatalf("Do() = %q, want empty", got)
	}
	if elapsed := time.Since(started); elapsed > 200*time.Millisecond {
		t.Fatalf("Do() blocked for %v past the timeout", elapsed)
	}
}

func TestPool_DoError(t *testing.T) {
	pool := NewPool(1)

	wantErr := errors.New("provider down")
	_, meta := pool.Do(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if meta.TimedOut {
		t.Fatalf("Do() meta = %+v, want error without timeout", meta)
	}
	if !errors.Is(meta.Err, wantErr) {
		t.Fatalf("Do() err = %v, want %v", meta.Err, wantErr)
	}
}

func TestPool_SlotWaitCountsAgainstTimeout(t *testing.T) {
	pool := NewPool(1)

	release := make(chan struct{})
	go pool.Do(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		<-release
		return "first", nil
	})
	time.Sleep(20 * time.Millisecond)

	_, meta := pool.Do(context.Background(), 50*time.Millisecond, func(ctx context.Context) (string, error) {
		return "second", nil
	})
	close(release)

	if !meta.TimedOut {
		t.Fatalf("Do() meta = %+v, want timeout while waiting for a slot", meta)
	}
}
