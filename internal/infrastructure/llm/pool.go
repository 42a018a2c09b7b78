package llm

import (
	"context"
	"time"
)

// Pool bounds concurrent chat calls. A call that outlives its timeout keeps
// running and holds its slot until it finishes; only its result is discarded.
type Pool struct {
	slots chan struct{}
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 4
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// CallMeta describes how a pooled call ended.
type CallMeta struct {
	TimedOut bool
	Err      error
}

type callResult struct {
	text string
	err  error
}

// Do runs fn on a pool slot and waits at most timeout for the result,
// including time spent waiting for a free slot. The inner context is
// detached from the caller's cancellation so the provider call is
// fire-and-forget past the deadline.
func (p *Pool) Do(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (string, error)) (string, CallMeta) {
	resCh := make(chan callResult, 1)
	detached := context.WithoutCancel(ctx)

	go func() {
		p.slots <- struct{}{}
		defer func() { <-p.slots }()

		text, err := fn(detached)
		resCh <- callResult{text: text, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-resCh:
		if res.err != nil {
			return "", CallMeta{Err: res.err}
		}
		return res.text, CallMeta{}
	case <-timer.C:
		return "", CallMeta{TimedOut: true}
	case <-ctx.Done():
		return "", CallMeta{TimedOut: true, Err: ctx.Err()}
	}
}
