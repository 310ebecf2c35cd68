package kafka

import (
	"context"
	"math/rand"
	"time"
)

// backoff — экспоненциальная задержка с равным джиттером.
// Не потокобезопасен: принадлежит одному циклу Run.
type backoff struct {
	initial time.Duration
	ceiling time.Duration
	base    time.Duration
	rnd     *rand.Rand
}

func newBackoff(initial, ceiling time.Duration, seed int64) *backoff {
	return &backoff{
		initial: initial,
		ceiling: max(initial, ceiling),
		base:    initial,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// next — очередная задержка; база удваивается до потолка.
func (b *backoff) next() time.Duration {
	d := b.jitter(b.base)
	b.base = min(b.base*2, b.ceiling)
	return d
}

func (b *backoff) reset() { b.base = b.initial }

// jitter — d/2 плюс случайная добавка из [0, d/2].
func (b *backoff) jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(b.rnd.Int63n(int64(d-half)+1))
}

// sleepCtx — false, если контекст отменён раньше, чем прошло d.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
