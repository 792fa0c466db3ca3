package basis

import "sync/atomic"

// busyFlag guards the single active transcoding pass of a Transcoder.
// It never blocks: contenders learn immediately that the flag is taken.
type busyFlag struct {
	v atomic.Bool
}

// tryAcquire takes the flag if it is free.
func (b *busyFlag) tryAcquire() bool {
	return b.v.CompareAndSwap(false, true)
}

func (b *busyFlag) release() {
	b.v.Store(false)
}

func (b *busyFlag) held() bool {
	return b.v.Load()
}
