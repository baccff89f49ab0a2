package medium

import (
	"sync"
	"time"
)

// Deferred postpones commits to an inner medium. Writes land in a private copy
// of the image; Commit publishes that copy to the inner medium and re-arms a
// timer, and the timer, Flush or Close commits the inner medium. The inner
// medium therefore only ever holds images that were passed to Commit. An
// interval of zero commits immediately.
type Deferred struct {
	inner    Medium
	interval time.Duration
	timer    *time.Timer
	mutex    sync.Mutex
	shadow   []byte
	lo, hi   int // bytes written since the last publish
	dirty    bool
	flushes  int
	lastErr  error
}

// NewDeferred wraps inner.
func NewDeferred(inner Medium, interval time.Duration) *Deferred {
	d := &Deferred{
		inner:    inner,
		interval: interval,
		shadow:   Snapshot(inner),
		lo:       inner.Size(),
	}
	if interval > 0 {
		d.timer = time.AfterFunc(interval, func() {
			d.mutex.Lock()
			defer d.mutex.Unlock()
			d.lastErr = d.flush() // nobody to report to from the timer
		})
		d.timer.Stop()
	}
	return d
}

// Read returns a byte of the working image.
func (d *Deferred) Read(offset int) byte {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.shadow[offset]
}

// Write changes the working image only.
func (d *Deferred) Write(offset int, value byte) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.shadow[offset] = value
	if offset < d.lo {
		d.lo = offset
	}
	if offset+1 > d.hi {
		d.hi = offset + 1
	}
}

// Size returns the size of the image.
func (d *Deferred) Size() int {
	return len(d.shadow)
}

// Commit copies the working image to the inner medium and schedules its
// commit.
func (d *Deferred) Commit() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.publish()
	d.dirty = true
	if d.timer == nil {
		return d.flush()
	}
	d.timer.Reset(d.interval)
	return nil
}

// Flush commits published changes now.
func (d *Deferred) Flush() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.flush()
}

func (d *Deferred) publish() {
	for i := d.lo; i < d.hi; i++ {
		d.inner.Write(i, d.shadow[i])
	}
	d.lo, d.hi = len(d.shadow), 0
}

func (d *Deferred) flush() error {
	if !d.dirty {
		return nil
	}
	if err := d.inner.Commit(); err != nil {
		return err
	}
	d.dirty = false
	d.flushes++
	return nil
}

// Dirty reports whether a commit is pending.
func (d *Deferred) Dirty() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.dirty
}

// Flushes returns the number of commits that reached the inner medium.
func (d *Deferred) Flushes() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.flushes
}

// Err returns the error of the last timer-driven flush, if any.
func (d *Deferred) Err() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.lastErr
}

// Close stops the timer and commits what was published. Writes never passed
// to Commit are dropped.
func (d *Deferred) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	return d.flush()
}
