package serving

import (
	"context"
	"sync"
	"time"
)

// rwGate arbitrates access to the composed model. Generations hold shared
// slots and may run concurrently; a compose holds the exclusive slot, waits
// for admitted readers to drain, and blocks other writers. Writer priority
// once queued: readers arriving behind a queued writer are held until the
// writer releases, so a switch cannot be starved by a steady read load.
type rwGate struct {
	mu           sync.Mutex
	readers      int // admitted shared holders
	writerActive bool
	readerQ      []*gateWaiter
	writerQ      []*gateWaiter
}

type gateWaiter struct {
	ready chan struct{} // closed once the slot is granted
}

func newRWGate() *rwGate { return &rwGate{} }

// acquireShared admits a reader. Blocks while a writer is active or queued,
// up to maxWait. On timeout a tooBusyError is returned; on ctx cancellation
// ctx.Err(). Slot accounting stays exact even when the grant races the
// cancellation: a granted-then-abandoned slot is taken and released.
func (g *rwGate) acquireShared(ctx context.Context, op string, maxWait time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	if !g.writerActive && len(g.writerQ) == 0 {
		g.readers++
		g.mu.Unlock()
		return nil
	}
	w := &gateWaiter{ready: make(chan struct{})}
	g.readerQ = append(g.readerQ, w)
	g.mu.Unlock()

	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		return g.abandonShared(w, ctx.Err())
	case <-timer.C:
		return g.abandonShared(w, tooBusyError{op: op})
	}
}

// abandonShared removes w from the reader queue. If the grant already
// happened, the slot is consumed and released immediately.
func (g *rwGate) abandonShared(w *gateWaiter, reason error) error {
	g.mu.Lock()
	for i, q := range g.readerQ {
		if q == w {
			g.readerQ = append(g.readerQ[:i], g.readerQ[i+1:]...)
			g.mu.Unlock()
			return reason
		}
	}
	g.mu.Unlock()
	<-w.ready
	g.releaseShared()
	return reason
}

func (g *rwGate) releaseShared() {
	g.mu.Lock()
	g.readers--
	g.promote()
	g.mu.Unlock()
}

// acquireExclusive admits a writer, waiting for in-flight readers to drain.
// Writers are serialized among themselves.
func (g *rwGate) acquireExclusive(ctx context.Context, op string, maxWait time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	if !g.writerActive && g.readers == 0 && len(g.writerQ) == 0 {
		g.writerActive = true
		g.mu.Unlock()
		return nil
	}
	w := &gateWaiter{ready: make(chan struct{})}
	g.writerQ = append(g.writerQ, w)
	g.mu.Unlock()

	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		return g.abandonExclusive(w, ctx.Err())
	case <-timer.C:
		return g.abandonExclusive(w, tooBusyError{op: op})
	}
}

func (g *rwGate) abandonExclusive(w *gateWaiter, reason error) error {
	g.mu.Lock()
	for i, q := range g.writerQ {
		if q == w {
			g.writerQ = append(g.writerQ[:i], g.writerQ[i+1:]...)
			// Removing a queued writer may unblock held readers.
			g.promote()
			g.mu.Unlock()
			return reason
		}
	}
	g.mu.Unlock()
	<-w.ready
	g.releaseExclusive()
	return reason
}

func (g *rwGate) releaseExclusive() {
	g.mu.Lock()
	g.writerActive = false
	g.promote()
	g.mu.Unlock()
}

// promote grants the gate to the next eligible party. Queued writers win
// over queued readers; readers are only released in bulk when no writer is
// active or queued. Caller holds g.mu.
func (g *rwGate) promote() {
	if g.writerActive {
		return
	}
	if len(g.writerQ) > 0 {
		if g.readers == 0 {
			w := g.writerQ[0]
			g.writerQ = g.writerQ[1:]
			g.writerActive = true
			close(w.ready)
		}
		// Readers keep draining; queued readers stay held.
		return
	}
	for _, r := range g.readerQ {
		g.readers++
		close(r.ready)
	}
	g.readerQ = nil
}

// gateStats is a consistent point-in-time view for status reporting.
type gateStats struct {
	Readers       int
	QueuedReaders int
	WriterActive  bool
	QueuedWriters int
}

func (g *rwGate) stats() gateStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gateStats{
		Readers:       g.readers,
		QueuedReaders: len(g.readerQ),
		WriterActive:  g.writerActive,
		QueuedWriters: len(g.writerQ),
	}
}
