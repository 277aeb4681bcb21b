package tracer

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// A cpu worker processes one row block per pool run.
type cpuWorker struct {
	id    string
	stats Stats
}

func (w *cpuWorker) Id() string {
	return w.id
}

func (w *cpuWorker) SpeedEstimate() float32 {
	return 1.0
}

func (w *cpuWorker) Stats() *Stats {
	return &w.stats
}

// The row pool splits buffer rows into blocks using a BlockScheduler and
// processes the blocks concurrently. Runs must not overlap.
type rowPool struct {
	cpu       []*cpuWorker
	scheduler BlockScheduler
}

func newRowPool(numWorkers int, scheduler BlockScheduler) *rowPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if scheduler == nil {
		scheduler = PerfectScheduler()
	}

	p := &rowPool{
		cpu:       make([]*cpuWorker, numWorkers),
		scheduler: scheduler,
	}
	for idx := range p.cpu {
		p.cpu[idx] = &cpuWorker{id: fmt.Sprintf("cpu-%d", idx)}
	}
	return p
}

// Invoke fn for consecutive row ranges [y0, y1) covering [0, frameH).
func (p *rowPool) run(frameH int, fn func(y0, y1 int) error) error {
	if frameH <= 0 {
		return nil
	}

	numWorkers := min(len(p.cpu), frameH)
	workers := make([]Worker, numWorkers)
	for idx := range workers {
		workers[idx] = p.cpu[idx]
	}

	blockAssignment := p.scheduler.Schedule(workers, uint32(frameH))

	var group errgroup.Group
	blockY := 0
	for idx, blockH := range blockAssignment {
		if blockH == 0 {
			continue
		}
		worker, y0, y1 := p.cpu[idx], blockY, blockY+int(blockH)
		blockY = y1

		group.Go(func() error {
			start := time.Now()
			err := fn(y0, y1)
			worker.stats = Stats{BlockH: uint32(y1 - y0), BlockTime: time.Since(start)}
			return err
		})
	}
	return group.Wait()
}
