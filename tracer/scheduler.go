package tracer

import (
	"math"
	"time"
)

// A Worker processes row blocks of stage buffers.
type Worker interface {
	// Get worker id.
	Id() string

	// Get the worker's computation speed estimate compared to a baseline
	// worker.
	SpeedEstimate() float32

	// Retrieve last block statistics.
	Stats() *Stats
}

// Worker statistics.
type Stats struct {
	// The processed block height
	BlockH uint32

	// The time for processing this block
	BlockTime time.Duration
}

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of workers using feedback collected from previous blocks.
	//
	// This function returns the block height assignment for each worker
	// in the input list.
	Schedule(workers []Worker, frameH uint32) []uint32
}

// The naive scheduler splits the frame according to the worker speed estimates.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(workers []Worker, frameH uint32) []uint32 {
	if len(sch.blockAssignment) != len(workers) {
		sch.blockAssignment = make([]uint32, len(workers))
	}
	assignBySpeed(sch.blockAssignment, workers, frameH)
	return sch.blockAssignment
}

// The perfect scheduler assumes that the volume of work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of workers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for worker w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(workers []Worker, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of workers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(workers) {
		sch.blockAssignment = make([]uint32, len(workers))
		assignBySpeed(sch.blockAssignment, workers, frameH)
		return sch.blockAssignment
	}

	// Use last frame statistics
	var total float64
	throughput := make([]float64, len(workers))
	for idx, w := range workers {
		stats := w.Stats()
		blockTime := math.Max(1, float64(stats.BlockTime))
		throughput[idx] = float64(stats.BlockH) / blockTime
		total += throughput[idx]
	}

	// No feedback yet
	if total == 0 {
		assignBySpeed(sch.blockAssignment, workers, frameH)
		return sch.blockAssignment
	}

	scaler := float64(frameH) / total
	for idx := range workers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(throughput[idx]*scaler)))
	}
	balance(sch.blockAssignment, frameH)

	return sch.blockAssignment
}

func assignBySpeed(blockAssignment []uint32, workers []Worker, frameH uint32) {
	var total float64
	for _, w := range workers {
		total += float64(w.SpeedEstimate())
	}
	scaler := float64(frameH) / total

	for idx, w := range workers {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(w.SpeedEstimate())*scaler)))
	}
	balance(blockAssignment, frameH)
}

// Ensure that the block assignment covers exactly frameH rows. Missing rows
// are appended to the first worker; excess rows are removed from the
// largest blocks.
func balance(blockAssignment []uint32, frameH uint32) {
	var scheduledRows uint32
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return
	}

	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows > blockAssignment[largest] {
				largest = idx
			}
		}
		blockAssignment[largest]--
	}
}
