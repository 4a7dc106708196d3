package verify

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
	"github.com/df07/go-phase-functions/pkg/phase"
)

// BatchTask represents a batch of samples for the worker pool
type BatchTask struct {
	BatchID int // Also offsets the seed so batches are reproducible
	Samples int
}

// BatchResult contains the statistics gathered for a batch
type BatchResult struct {
	BatchID int
	Stats   BatchStats
}

// WorkerPool runs sample batches against one phase function in parallel
type WorkerPool struct {
	taskQueue   chan BatchTask
	resultQueue chan BatchResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker evaluates batches of samples
type Worker struct {
	ID          int
	pf          phase.PhaseFunction
	mi          *medium.Interaction
	seed        int64
	taskQueue   chan BatchTask
	resultQueue chan BatchResult
}

// NewWorkerPool creates a worker pool with room for numBatches tasks
func NewWorkerPool(pf phase.PhaseFunction, mi *medium.Interaction, seed int64, numWorkers, numBatches int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan BatchTask, numBatches),
		resultQueue: make(chan BatchResult, numBatches),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			pf:          pf,
			mi:          mi,
			seed:        seed,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for submitted batches to finish and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a batch to the worker pool
func (wp *WorkerPool) SubmitTask(task BatchTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed batch
func (wp *WorkerPool) GetResult() (BatchResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		sampler := core.NewRandomSampler(rand.New(rand.NewSource(w.seed + int64(task.BatchID))))
		w.resultQueue <- BatchResult{
			BatchID: task.BatchID,
			Stats:   runBatch(w.pf, w.mi, sampler, task.Samples),
		}
	}
}

// runBatch draws n samples and checks normalization, sampling consistency
// and component decomposition
func runBatch(pf phase.PhaseFunction, mi *medium.Interaction, sampler core.Sampler, n int) BatchStats {
	var stats BatchStats
	all := phase.NewContext()
	components := pf.ComponentCount()

	for i := 0; i < n; i++ {
		// Uniform sphere direction: Eval / (1/4π) estimates the integral
		wo := core.SampleOnUnitSphere(sampler.Get2D())
		value := pf.Eval(all, mi, wo)
		stats.Integral.AddSample(value / core.InvFourPi)

		if components > 1 {
			var sum float64
			for c := 0; c < components; c++ {
				sum += pf.Eval(phase.ComponentContext(c), mi, wo)
			}
			stats.MaxComponent = math.Max(stats.MaxComponent, math.Abs(sum-value))
		}

		result := pf.Sample(all, mi, sampler.Get1D(), sampler.Get2D())
		if !validSample(result) {
			stats.InvalidSamples++
			continue
		}
		if result.PDF == 0 {
			stats.ZeroPDFSamples++
			continue
		}
		evaluated := pf.Eval(all, mi, result.Direction)
		stats.MaxPDFError = math.Max(stats.MaxPDFError, relativeError(result.PDF, evaluated))
	}

	return stats
}

func validSample(result phase.SampleResult) bool {
	d := result.Direction
	if math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsNaN(d.Z) || math.IsNaN(result.PDF) || result.PDF < 0 {
		return false
	}
	return result.PDF == 0 || math.Abs(d.Length()-1) < 1e-6
}
