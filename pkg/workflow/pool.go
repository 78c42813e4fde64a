package workflow

import (
	"context"
	"runtime"
	"sync"

	"github.com/arjun2112/finops-engine/pkg/models"
)

// BatchResult pairs one alert's terminal state with the error that
// ended its run, if any.
type BatchResult struct {
	Alert models.AlertRecord
	State models.WorkflowState
	Err   error
}

// BatchRunner executes independent runs concurrently with a bounded
// worker count. Runs for distinct alerts never share state; payment
// ordering is handled by the payment collaborator, not here.
type BatchRunner struct {
	engine  *Engine
	workers int
}

func NewBatchRunner(engine *Engine, workers int) *BatchRunner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchRunner{engine: engine, workers: workers}
}

// Run processes every alert and returns one result per alert, in input
// order. A failed run does not stop the rest of the batch.
func (b *BatchRunner) Run(ctx context.Context, alerts []models.AlertRecord) []BatchResult {
	results := make([]BatchResult, len(alerts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				state, err := b.engine.Run(ctx, alerts[i])
				results[i] = BatchResult{Alert: alerts[i], State: state, Err: err}
			}
		}()
	}

	for i := range alerts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
