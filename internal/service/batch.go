package service

import (
	"context"
	"sync"

	"github.com/fortuna/janus/internal/picks"
)

// Job is one pick and its latest snapshot
type Job struct {
	Pick     picks.Pick         `json:"pick"`
	Snapshot picks.LiveSnapshot `json:"snapshot"`
}

// BatchResult is one job's outcome. Results keep the order of the submitted jobs.
type BatchResult struct {
	PickID     string      `json:"pick_id"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// EvaluateBatch evaluates jobs on a bounded worker pool
func (s *PickService) EvaluateBatch(ctx context.Context, jobs []Job) []BatchResult {
	results := make([]BatchResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := min(s.workers, len(jobs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = s.evaluateJob(ctx, jobs[i])
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

func (s *PickService) evaluateJob(ctx context.Context, job Job) BatchResult {
	res := BatchResult{PickID: job.Pick.ID}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}
	eval, err := s.Evaluate(ctx, job.Pick, job.Snapshot)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Evaluation = eval
	return res
}
