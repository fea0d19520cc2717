package worker

import (
	"context"
	"sync"
)

// Result pairs an input index with the outcome of processing it.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Map runs fn over inputs with up to workerCount goroutines and returns the
// results in input order. Inputs not started before ctx is cancelled get
// ctx.Err() as their error.
func Map[In, Out any](ctx context.Context, workerCount int, inputs []In, fn func(ctx context.Context, in In) (Out, error)) []Result[Out] {
	if workerCount <= 0 {
		workerCount = 1
	}

	type job struct {
		index int
		input In
	}

	jobChan := make(chan job, len(inputs))
	for i, in := range inputs {
		jobChan <- job{index: i, input: in}
	}
	close(jobChan)

	resultsChan := make(chan Result[Out], len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				if err := ctx.Err(); err != nil {
					resultsChan <- Result[Out]{Index: j.index, Err: err}
					continue
				}
				out, err := fn(ctx, j.input)
				resultsChan <- Result[Out]{Index: j.index, Value: out, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Single reader, so no locking on results.
	results := make([]Result[Out], len(inputs))
	for res := range resultsChan {
		results[res.Index] = res
	}
	return results
}
