package mailprobe

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll validates addresses on a fixed pool of workers pulling from a
// shared queue. It returns exactly one Outcome per address, in completion
// order rather than input order; an address failing a stage never aborts
// the batch.
//
// If ctx is cancelled the queue stops, in-flight probes are interrupted,
// and RunAll returns the outcomes collected so far together with ctx.Err().
// Aborted addresses produce no Outcome.
func (v *Validator) RunAll(ctx context.Context, addresses []string, opts ...BatchOptions) ([]Outcome, error) {
	o := defaultBatchOptions()
	if len(opts) > 0 {
		o = opts[0]
		if o.Workers == 0 {
			o.Workers = defaultBatchOptions().Workers
		}
	}
	if o.Workers < 0 {
		return nil, ErrInvalidConcurrency
	}
	if _, err := v.pipeline(); err != nil {
		return nil, err
	}

	total := len(addresses)
	outcomes := make([]Outcome, 0, total)
	if total == 0 {
		return outcomes, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	results := make(chan Outcome)

	g.Go(func() error {
		defer close(jobs)
		for _, a := range addresses {
			select {
			case jobs <- a:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range min(o.Workers, total) {
		g.Go(func() error {
			for a := range jobs {
				res, err := v.Validate(gctx, a)
				if err != nil {
					return err
				}
				select {
				case results <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(results)
	}()

	for res := range results {
		outcomes = append(outcomes, res)
		if o.Progress != nil {
			o.Progress(len(outcomes), total)
		}
	}

	err := <-waitErr
	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcomes, ctxErr
	}
	return outcomes, err
}
