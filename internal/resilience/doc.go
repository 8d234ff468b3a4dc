// Package resilience groups the fault tolerance building blocks the
// fetch pipeline leans on: circuit breakers in front of the upstream
// search API and the report providers, and retry with exponential
// backoff for feed and model calls.
//
// A breaker and a retry loop compose with the breaker innermost, so an
// open circuit fails fast instead of burning retry attempts:
//
//	cb := circuitbreaker.New(circuitbreaker.SearchAPIConfig())
//	err := retry.WithBackoff(ctx, retry.DefaultConfig(), func() error {
//	    _, err := cb.Execute(ctx, func(ctx context.Context) (any, error) {
//	        return callUpstream(ctx)
//	    })
//	    return err
//	})
package resilience
