package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a program runs longer than EvalTimeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer Evaluate call started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	res EvalResult
	err error
}

// waitWithTimeout blocks until ch delivers or EvalTimeout elapses. A result
// whose generation gen is no longer *currentGen is dropped. A timed-out
// goroutine keeps running and its late send lands in the buffered channel.
func waitWithTimeout(ch <-chan evalResult, gen uint64, mu *sync.Mutex, currentGen *uint64) (EvalResult, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	var r evalResult
	select {
	case r = <-ch:
	case <-timer.C:
		return EvalResult{}, fmt.Errorf("%w after %s", ErrTimeout, EvalTimeout)
	}

	mu.Lock()
	stale := gen != *currentGen
	mu.Unlock()
	if stale {
		return EvalResult{}, ErrSuperseded
	}
	return r.res, r.err
}
