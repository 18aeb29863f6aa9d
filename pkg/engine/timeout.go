package engine

import (
	"sync"
	"time"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// Error types of fatal evaluation failures.
const (
	ErrEvalTimeout    = "eval_timeout"
	ErrEvalSuperseded = "eval_superseded"
	ErrEvalPanic      = "eval_panic"
)

// evalResult carries the outcome of one evaluation goroutine.
type evalResult struct {
	tree   *csg.Tree
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch for at most timeout. A result
// whose generation is no longer current is discarded, so an editor that
// re-evaluates on every keystroke only ever sees the newest tree.
//
// On timeout the goroutine may still be running; its result is dropped into
// the buffered channel and never read.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (*csg.Tree, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, errors.New("evaluation superseded by newer request").
				WithType(ErrEvalSuperseded).
				WithTag("generation", gen).
				WithTag("current_generation", current)
		}
		return res.tree, res.errors, res.err

	case <-timer.C:
		return nil, nil, errors.Newf("evaluation timed out after %s", timeout).
			WithType(ErrEvalTimeout)
	}
}
