// Package engine evaluates brush scripts. It wraps zygomys in a sandboxed
// environment and produces a csg.Tree from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/aukilabs/go-tooling/pkg/errors"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh tree for determinism.
type Engine struct {
	// Timeout bounds a single evaluation. It must be set before the first
	// call to Evaluate.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine with the default EvalTimeout.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs a brush script and returns the tree it built. The tree is
// not rebuilt; callers run csg.Tree.Rebuild when they need fragments.
//
// Return semantics:
//   - On success: returns tree + nil errors + nil error
//   - On parse/eval failure: returns nil tree + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*csg.Tree, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: errors.Newf("panic during evaluation: %v", r).
					WithType(ErrEvalPanic)}
			}
		}()

		tree, evalErrs, err := e.evaluate(source)
		ch <- evalResult{tree: tree, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.Timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*csg.Tree, []EvalError, error) {
	tree := csg.NewTree(DefaultVoid)

	// Empty source is a valid program that produces an empty tree.
	if strings.TrimSpace(source) == "" {
		return tree, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, tree)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return tree, nil, nil
}

// linePattern matches zygomys errors such as "Error on line N: ..." and
// the shorter "line N: ...".
var linePattern = regexp.MustCompile(`(?i)^(?:.*?\bon )?line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values, pulling
// out the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{
			Line:    line,
			Message: strings.TrimSpace(m[2]),
		}}
	}
	return []EvalError{{Message: msg}}
}
