// Package engine evaluates the part DSL, a small Lisp built on zygomys, into
// a component descriptor tree.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/millpath/pkg/component"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a non-fatal remark about the program, such as an unknown
// keyword.
type EvalWarning struct {
	Line    int
	Message string
}

func (w EvalWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// EvalResult bundles the full output of an evaluation. Root is nil when the
// program produced no component or failed.
type EvalResult struct {
	Root     *component.Descriptor
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether evaluation produced a component without errors.
func (r EvalResult) OK() bool {
	return r.Root != nil && len(r.Errors) == 0
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source and returns the component it builds. The part is the
// last assembly if the program declares one, otherwise the value of the last
// top-level expression.
//
// Parse and runtime errors in user code are reported in the result's Errors.
// The returned error is reserved for fatal failures: timeout, panic, or a
// newer Evaluate call superseding this one.
func (e *Engine) Evaluate(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ch <- evalResult{res: evaluate(source)}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string) EvalResult {
	// Empty source is a valid program that produces nothing.
	if strings.TrimSpace(source) == "" {
		return EvalResult{}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings}
	}

	last, err := env.Run()
	if err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings}
	}

	res := EvalResult{Root: b.root, Warnings: b.warnings}
	if res.Root == nil {
		if c, ok := last.(*sexpComponent); ok {
			res.Root = c.d
		}
	}
	if res.Root == nil {
		res.Warnings = append(res.Warnings, EvalWarning{Message: "program does not evaluate to a component"})
	}
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
