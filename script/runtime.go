// Package script embeds a JavaScript runtime for userscript automation.
// It uses the goja JavaScript engine (pure Go ES5.1+ implementation).
package script

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// Runtime wraps a goja runtime with the selection automation API.
type Runtime struct {
	vm      *goja.Runtime
	mu      sync.Mutex
	errors  []error
	onError func(error)
}

// NewRuntime creates a new scripting runtime.
func NewRuntime() *Runtime {
	r := &Runtime{
		vm:     goja.New(),
		errors: make([]error, 0),
	}
	r.setupConsole()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// SetOnError sets a callback for script errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

// Execute runs script code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.errors = append(r.errors, err)
			if r.onError != nil {
				r.onError(err)
			}
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.errors = append(r.errors, err)
		if r.onError != nil {
			r.onError(err)
		}
	}
	return result, err
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

// setupConsole creates a minimal console object.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	console.Set("log", func(call goja.FunctionCall) goja.Value {
		fmt.Println(formatArgs(call.Arguments))
		return goja.Undefined()
	})
	console.Set("warn", func(call goja.FunctionCall) goja.Value {
		fmt.Println("[WARN]", formatArgs(call.Arguments))
		return goja.Undefined()
	})
	console.Set("error", func(call goja.FunctionCall) goja.Value {
		fmt.Println("[ERROR]", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	result := ""
	for i, arg := range args {
		if i > 0 {
			result += " "
		}
		result += formatValue(arg)
	}
	return result
}

func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
