package expr

import (
	"math"
	"sort"
	"sync"

	"github.com/KirkDiggler/endguard/internal/errors"
)

// Func is a named unary function callable from an expression
type Func func(float64) float64

// Registry holds the functions available to a Parser. It is owned by the
// application context and shared by every parser built from it.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry seeded with the built-in functions.
// Trigonometric functions take degrees.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}

	builtins := map[string]Func{
		"sqrt": math.Sqrt,
		"abs":  math.Abs,
		"log": func(x float64) float64 {
			if x <= 0 {
				return math.NaN()
			}
			return math.Log(x)
		},
		"sin": func(x float64) float64 { return math.Sin(toRadians(x)) },
		"cos": func(x float64) float64 { return math.Cos(toRadians(x)) },
		"tan": func(x float64) float64 { return math.Tan(toRadians(x)) },
		"csc": func(x float64) float64 { return 1 / math.Sin(toRadians(x)) },
		"sec": func(x float64) float64 { return 1 / math.Cos(toRadians(x)) },
		"cot": func(x float64) float64 { return 1 / math.Tan(toRadians(x)) },
		"rad": toRadians,
		"deg": func(x float64) float64 { return x * 180 / math.Pi },
	}
	for name, fn := range builtins {
		r.funcs[name] = fn
	}

	return r
}

// Register adds a function. Existing names are rejected, never overwritten.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return errors.InvalidArgument("function name is required")
	}
	if fn == nil {
		return errors.InvalidArgumentf("function %s is nil", name)
	}
	if !isIdentifier(name) {
		return errors.InvalidArgumentf("function name %q is not a valid identifier", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return errors.AlreadyExistsf("function %s is already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the function registered under name
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists the registered function names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toRadians(x float64) float64 {
	return x * math.Pi / 180
}

func isIdentifier(s string) bool {
	for i, ch := range s {
		if isLetter(ch) {
			continue
		}
		if i > 0 && isDigit(ch) {
			continue
		}
		return false
	}
	return s != ""
}
