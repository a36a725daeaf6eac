// Package transform compiles Go expressions into cell transforms that
// can be handed to DataFrame.Loc.
//
// An expression sees the current cell as v, typed as the Go type of the
// cell's variant (128-bit integers arrive as their decimal string), and
// its result replaces the cell. The fmt, math, strconv and strings
// packages are available:
//
//	v * 2
//	strings.ToUpper(v)
//	float64(v) / 100
package transform

import (
	"errors"
	"fmt"
	"go/parser"
	"reflect"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/ssargent/tabula/pkg/val"
)

var (
	// ErrInvalidExpression is returned when an expression does not parse
	// or does not type check for a cell's variant.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrEvaluation is returned when an expression panics at run time.
	ErrEvaluation = errors.New("expression evaluation failed")
)

const source = `package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	_ = fmt.Sprint
	_ = math.Abs
	_ = strconv.Itoa
	_ = strings.ToUpper
)

func Apply(v %s) any {
	return %s
}
`

// Program is a compiled expression. Each cell variant it meets is
// compiled once on first use. A Program is safe for concurrent use.
type Program struct {
	expr string

	mu    sync.Mutex
	funcs map[val.Kind]reflect.Value
}

// Compile checks that expr is a Go expression and returns its Program.
func Compile(expr string) (*Program, error) {
	if _, err := parser.ParseExpr(expr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	return &Program{expr: expr, funcs: make(map[val.Kind]reflect.Value)}, nil
}

// String returns the source expression.
func (p *Program) String() string { return p.expr }

// Apply replaces *v with the expression's result for v. Its signature
// matches DataFrame.Loc.
func (p *Program) Apply(v *val.Value) error {
	out, err := p.Eval(*v)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// Eval returns the expression's result for v without modifying it.
func (p *Program) Eval(v val.Value) (out val.Value, err error) {
	fn, err := p.compiled(v.Kind())
	if err != nil {
		return val.Value{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEvaluation, r)
		}
	}()
	res := fn.Call([]reflect.Value{reflect.ValueOf(v.Any())})
	return val.FromAny(res[0].Interface())
}

func (p *Program) compiled(k val.Kind) (reflect.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fn, ok := p.funcs[k]; ok {
		return fn, nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return reflect.Value{}, fmt.Errorf("failed to load stdlib symbols: %w", err)
	}
	if _, err := i.Eval(fmt.Sprintf(source, goType(k), p.expr)); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: for %s cells: %w", ErrInvalidExpression, k, err)
	}
	fn, err := i.Eval("transform.Apply")
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	p.funcs[k] = fn
	return fn, nil
}

// goType names the Go type Value.Any returns for k.
func goType(k val.Kind) string {
	switch k {
	case val.KindIsize:
		return "int"
	case val.KindUsize:
		return "uint"
	case val.KindInt64:
		return "int64"
	case val.KindUInt64:
		return "uint64"
	case val.KindInt32:
		return "int32"
	case val.KindUInt32:
		return "uint32"
	case val.KindInt16:
		return "int16"
	case val.KindUInt16:
		return "uint16"
	case val.KindInt8:
		return "int8"
	case val.KindUInt8:
		return "uint8"
	case val.KindFloat64:
		return "float64"
	case val.KindFloat32:
		return "float32"
	default:
		return "string"
	}
}
