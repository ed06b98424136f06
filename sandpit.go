// Package sandpit embeds a capability-gated interpreter for a small,
// indentation-based Python subset. Scripts run against an explicit
// Registry of host capabilities and a resource Governor; everything else
// is sealed off. The zero-configuration path:
//
//	out, err := sandpit.Evaluate("1 + 2", nil, sandpit.Limits{})
//
// yields int64(3): a program's value is the value of its last expression
// statement.
package sandpit

import (
	"io"
	"time"

	"github.com/google/uuid"

	"sandpit/internal/ast"
	"sandpit/internal/evaluator"
	"sandpit/internal/lexer"
	"sandpit/internal/limits"
	"sandpit/internal/object"
	"sandpit/internal/parser"
)

// Limits caps one evaluation. Zero fields are unlimited.
type Limits struct {
	MaxSteps  int64
	MaxDepth  int
	MaxWall   time.Duration
	MaxMemory int64
}

// Program is a parsed script, reusable across evaluations and safe to
// share between goroutines (the tree is never mutated).
type Program struct {
	tree *ast.Program
}

// String renders the tree back to source-like text, mainly for debugging.
func (p *Program) String() string { return p.tree.String() }

// Parse lexes and parses source without evaluating anything. Lexing and
// parsing consume no governor budget.
func Parse(source string) (*Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	tree := p.ParseProgram()

	if lexErrs := l.Errors(); len(lexErrs) > 0 {
		return nil, fromLexError(lexErrs[0])
	}
	if diags := p.Diagnostics(); len(diags) > 0 {
		return nil, fromDiagnostic(diags[0])
	}
	return &Program{tree: tree}, nil
}

// Interpreter carries configuration shared by many evaluations: the
// capability registry, the limit profile, the print sink and the builtin
// allowlist. Each Run gets a fresh environment and governor, so one
// Interpreter may serve concurrent goroutines.
type Interpreter struct {
	reg      *Registry
	lim      Limits
	stdout   io.Writer
	builtins map[string]bool // nil means all
}

type Option func(*Interpreter)

func WithRegistry(reg *Registry) Option {
	return func(in *Interpreter) { in.reg = reg }
}

func WithLimits(lim Limits) Option {
	return func(in *Interpreter) { in.lim = lim }
}

// WithStdout directs print() output. Without it, print goes nowhere.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// WithBuiltins restricts the pure builtins to the named subset.
func WithBuiltins(names ...string) Option {
	return func(in *Interpreter) {
		in.builtins = map[string]bool{}
		for _, n := range names {
			in.builtins[n] = true
		}
	}
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Evaluate parses and runs source in one shot.
func (in *Interpreter) Evaluate(source string) (any, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return in.Run(prog)
}

// Run evaluates an already parsed program. The result is the lowered host
// value of the program's last expression statement, nil if there is none.
func (in *Interpreter) Run(prog *Program) (any, error) {
	session := uuid.NewString()

	gov := limits.NewGovernor(limits.Config{
		MaxSteps:  in.lim.MaxSteps,
		MaxDepth:  in.lim.MaxDepth,
		MaxWall:   in.lim.MaxWall,
		MaxMemory: in.lim.MaxMemory,
	})
	sess := evaluator.NewSession(gov, in.stdout)

	env := object.NewEnvironment()
	for name, b := range evaluator.NewBuiltins(sess) {
		if in.builtins != nil && !in.builtins[name] {
			continue
		}
		env.Set(name, b)
	}
	if in.reg != nil {
		in.reg.freeze()
		in.reg.install(env)
	}

	result := sess.Eval(prog.tree, env)
	if errObj, ok := result.(*object.Error); ok {
		return nil, fromObjectError(errObj, session)
	}

	out, err := fromObject(result)
	if err != nil {
		if pub, ok := err.(*Error); ok {
			pub.Session = session
			return nil, pub
		}
		return nil, &Error{Kind: TypeError, Message: err.Error(), Session: session}
	}
	return out, nil
}

// Evaluate is the package-level convenience entry point: one source, one
// registry, one limit profile, one result.
func Evaluate(source string, reg *Registry, lim Limits) (any, error) {
	return New(WithRegistry(reg), WithLimits(lim)).Evaluate(source)
}
