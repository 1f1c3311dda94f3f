// Package eval implements toylang's tree-walking evaluator: a
// single-threaded, synchronous interpreter over the type-finalized AST
// pool, with an Environment stack, a method registry built from
// ImplBlock statements, and explicit Return/Break/Continue propagation.
// Every evaluation entry point returns an explicit *diag.Diagnostic
// alongside its value, matching the rest of this module's ambient error
// handling (internal/diag).
package eval

import (
	"fmt"
	"io"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/eval/heap"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// Option configures an Evaluator through the same functional-options
// shape used by parser.Option.
type Option func(*Evaluator)

// WithHeap overrides the default fake heap backing the __builtin_*
// intrinsics.
func WithHeap(h heap.Heap) Option { return func(e *Evaluator) { e.heap = h } }

// WithTrace enables one line of output per evaluated statement and per
// destructor run, the runtime counterpart to parser.WithTracing.
func WithTrace(w io.Writer) Option { return func(e *Evaluator) { e.trace = w } }

// Evaluator owns every piece of interpreter state a running program
// needs: the environment stack (held per-call on the Go call stack
// rather than as an explicit slice, since toylang's evaluator is itself
// recursive), the function table, the method registry, and the current
// module environment.
type Evaluator struct {
	prog   *ast.Program
	intern *symbols.Interner
	heap   heap.Heap
	trace  io.Writer
	refc   *RefCounter

	methods map[symbols.Symbol]map[symbols.Symbol]*ast.FunctionDecl
	structs map[symbols.Symbol][]ast.StructField

	globals *Environment
}

// New creates an Evaluator over a type-checked Program, registering the
// method table from every ImplBlock, populated from
// ImplBlock statements").
func New(prog *ast.Program, intern *symbols.Interner, opts ...Option) *Evaluator {
	e := &Evaluator{
		prog:    prog,
		intern:  intern,
		heap:    heap.NewFakeHeap(),
		refc:    NewRefCounter(),
		methods: make(map[symbols.Symbol]map[symbols.Symbol]*ast.FunctionDecl),
		structs: make(map[symbols.Symbol][]ast.StructField),
		globals: NewEnvironment(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.refc.SetDestructor(e.runDestructor)

	for _, ref := range prog.Structs {
		name := prog.Stmts.StructName(ref)
		e.structs[name] = prog.Stmts.StructFieldsVal(ref)
	}
	for _, ref := range prog.Impls {
		target := prog.Stmts.StructName(ref)
		if e.methods[target] == nil {
			e.methods[target] = make(map[symbols.Symbol]*ast.FunctionDecl)
		}
		for _, m := range prog.Stmts.ImplMethods(ref) {
			e.methods[target][m.Name] = m
		}
	}
	return e
}

// Run locates and calls the program's designated entry function (by
// convention the function named "main"), returning the evaluated result
// or the first diagnostic encountered.
func (e *Evaluator) Run(entry string) (*Object, *diag.Diagnostic) {
	name := e.intern.Intern(entry)
	fn := e.prog.FindFunction(name)
	if fn == nil {
		return nil, diag.NewWithoutPos(diag.Runtime, "no %q function to run", entry)
	}
	return e.CallFunction(fn, nil)
}

// CallFunction binds args to fn's parameters in a fresh frame enclosed by
// the globals and evaluates its body.
func (e *Evaluator) CallFunction(fn *ast.FunctionDecl, args []*Object) (*Object, *diag.Diagnostic) {
	if len(args) != len(fn.Params) {
		return nil, diag.NewWithoutPos(diag.Runtime, "function %q expects %d argument(s), got %d",
			e.intern.Resolve(fn.Name), len(fn.Params), len(args))
	}
	frame := NewEnclosedEnvironment(e.globals)
	for i, p := range fn.Params {
		frame.Define(p.Name, e.refc.Retain(args[i]))
	}
	res, err := e.evalBlock(fn.BodyBlock(e.prog.Stmts), frame)
	if err != nil {
		return nil, err
	}
	if relErr := e.releaseFrame(frame, res.Val); relErr != nil {
		return nil, relErr
	}
	return res.Val, nil
}

// callMethod binds self plus args to fn's parameters, used by both
// user-defined method dispatch and destructor invocation. self is not
// released with the rest of the frame: the caller retains its own
// reference to the receiver independently of this call.
func (e *Evaluator) callMethod(fn *ast.FunctionDecl, self *Object, args []*Object) (*Object, *diag.Diagnostic) {
	frame := NewEnclosedEnvironment(e.globals)
	selfSym := e.intern.Intern("self")
	frame.Define(selfSym, self)
	for i, p := range fn.Params {
		frame.Define(p.Name, e.refc.Retain(args[i]))
	}
	res, err := e.evalBlock(fn.BodyBlock(e.prog.Stmts), frame)
	if err != nil {
		return nil, err
	}
	delete(frame.store, selfSym)
	if relErr := e.releaseFrame(frame, res.Val); relErr != nil {
		return nil, relErr
	}
	return res.Val, nil
}

// releaseFrame releases every binding frame owns directly, skipping one
// object identity (typically a call's return value) whose ownership is
// moving out to the caller rather than ending here.
func (e *Evaluator) releaseFrame(frame *Environment, keep *Object) *diag.Diagnostic {
	var first *diag.Diagnostic
	for _, obj := range frame.store {
		if obj == keep {
			continue
		}
		if err := e.refc.Release(obj); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// runDestructor is the RefCounter's DestructorCallback: it locates
// __drop__ on a struct and runs it before the caller releases the
// struct's field references. A debug destruction trace line is emitted
// when tracing is enabled.
func (e *Evaluator) runDestructor(obj *Object) *diag.Diagnostic {
	if obj.Destroyed {
		return nil
	}
	obj.Destroyed = true

	if obj.Kind == KindStruct {
		drop := e.intern.Intern("__drop__")
		if fn, ok := e.methods[obj.StructName][drop]; ok {
			e.tracef("drop %s", e.intern.Resolve(obj.StructName))
			if _, err := e.callMethod(fn, obj, nil); err != nil {
				return err
			}
		}
		for _, field := range obj.Fields {
			if err := e.refc.Release(field); err != nil {
				return err
			}
		}
		return nil
	}

	// Arrays, tuples, and dicts have no user-visible destructor, but
	// releasing them must still release every element they hold so a
	// struct nested inside one still sees its own count reach zero.
	for _, elem := range obj.Elems {
		if err := e.refc.Release(elem); err != nil {
			return err
		}
	}
	for _, v := range obj.DictVals {
		if err := e.refc.Release(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) tracef(format string, args ...any) {
	if e.trace == nil {
		return
	}
	fmt.Fprintf(e.trace, format+"\n", args...)
}

func (e *Evaluator) lookupStructFields(name symbols.Symbol) []ast.StructField {
	return e.structs[name]
}

func (e *Evaluator) runtimeErr(ref ast.ExprRef, format string, args ...any) *diag.Diagnostic {
	d := diag.NewWithoutPos(diag.Runtime, format, args...)
	if pos, ok := e.prog.Locations.ExprLoc(ref); ok {
		d = d.WithPosIfMissing(pos)
	}
	return d
}

func (e *Evaluator) runtimeErrStmt(ref ast.StmtRef, format string, args ...any) *diag.Diagnostic {
	d := diag.NewWithoutPos(diag.Runtime, format, args...)
	if pos, ok := e.prog.Locations.StmtLoc(ref); ok {
		d = d.WithPosIfMissing(pos)
	}
	return d
}

// zeroOf returns the Null object for a deferred `var` declaration's
// declared type").
func zeroOf(ty types.TypeDecl) *Object { return NewNull(ty) }
