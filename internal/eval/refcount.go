package eval

import "github.com/toylang/toylang/internal/diag"

// DestructorCallback is invoked when an Object's reference count reaches
// zero: a callback rather than a direct call, so the ref-count
// bookkeeping here does not need to import the evaluator's
// method-dispatch machinery.
type DestructorCallback func(obj *Object) *diag.Diagnostic

// RefCounter implements the lifecycle rule that a value is destroyed
// when its last reference drops, plus the explicit __drop__ contract.
// Every container (Array, Struct, Dict, Tuple) holds shared references
// through this type rather than ever copying an *Object.
type RefCounter struct {
	destructor DestructorCallback
}

func NewRefCounter() *RefCounter { return &RefCounter{} }

func (r *RefCounter) SetDestructor(cb DestructorCallback) { r.destructor = cb }

// Retain increments obj's reference count. Returns obj for chaining.
func (r *RefCounter) Retain(obj *Object) *Object {
	if obj != nil {
		obj.RefCount++
	}
	return obj
}

// Release decrements obj's reference count and, on reaching zero, invokes
// the destructor callback.
func (r *RefCounter) Release(obj *Object) *diag.Diagnostic {
	if obj == nil || obj.Destroyed {
		return nil
	}
	obj.RefCount--
	if obj.RefCount < 0 {
		obj.RefCount = 0
	}
	if obj.RefCount == 0 && r.destructor != nil {
		return r.destructor(obj)
	}
	return nil
}
