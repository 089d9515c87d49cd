// Package tagged serializes objects whose fields are either plain JSON data
// or references to functions held in a fixed Registry.
//
// Wire form of a field:
//
//	{"data": <any JSON>}
//	{"func": "<registered name>"}
//
// Function source is never serialized or evaluated; only names travel.
package tagged

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownFunc = errors.New("tagged: unknown function")
	ErrBadTag      = errors.New("tagged: value must carry exactly one of \"data\" or \"func\"")
	ErrNotFunc     = errors.New("tagged: value is not a function reference")
)

// Func is a function that can be referenced by name.
type Func func(args ...any) (any, error)

// Registry is an immutable name → Func table. A nil *Registry is empty.
type Registry struct {
	funcs map[string]Func
}

func (r *Registry) lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.funcs[name]
	return fn, ok
}

// NewRegistry copies funcs into a new Registry.
func NewRegistry(funcs map[string]Func) *Registry {
	r := &Registry{funcs: make(map[string]Func, len(funcs))}
	for name, fn := range funcs {
		r.funcs[name] = fn
	}
	return r
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return []string{}
	}
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Call invokes the function referenced by v.
func (r *Registry) Call(v Value, args ...any) (any, error) {
	if !v.IsFunc() {
		return nil, ErrNotFunc
	}
	fn, ok := r.lookup(v.fn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunc, v.fn)
	}
	return fn(args...)
}

// Value is a data field or a function reference.
type Value struct {
	data json.RawMessage
	fn   string
}

// Data marshals v as a data field.
func Data(v any) (Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return Value{data: b}, nil
}

// FuncRef references a registered function by name.
func FuncRef(name string) Value { return Value{fn: name} }

func (v Value) IsFunc() bool { return v.fn != "" }

// Name returns the referenced function name, or "".
func (v Value) Name() string { return v.fn }

// Decode unmarshals a data field into dst.
func (v Value) Decode(dst any) error {
	if v.IsFunc() {
		return fmt.Errorf("tagged: %q is a function reference", v.fn)
	}
	return json.Unmarshal(v.data, dst)
}

type wire struct {
	Data json.RawMessage `json:"data,omitempty"`
	Func string          `json:"func,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsFunc() {
		return json.Marshal(wire{Func: v.fn})
	}
	data := v.data
	if data == nil {
		data = json.RawMessage("null")
	}
	return json.Marshal(wire{Data: data})
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var w wire
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("tagged: %w", err)
	}
	hasData := len(w.Data) > 0
	if hasData == (w.Func != "") {
		return ErrBadTag
	}
	*v = Value{data: w.Data, fn: w.Func}
	return nil
}

// Marshal encodes fields with keys in sorted order.
func Marshal(fields map[string]Value) ([]byte, error) {
	return json.Marshal(fields)
}

// Unmarshal decodes fields and checks that every function reference names a
// function in r.
func Unmarshal(b []byte, r *Registry) (map[string]Value, error) {
	var fields map[string]Value
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for key, v := range fields {
		if !v.IsFunc() {
			continue
		}
		if _, ok := r.lookup(v.fn); !ok {
			return nil, fmt.Errorf("%w: %q (field %q)", ErrUnknownFunc, v.fn, key)
		}
	}
	return fields, nil
}
