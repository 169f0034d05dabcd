package object

// Operator and slot function shapes. These are plain Go function values
// (not a generic "call a Value" indirection) so built-in types dispatch at
// native speed, the way the teacher's vm_production.go type-switches do;
// user-defined types populate the same slots with closures that invoke a
// script function through the VM (see internal/typesys and internal/vm).
type (
	NewFunc    func(t *Type, args []Value) (Value, error)
	InitFunc   func(self Value, args []Value) error
	FinalFunc  func(self Value)
	StrFunc    func(self Value) (string, error)
	HashFunc   func(self Value) (uint64, error)
	CallFunc   func(self Value, args []Value) (Value, error)
	GetAttrFunc func(self Value, name string) (Value, error)
	SetAttrFunc func(self Value, name string, val Value) error
	GetItemFunc func(self Value, keys []Value) (Value, error)
	SetItemFunc func(self Value, keys []Value, val Value) error
	OpFunc      func(a, b Value) (Value, error)
	UnaryFunc   func(a Value) (Value, error)

	// IterFunc returns a fresh iterator object for self (spec's for-loop
	// supplement, grounded on kscript's dict_iter/list_iter construction).
	IterFunc func(self Value) (Value, error)
	// NextFunc advances an iterator, reporting ok=false instead of raising
	// when exhausted (kscript's iterators instead return a catchable
	// "Iterator is exhausted!" error; a for-loop's termination shouldn't
	// be observable to a script's own catch blocks, so this is adapted to
	// a plain bool).
	NextFunc func(self Value) (val Value, ok bool, err error)
)

// Slots caches a type's well-known methods, avoiding an attribute-dict
// lookup for every operator evaluation (spec §3 "Types").
type Slots struct {
	New      NewFunc
	Init     InitFunc
	Finalize FinalFunc
	Str      StrFunc
	Repr     StrFunc
	Hash     HashFunc
	Call     CallFunc
	GetAttr  GetAttrFunc
	SetAttr  SetAttrFunc
	GetItem  GetItemFunc
	SetItem  SetItemFunc
	Iter     IterFunc
	Next     NextFunc

	Add, Sub, Mul, Div, Mod, Pow     OpFunc
	Lt, Le, Gt, Ge, Eq, Ne           OpFunc
	Neg, Not                        UnaryFunc
}

// Type is a runtime type descriptor: name, parent list (multiple
// inheritance, first-parent-wins), the cached operator slots, and a
// catch-all attribute dictionary for everything else (spec §3, §4.D).
type Type struct {
	Header
	Name    string
	Parents []*Type
	Slots   Slots
	Attrs   map[string]Value
}

// TypeType is the meta-type: every *Type's own TypeOf() returns this,
// including itself (spec §4.D "types are themselves values").
var TypeType = &Type{Name: "type", Attrs: make(map[string]Value)}

func init() {
	TypeType.Header = NewImmortalHeader(TypeType)
}

// NewType allocates a type object.
func NewType(name string, parents ...*Type) *Type {
	t := &Type{
		Name:    name,
		Parents: parents,
		Attrs:   make(map[string]Value),
	}
	t.Header = NewImmortalHeader(TypeType)
	return t
}

// DecRef satisfies Value. Types are immortal, so this is always a no-op,
// but it must exist as a zero-argument method since Header's own DecRef
// takes a finalizer callback and embedding alone wouldn't match Value.
func (t *Type) DecRef() { t.Header.DecRef(nil) }

// Lookup searches t's own attribute dictionary, then its parents in
// declaration order (first-parent-wins on ambiguity), per spec §3/§4.D.
// It does not synthesize a bound method; that is the VM's job (LOAD_A),
// since it requires wrapping the result in a partial-application value
// from the callable package, which this package must not depend on.
func (t *Type) Lookup(name string) (Value, bool) {
	if v, ok := t.Attrs[name]; ok {
		return v, true
	}
	for _, p := range t.Parents {
		if v, ok := p.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

// IsSub reports whether a is b or transitively descends from b via the
// parent chain (spec §4.D "issub").
func IsSub(a, b *Type) bool {
	if a == b {
		return true
	}
	for _, p := range a.Parents {
		if IsSub(p, b) {
			return true
		}
	}
	return false
}
