package container

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/value"
)

// List is a mutable, growable sequence with geometric growth (spec §4.C),
// mirroring the teacher's Array native-function bindings in its
// Push/Pop/Get/Set idiom.
type List struct {
	object.Header
	Items []object.Value
}

var ListType = object.NewType("list")

func NewList() *List {
	return &List{Header: object.NewHeader(ListType)}
}

func NewListAdopt(items []object.Value) *List {
	return &List{Header: object.NewHeader(ListType), Items: items}
}

func (l *List) DecRef() {
	l.Header.DecRef(func() {
		for _, v := range l.Items {
			object.DecRef(v)
		}
	})
}

func (l *List) Len() int { return len(l.Items) }

// Push appends v, taking ownership of the caller's reference.
func (l *List) Push(v object.Value) {
	l.Items = append(l.Items, v)
}

// Pop removes and returns the last item, transferring ownership to the
// caller. PopUnused removes the last item and drops the reference
// outright (used when a statement's expression result is discarded).
func (l *List) Pop() (object.Value, error) {
	if len(l.Items) == 0 {
		return nil, kerr.New(kerr.SizeError, "pop from empty list")
	}
	n := len(l.Items) - 1
	v := l.Items[n]
	l.Items[n] = nil
	l.Items = l.Items[:n]
	return v, nil
}

func (l *List) PopUnused() error {
	v, err := l.Pop()
	if err != nil {
		return err
	}
	object.DecRef(v)
	return nil
}

func (l *List) Clear() {
	for _, v := range l.Items {
		object.DecRef(v)
	}
	l.Items = l.Items[:0]
}

func (l *List) index(i int64) (int, error) {
	n := int64(len(l.Items))
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, kerr.New(kerr.KeyError, "list index out of range")
	}
	return int(i), nil
}

func (l *List) Get(i int64) (object.Value, error) {
	idx, err := l.index(i)
	if err != nil {
		return nil, err
	}
	return l.Items[idx], nil
}

func (l *List) Set(i int64, v object.Value) error {
	idx, err := l.index(i)
	if err != nil {
		return err
	}
	object.DecRef(l.Items[idx])
	l.Items[idx] = v
	return nil
}

// asIndex extracts list's single int subscript key; GETITEM/SETITEM
// can carry more (spec §4.I), but a list only ever indexes by one.
func asIndex(keys []object.Value) (int64, error) {
	if len(keys) != 1 {
		return 0, kerr.New(kerr.TypeError, "list index takes exactly one key")
	}
	i, ok := keys[0].(*value.Int)
	if !ok {
		return 0, kerr.New(kerr.TypeError, "list index must be int, not %s", typeNameOf(keys[0]))
	}
	return i.Int64(), nil
}

func init() {
	ListType.Slots.Hash = nil // lists are mutable and unhashable, per spec §4.C
	ListType.Slots.GetItem = func(self object.Value, keys []object.Value) (object.Value, error) {
		i, err := asIndex(keys)
		if err != nil {
			return nil, err
		}
		v, err := self.(*List).Get(i)
		if err != nil {
			return nil, err
		}
		object.IncRef(v)
		return v, nil
	}
	ListType.Slots.SetItem = func(self object.Value, keys []object.Value, val object.Value) error {
		i, err := asIndex(keys)
		if err != nil {
			return err
		}
		return self.(*List).Set(i, val)
	}
	ListType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		x := a.(*List)
		y, ok := b.(*List)
		if !ok || len(x.Items) != len(y.Items) {
			return boolVal(false), nil
		}
		for i := range x.Items {
			eq, err := valuesEqual(x.Items[i], y.Items[i])
			if err != nil {
				return nil, err
			}
			if !eq {
				return boolVal(false), nil
			}
		}
		return boolVal(true), nil
	}
}
