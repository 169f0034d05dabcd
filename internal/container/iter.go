package container

import (
	"kslang/internal/object"
)

// dictIter/listIter are the iterator objects a for-loop drives (a
// supplemented feature, grounded on kscript's src/types/iter/dict.c and
// list.c dict_iter/list_iter types): each holds a reference to its
// source container plus a cursor, and its Next slot advances the
// cursor, reporting exhaustion with ok=false instead of kscript's
// catchable "Iterator is exhausted!" error.
type dictIter struct {
	object.Header
	d   *Dict
	pos int
}

var DictIterType = object.NewType("dict_iter")

func newDictIter(d *Dict) *dictIter {
	object.IncRef(d)
	return &dictIter{Header: object.NewHeader(DictIterType), d: d}
}

func (it *dictIter) DecRef() {
	it.Header.DecRef(func() { object.DecRef(it.d) })
}

type listIter struct {
	object.Header
	l   *List
	pos int
}

var ListIterType = object.NewType("list_iter")

func newListIter(l *List) *listIter {
	object.IncRef(l)
	return &listIter{Header: object.NewHeader(ListIterType), l: l}
}

func (it *listIter) DecRef() {
	it.Header.DecRef(func() { object.DecRef(it.l) })
}

func init() {
	DictType.Slots.Iter = func(self object.Value) (object.Value, error) {
		return newDictIter(self.(*Dict)), nil
	}
	DictIterType.Slots.Next = func(self object.Value) (object.Value, bool, error) {
		it := self.(*dictIter)
		for it.pos < len(it.d.buckets) {
			b := &it.d.buckets[it.pos]
			it.pos++
			if b.state == bucketLive {
				object.IncRef(b.key)
				object.IncRef(b.val)
				return NewTupleAdopt([]object.Value{b.key, b.val}), true, nil
			}
		}
		return nil, false, nil
	}

	ListType.Slots.Iter = func(self object.Value) (object.Value, error) {
		return newListIter(self.(*List)), nil
	}
	ListIterType.Slots.Next = func(self object.Value) (object.Value, bool, error) {
		it := self.(*listIter)
		if it.pos >= len(it.l.Items) {
			return nil, false, nil
		}
		v := it.l.Items[it.pos]
		it.pos++
		object.IncRef(v)
		return v, true, nil
	}
}
