package container

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
)

type bucketState uint8

const (
	bucketEmpty bucketState = iota
	bucketLive
	bucketTombstone
)

// dictBucket is one slot of the open-addressed table. bucketEmpty means
// the slot was never used (probing stops); bucketTombstone means a
// deleted entry (probing continues past it, but it's free for reuse on
// insert).
type dictBucket struct {
	state bucketState
	hash  uint64
	key   object.Value
	val   object.Value
}

const dictInitialCap = 8

// Dict is an open-addressed hash table with power-of-two bucket counts
// (spec §4.C): linear probing, rehash at ~2/3 load factor, insertion
// order is not preserved across a rehash.
type Dict struct {
	object.Header
	buckets []dictBucket
	size    int // live entries, excludes tombstones
	used    int // live entries + tombstones, drives the rehash threshold
}

var DictType = object.NewType("dict")

func NewDict() *Dict {
	return &Dict{
		Header:  object.NewHeader(DictType),
		buckets: make([]dictBucket, dictInitialCap),
	}
}

func (d *Dict) DecRef() {
	d.Header.DecRef(func() {
		for _, b := range d.buckets {
			if b.state == bucketLive {
				object.DecRef(b.key)
				object.DecRef(b.val)
			}
		}
	})
}

func (d *Dict) Len() int { return d.size }

// find returns the bucket index for key: if found is true, buckets[idx]
// holds the live entry; if false, buckets[idx] is the first slot (empty
// or tombstoned) where key could be inserted.
func (d *Dict) find(key object.Value) (idx int, found bool, err error) {
	h, err := hashValue(key)
	if err != nil {
		return 0, false, err
	}
	mask := uint64(len(d.buckets) - 1)
	i := h & mask
	firstFree := -1
	for {
		b := &d.buckets[i]
		switch b.state {
		case bucketEmpty:
			if firstFree >= 0 {
				return firstFree, false, nil
			}
			return int(i), false, nil
		case bucketTombstone:
			if firstFree < 0 {
				firstFree = int(i)
			}
		default: // bucketLive
			if b.hash == h {
				eq, err := valuesEqual(b.key, key)
				if err != nil {
					return 0, false, err
				}
				if eq {
					return int(i), true, nil
				}
			}
		}
		i = (i + 1) & mask
	}
}

func (d *Dict) maybeGrow() {
	if (d.used+1)*3 < len(d.buckets)*2 {
		return
	}
	old := d.buckets
	d.buckets = make([]dictBucket, len(old)*2)
	d.size, d.used = 0, 0
	for _, b := range old {
		if b.state == bucketLive {
			d.insertFresh(b.hash, b.key, b.val)
		}
	}
}

// insertFresh places an already-owned (key, val) pair during a rehash,
// where no duplicate check or refcounting is needed.
func (d *Dict) insertFresh(h uint64, key, val object.Value) {
	mask := uint64(len(d.buckets) - 1)
	i := h & mask
	for d.buckets[i].state != bucketEmpty {
		i = (i + 1) & mask
	}
	d.buckets[i] = dictBucket{state: bucketLive, hash: h, key: key, val: val}
	d.size++
	d.used++
}

// Set inserts or overwrites key -> val, adopting both references (the
// caller transfers ownership, matching List.Push's convention).
func (d *Dict) Set(key, val object.Value) error {
	d.maybeGrow()
	idx, found, err := d.find(key)
	if err != nil {
		return err
	}
	if found {
		object.DecRef(d.buckets[idx].val)
		d.buckets[idx].val = val
		object.DecRef(key) // duplicate key discarded, caller's ref released
		return nil
	}
	h, err := hashValue(key)
	if err != nil {
		return err
	}
	wasTombstone := d.buckets[idx].state == bucketTombstone
	d.buckets[idx] = dictBucket{state: bucketLive, hash: h, key: key, val: val}
	d.size++
	if !wasTombstone {
		d.used++
	}
	return nil
}

// Get returns the value for key, or found=false if absent. The returned
// reference is still owned by the dict; callers that keep it must IncRef.
func (d *Dict) Get(key object.Value) (object.Value, bool, error) {
	idx, found, err := d.find(key)
	if err != nil || !found {
		return nil, false, err
	}
	return d.buckets[idx].val, true, nil
}

// Delete removes key if present, releasing its references.
func (d *Dict) Delete(key object.Value) (bool, error) {
	idx, found, err := d.find(key)
	if err != nil || !found {
		return false, err
	}
	object.DecRef(d.buckets[idx].key)
	object.DecRef(d.buckets[idx].val)
	d.buckets[idx] = dictBucket{state: bucketTombstone}
	d.size--
	return true, nil
}

// Keys returns the live keys in bucket order, which is not the insertion
// order (spec §4.C explicitly does not preserve insertion order).
func (d *Dict) Keys() []object.Value {
	out := make([]object.Value, 0, d.size)
	for _, b := range d.buckets {
		if b.state == bucketLive {
			out = append(out, b.key)
		}
	}
	return out
}

func init() {
	DictType.Slots.Hash = nil // dicts are mutable and unhashable
	DictType.Slots.GetItem = func(self object.Value, keys []object.Value) (object.Value, error) {
		if len(keys) != 1 {
			return nil, kerr.New(kerr.TypeError, "dict subscript takes exactly one key")
		}
		v, found, err := self.(*Dict).Get(keys[0])
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, kerr.New(kerr.KeyError, "key not found")
		}
		object.IncRef(v)
		return v, nil
	}
	DictType.Slots.SetItem = func(self object.Value, keys []object.Value, val object.Value) error {
		if len(keys) != 1 {
			return kerr.New(kerr.TypeError, "dict subscript takes exactly one key")
		}
		object.IncRef(keys[0])
		return self.(*Dict).Set(keys[0], val)
	}
	DictType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		x := a.(*Dict)
		y, ok := b.(*Dict)
		if !ok || x.size != y.size {
			return boolVal(false), nil
		}
		for _, kb := range x.buckets {
			if kb.state != bucketLive {
				continue
			}
			yv, found, err := y.Get(kb.key)
			if err != nil {
				return nil, err
			}
			if !found {
				return boolVal(false), nil
			}
			eq, err := valuesEqual(kb.val, yv)
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
