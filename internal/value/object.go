package value

import "sort"

// entry is a single key/value pair in an object's backing store.
type entry struct {
	key Value
	val Value
}

// objectData is the copy-on-write backing store for Object values. It
// keeps entries sorted by key under the total order so iteration and
// comparison are both order-independent of insertion.
type objectData struct {
	container
	entries []entry
}

func newObjectData() *objectData { return &objectData{entries: nil} }

func (o *objectData) find(key Value) (int, bool) {
	i := sort.Search(len(o.entries), func(i int) bool {
		return Compare(o.entries[i].key, key) >= 0
	})
	if i < len(o.entries) && Equal(o.entries[i].key, key) {
		return i, true
	}
	return i, false
}

func (o *objectData) get(key Value) Value {
	if i, ok := o.find(key); ok {
		return o.entries[i].val
	}
	return Undefined()
}

func (o *objectData) clone() *objectData {
	cp := make([]entry, len(o.entries))
	copy(cp, o.entries)
	return &objectData{entries: cp}
}

// set inserts or overwrites a key in place. Callers must already own
// an unshared objectData (see cowObject).
func (o *objectData) set(key, val Value) {
	i, ok := o.find(key)
	if ok {
		o.entries[i].val = val
		return
	}
	o.entries = append(o.entries, entry{})
	copy(o.entries[i+1:], o.entries[i:])
	o.entries[i] = entry{key: key, val: val}
}

func (o *objectData) sortedKeys() []Value {
	keys := make([]Value, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.key
	}
	return keys
}

// Object builds a Value from a map of pairs, inserting each one in key
// order, so the map's iteration order does not affect the result.
func Object(pairs map[Value]Value) Value {
	o := newObjectData()
	o.refs = 1
	for k, v := range pairs {
		o.set(k, v)
	}
	return Value{kind: KindObject, obj: o}
}

// EmptyObject returns a fresh empty object.
func EmptyObject() Value {
	return Value{kind: KindObject, obj: &objectData{container: container{refs: 1}}}
}

// ObjectGet indexes an object by key, returning Undefined on a miss.
func ObjectGet(v Value, key Value) Value {
	if v.kind != KindObject {
		return Undefined()
	}
	return v.obj.get(key)
}

// ObjectLen returns the number of entries.
func ObjectLen(v Value) int {
	if v.kind != KindObject {
		return 0
	}
	return len(v.obj.entries)
}

// ObjectKeys returns the ordered key list.
func ObjectKeys(v Value) []Value {
	if v.kind != KindObject {
		return nil
	}
	return v.obj.sortedKeys()
}

// ObjectEntries exposes the ordered (key, value) pairs for iteration.
func ObjectEntries(v Value) []struct {
	Key Value
	Val Value
} {
	if v.kind != KindObject {
		return nil
	}
	out := make([]struct {
		Key Value
		Val Value
	}, len(v.obj.entries))
	for i, e := range v.obj.entries {
		out[i] = struct {
			Key Value
			Val Value
		}{e.key, e.val}
	}
	return out
}

// cowObject returns an objectData the caller may mutate directly,
// cloning first if the current backing store is shared.
func cowObject(v *Value) *objectData {
	if v.obj.isShared() {
		v.obj = v.obj.clone()
		v.obj.refs = 1
	}
	return v.obj
}

// ObjectSet mutates obj[key] = val in place under copy-on-write,
// returning the (possibly rebound) object value. obj must be a Value
// of kind Object.
func ObjectSet(obj Value, key, val Value) Value {
	data := cowObject(&obj)
	data.set(key, val)
	return Value{kind: KindObject, obj: data}
}

// ObjectContainsKey/ObjectContainsValue back the Contains instruction.
func ObjectContainsKey(v Value, key Value) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj.find(key)
	return ok
}

func ObjectContainsValue(v Value, val Value) bool {
	if v.kind != KindObject {
		return false
	}
	for _, e := range v.obj.entries {
		if Equal(e.val, val) {
			return true
		}
	}
	return false
}
