package value

import "sort"

// setData is the copy-on-write backing store for Set values: a
// sorted, duplicate-free sequence under the total order.
type setData struct {
	container
	items []Value
}

// EmptySet returns a fresh empty set.
func EmptySet() Value {
	return Value{kind: KindSet, set: &setData{container: container{refs: 1}}}
}

func (s *setData) find(v Value) (int, bool) {
	i := sort.Search(len(s.items), func(i int) bool { return Compare(s.items[i], v) >= 0 })
	if i < len(s.items) && Equal(s.items[i], v) {
		return i, true
	}
	return i, false
}

func (s *setData) clone() *setData {
	cp := make([]Value, len(s.items))
	copy(cp, s.items)
	return &setData{items: cp}
}

func (s *setData) add(v Value) {
	i, ok := s.find(v)
	if ok {
		return
	}
	s.items = append(s.items, Value{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
}

func cowSet(v *Value) *setData {
	if v.set.isShared() {
		v.set = v.set.clone()
		v.set.refs = 1
	}
	return v.set
}

// SetAdd inserts val under copy-on-write, returning the (possibly
// rebound) set value. Duplicate inserts are no-ops per set semantics.
func SetAdd(set Value, val Value) Value {
	data := cowSet(&set)
	data.add(val)
	return Value{kind: KindSet, set: data}
}

// SetLen returns the element count.
func SetLen(v Value) int {
	if v.kind != KindSet {
		return 0
	}
	return len(v.set.items)
}

// SetItems exposes the ordered elements for iteration.
func SetItems(v Value) []Value {
	if v.kind != KindSet {
		return nil
	}
	return v.set.items
}

// SetContains backs the Contains instruction for sets.
func SetContains(v Value, val Value) bool {
	if v.kind != KindSet {
		return false
	}
	_, ok := v.set.find(val)
	return ok
}
