package engine

import (
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

// loopFrame tracks one active loop (Any/Every/ForEach). It mirrors the
// fields named in §4.5: an iterator over the collection, the
// key/value/result registers it writes, the three addresses the
// condition handler and LoopNext jump between, and the running
// success/total counters.
type loopFrame struct {
	mode       program.LoopMode
	iter       iterator
	keyReg     uint8
	hasKeyReg  bool
	valueReg   uint8
	resultReg  uint8
	bodyStart  uint32
	loopNextPC uint32
	loopEnd    uint32

	successes int
	total     int
	failed    bool // current iteration's condition outcome
}

// comprehensionFrame tracks one active comprehension accumulator.
type comprehensionFrame struct {
	mode    program.ComprehensionMode
	collReg uint8
	endPC   uint32
}

// callFrame records a CallRule/FunctionCall invocation while it runs:
// the rule being executed, its destination register, how many leading
// registers are retained across bodies, and whether this is a function
// (non-memoising) call. returnPC and retainReg1 are not filled in; the
// Go call stack carries the caller's pc.
type callFrame struct {
	returnPC   uint32
	ruleIndex  uint32
	dest       uint8
	retainReg1 uint8 // first retained slot above 0 (args/accumulator), see §4.7 step 2
	retainN    uint8
	isFunction bool
}

// iterator walks an array, object or set in the total order, without
// observing insertions made after LoopStart captured it: it advances an
// index through the element list taken at LoopStart (its own copy for
// objects and sets) rather than re-querying the container for the
// element after the current cursor (see §4.5).
type iterator struct {
	kind value.Kind

	arrItems []value.Value
	arrPos   int

	// object/set iteration advances by index through its own copy of
	// the entries/items, so copy-on-write clones or in-place inserts
	// made mid loop never perturb iteration order.
	objEntries []struct {
		Key value.Value
		Val value.Value
	}
	objPos int

	setItems []value.Value
	setPos   int
}

func newIterator(coll value.Value) (iterator, bool) {
	switch coll.Kind() {
	case value.KindArray:
		items := value.ArrayItems(coll)
		if len(items) == 0 {
			return iterator{}, false
		}
		return iterator{kind: value.KindArray, arrItems: items}, true
	case value.KindObject:
		entries := value.ObjectEntries(coll)
		if len(entries) == 0 {
			return iterator{}, false
		}
		return iterator{kind: value.KindObject, objEntries: entries}, true
	case value.KindSet:
		items := value.SetItems(coll)
		if len(items) == 0 {
			return iterator{}, false
		}
		return iterator{kind: value.KindSet, setItems: append([]value.Value(nil), items...)}, true
	default:
		return iterator{}, false
	}
}

// current returns the (key, value) pair at the iterator's position.
func (it *iterator) current() (key, val value.Value) {
	switch it.kind {
	case value.KindArray:
		return value.Int(int64(it.arrPos)), it.arrItems[it.arrPos]
	case value.KindObject:
		e := it.objEntries[it.objPos]
		return e.Key, e.Val
	case value.KindSet:
		v := it.setItems[it.setPos]
		return v, v
	}
	return value.Undefined(), value.Undefined()
}

// advance moves to the next element, reporting whether one exists.
func (it *iterator) advance() bool {
	switch it.kind {
	case value.KindArray:
		it.arrPos++
		return it.arrPos < len(it.arrItems)
	case value.KindObject:
		it.objPos++
		return it.objPos < len(it.objEntries)
	case value.KindSet:
		it.setPos++
		return it.setPos < len(it.setItems)
	}
	return false
}
