package engine

import (
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// execVirtualLookup implements VirtualDataDocumentLookup (§4.8): walk
// the rule tree consuming path components, falling back to the data
// document for leaves the rule tree doesn't cover, and materialising
// virtual subobjects on demand when a path stops at an interior node.
func (e *Engine) execVirtualLookup(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.VirtualLookupBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidVirtualLookupParams, "virtual-lookup params index %d out of bounds", paramsIdx)
	}
	params := e.prog.VirtualLookupBlocks[paramsIdx]
	path, err := e.resolvePath(params.Path)
	if err != nil {
		return value.Undefined(), err
	}

	if cached, ok := e.evaluated.lookup(path); ok {
		e.cacheHits++
		return cached.Share(), nil
	}

	result, err := e.walkRuleTree(e.prog.RuleTree, path, nil)
	if err != nil {
		return value.Undefined(), err
	}
	e.evaluated.store(path, result)
	return result, nil
}

// walkRuleTree descends the rule tree one path component at a time.
// consumed is the prefix of path already stepped through, used to find
// the matching data document subtree and, when an interior node is
// materialised, each rule result's relative path.
func (e *Engine) walkRuleTree(node value.Value, remaining []value.Value, consumed []value.Value) (value.Value, error) {
	if len(remaining) == 0 {
		return e.materialize(node, consumed)
	}

	switch node.Kind() {
	case value.KindNumber:
		// leaf with a remaining path: evaluate the rule, then index the
		// remainder out of its result via plain data indexing.
		ruleIdx := node.AsNumber().Num().Int64()
		v, err := e.executeCallRule(0, uint32(ruleIdx), nil)
		if err != nil {
			return value.Undefined(), err
		}
		cur := v
		for _, k := range remaining {
			cur = value.Index(cur, k)
		}
		return cur, nil

	case value.KindObject:
		key := remaining[0]
		child := value.ObjectGet(node, key)
		if child.IsUndefined() {
			// no rule covers this branch; fall through to plain data.
			cur := e.dataAt(consumed)
			for _, k := range remaining {
				cur = value.Index(cur, k)
			}
			return cur, nil
		}
		return e.walkRuleTree(child, remaining[1:], append(append([]value.Value{}, consumed...), key))

	default:
		return value.Undefined(), vmerr.New(vmerr.InvalidRuleTreeEntry, "rule tree node is neither a leaf nor an interior object")
	}
}

// materialize handles a path that lands exactly on a rule-tree node
// with nothing left to consume: a leaf evaluates the rule directly, an
// interior node assembles a subobject keyed by every child, mixing in
// plain sibling data keys that aren't shadowed by a rule.
func (e *Engine) materialize(node value.Value, consumed []value.Value) (value.Value, error) {
	switch node.Kind() {
	case value.KindNumber:
		ruleIdx := node.AsNumber().Num().Int64()
		return e.executeCallRule(0, uint32(ruleIdx), nil)

	case value.KindObject:
		result := e.dataAt(consumed)
		if result.Kind() != value.KindObject {
			result = value.EmptyObject()
		}
		for _, entry := range value.ObjectEntries(node) {
			childPath := append(append([]value.Value{}, consumed...), entry.Key)
			v, err := e.walkRuleTree(entry.Val, nil, childPath)
			if err != nil {
				return value.Undefined(), err
			}
			if !v.IsUndefined() {
				result = value.ObjectSet(result, entry.Key.Share(), v)
			}
		}
		return result, nil

	default:
		return value.Undefined(), vmerr.New(vmerr.InvalidRuleTreeEntry, "rule tree node is neither a leaf nor an interior object")
	}
}

// dataAt indexes the root data document by a literal key path, never
// erroring; a missing or non-object step simply yields Undefined.
func (e *Engine) dataAt(path []value.Value) value.Value {
	cur := e.data
	for _, k := range path {
		cur = value.Index(cur, k)
	}
	return cur
}
