package engine

import (
	"strconv"
	"strings"

	"rvmcore/internal/value"
)

// evalCache is the per-execution memoisation tree virtual lookup uses
// to avoid re-evaluating a path it has already looked up (§4.8). Every
// looked-up path's result is stored at the node that path reaches, so
// a node can hold a memoised value and have children at once. It is an
// explicit tree keyed by pathKey's string rendering of each path
// component, rather than a nested value.Value object with an Undefined
// leaf key.
type evalCache struct {
	root *evalNode
}

type evalNode struct {
	children map[string]*evalNode
	val      value.Value
	has      bool
}

func newEvalCache() *evalCache {
	return &evalCache{root: &evalNode{}}
}

// pathKey renders a path component to a string that differs for
// distinct values: bool and container components include their
// contents, each nested part length-prefixed.
func pathKey(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		return "s:" + v.AsString()
	case value.KindNumber:
		return "n:" + v.AsNumber().RatString()
	default:
		var sb strings.Builder
		sb.WriteString("k:")
		sb.WriteString(strconv.Itoa(int(v.Kind())))
		if v.Kind() == value.KindBool {
			sb.WriteString(strconv.FormatBool(v.AsBool()))
		}
		parts := append(value.ArrayItems(v), value.SetItems(v)...)
		for _, e := range value.ObjectEntries(v) {
			parts = append(parts, e.Key, e.Val)
		}
		for _, p := range parts {
			k := pathKey(p)
			sb.WriteString(":" + strconv.Itoa(len(k)) + ":" + k)
		}
		return sb.String()
	}
}

func (c *evalCache) lookup(path []value.Value) (value.Value, bool) {
	n := c.root
	for _, p := range path {
		if n.children == nil {
			return value.Undefined(), false
		}
		next, ok := n.children[pathKey(p)]
		if !ok {
			return value.Undefined(), false
		}
		n = next
	}
	if n.has {
		return n.val, true
	}
	return value.Undefined(), false
}

func (c *evalCache) store(path []value.Value, v value.Value) {
	n := c.root
	for _, p := range path {
		if n.children == nil {
			n.children = make(map[string]*evalNode)
		}
		k := pathKey(p)
		next, ok := n.children[k]
		if !ok {
			next = &evalNode{}
			n.children[k] = next
		}
		n = next
	}
	n.val = v
	n.has = true
}
