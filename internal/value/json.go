package value

import (
	"fmt"
	"math/big"
)

// FromJSON converts a decoded encoding/json value (as produced by
// json.Unmarshal into interface{}) into a Value. Object key order
// follows the total order on keys, not the source's textual order,
// since the engine never observes insertion order.
func FromJSON(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(ratFromFloat(t))
	case string:
		return String(t)
	case []interface{}:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromJSON(e)
		}
		return Array(items)
	case map[string]interface{}:
		o := EmptyObject()
		for k, e := range t {
			o = ObjectSet(o, String(k), FromJSON(e))
		}
		return o
	default:
		return Undefined()
	}
}

func ratFromFloat(f float64) *big.Rat {
	r := new(big.Rat)
	r.SetFloat64(f)
	return r
}

// ToJSON converts a Value back into a plain interface{} tree suitable
// for encoding/json.Marshal. Undefined has no JSON representation and
// converts to nil, matching how a top-level undefined rule result is
// reported to a host as JSON null.
func ToJSON(v Value) interface{} {
	switch v.kind {
	case KindUndefined, KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		f, _ := v.num.Float64()
		return f
	case KindString:
		return v.str
	case KindArray:
		items := ArrayItems(v)
		out := make([]interface{}, len(items))
		for i, e := range items {
			out[i] = ToJSON(e)
		}
		return out
	case KindSet:
		items := SetItems(v)
		out := make([]interface{}, len(items))
		for i, e := range items {
			out[i] = ToJSON(e)
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, ObjectLen(v))
		for _, e := range ObjectEntries(v) {
			out[fmt.Sprint(stringKey(e.Key))] = ToJSON(e.Val)
		}
		return out
	}
	return nil
}

// stringKey renders a non-string object key as its string value for
// JSON's string-keyed-map requirement; policy object keys are strings
// in the overwhelming common case.
func stringKey(k Value) string {
	if k.kind == KindString {
		return k.str
	}
	return fmt.Sprint(ToJSON(k))
}
