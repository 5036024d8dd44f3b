package value

import (
	"bytes"
	"encoding/gob"
	"math/big"
)

// wireValue is Value's gob wire format. Value's own fields are
// unexported (container internals in particular carry a reference
// count gob has no business persisting), so GobEncode/GobDecode route
// through this explicit, exported mirror instead of asking gob to
// reflect over Value directly.
type wireValue struct {
	Kind Kind
	B    bool
	Num  *big.Rat
	Str  string

	ArrItems []Value

	ObjKeys []Value
	ObjVals []Value

	SetItems []Value
}

func (v Value) GobEncode() ([]byte, error) {
	w := wireValue{Kind: v.kind, B: v.b, Num: v.num, Str: v.str}
	switch v.kind {
	case KindArray:
		w.ArrItems = v.arr.items
	case KindObject:
		for _, e := range v.obj.entries {
			w.ObjKeys = append(w.ObjKeys, e.key)
			w.ObjVals = append(w.ObjVals, e.val)
		}
	case KindSet:
		w.SetItems = v.set.items
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) GobDecode(data []byte) error {
	var w wireValue
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	*v = Value{kind: w.Kind, b: w.B, num: w.Num, str: w.Str}
	switch w.Kind {
	case KindArray:
		v.arr = &arrayData{container: container{refs: 1}, items: w.ArrItems}
	case KindObject:
		obj := &objectData{container: container{refs: 1}}
		for i := range w.ObjKeys {
			obj.entries = append(obj.entries, entry{key: w.ObjKeys[i], val: w.ObjVals[i]})
		}
		v.obj = obj
	case KindSet:
		v.set = &setData{container: container{refs: 1}, items: w.SetItems}
	}
	return nil
}
