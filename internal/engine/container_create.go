package engine

import (
	"rvmcore/internal/program"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// execArrayCreate builds an array from a parameter block (§4.3).
// Undefined propagation: any element register holding Undefined makes
// the whole result Undefined.
func (e *Engine) execArrayCreate(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.ArrayCreateBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidArrayCreateParams, "array-create params index %d out of bounds", paramsIdx)
	}
	params := e.prog.ArrayCreateBlocks[paramsIdx]
	items := make([]value.Value, 0, len(params.ElemRegs))
	for _, r := range params.ElemRegs {
		v := e.registers[r]
		if v.IsUndefined() {
			return value.Undefined(), nil
		}
		items = append(items, v.Share())
	}
	return value.Array(items), nil
}

func (e *Engine) execSetCreate(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.SetCreateBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidSetCreateParams, "set-create params index %d out of bounds", paramsIdx)
	}
	params := e.prog.SetCreateBlocks[paramsIdx]
	result := value.EmptySet()
	for _, r := range params.ElemRegs {
		v := e.registers[r]
		if v.IsUndefined() {
			return value.Undefined(), nil
		}
		result = value.SetAdd(result, v.Share())
	}
	return result, nil
}

// execObjectCreate builds an object from a template literal plus
// literal-keyed and register-keyed updates (§4.3). Literal pairs are
// applied in the parameter block's order, then non-literal (register)
// pairs; ObjectSet keeps entries in key order whatever the order of
// application, and duplicate keys let the last write win through its
// overwrite semantics.
func (e *Engine) execObjectCreate(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.ObjectCreateBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidObjectCreateParams, "object-create params index %d out of bounds", paramsIdx)
	}
	params := e.prog.ObjectCreateBlocks[paramsIdx]

	template, err := e.literal(params.TemplateLiteral)
	if err != nil {
		return value.Undefined(), err
	}
	if template.Kind() != value.KindObject {
		return value.Undefined(), vmerr.New(vmerr.ObjectCreateInvalidTemplate, "template literal %d is not an object", params.TemplateLiteral)
	}
	result := template.Share()

	if len(params.LiteralKeys) != len(params.LiteralValues) {
		return value.Undefined(), vmerr.New(vmerr.InvalidObjectCreateParams, "object-create literal key/value count mismatch")
	}
	for i, keyLit := range params.LiteralKeys {
		k, err := e.literal(keyLit)
		if err != nil {
			return value.Undefined(), err
		}
		v, err := e.literal(params.LiteralValues[i])
		if err != nil {
			return value.Undefined(), err
		}
		if v.IsUndefined() {
			return value.Undefined(), nil
		}
		result = value.ObjectSet(result, k, v)
	}

	if len(params.RegKeys) != len(params.RegValues) {
		return value.Undefined(), vmerr.New(vmerr.InvalidObjectCreateParams, "object-create register key/value count mismatch")
	}
	for i, kr := range params.RegKeys {
		k := e.registers[kr]
		v := e.registers[params.RegValues[i]]
		if k.IsUndefined() || v.IsUndefined() {
			return value.Undefined(), nil
		}
		result = value.ObjectSet(result, k.Share(), v.Share())
	}
	return result, nil
}

// resolvePath reads a literal-or-register path component sequence.
func (e *Engine) resolvePath(path []program.PathComponent) ([]value.Value, error) {
	out := make([]value.Value, len(path))
	for i, c := range path {
		if c.IsLiteral {
			v, err := e.literal(c.Literal)
			if err != nil {
				return nil, err
			}
			out[i] = v
		} else {
			out[i] = e.registers[c.Reg]
		}
	}
	return out, nil
}

// execChainedIndex walks a path from a root register, stopping early
// on Undefined (§4.3).
func (e *Engine) execChainedIndex(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.ChainedIndexBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidChainedIndexParams, "chained-index params index %d out of bounds", paramsIdx)
	}
	params := e.prog.ChainedIndexBlocks[paramsIdx]
	cur := e.registers[params.Root]
	for _, c := range params.Path {
		if cur.IsUndefined() {
			return value.Undefined(), nil
		}
		var key value.Value
		if c.IsLiteral {
			lit, err := e.literal(c.Literal)
			if err != nil {
				return value.Undefined(), err
			}
			key = lit
		} else {
			key = e.registers[c.Reg]
		}
		cur = value.Index(cur, key)
	}
	return cur, nil
}
