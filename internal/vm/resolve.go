package vm

import (
	"box/internal/boxerr"
	"box/internal/instr"
	"box/internal/regalloc"
)

// slot is a resolved addressable operand: get reads its current value, set
// writes a new one (set returns an error for an immediate operand, which
// has no storage to write back to).
type slot struct {
	get func() any
	set func(any) error
}

var errImmediateWrite = boxerr.New(boxerr.SlotOutOfRange, "vm: cannot write to an immediate operand")

// resolve turns one instruction argument into a slot, addressed the way
// spec.md §4.4 and the disassembler's syntax describe: grT<n> (global),
// rT<n> (local), T[ro0+k] (pointer, through the frame's object-pointer
// register), or a bare immediate.
func (vm *VM) resolve(fr *Frame, class regalloc.Class, a instr.Arg) (slot, error) {
	switch a.Mode {
	case instr.AddrImmediate:
		v := immediateAsClass(class, a.Value)
		return slot{
			get: func() any { return v },
			set: func(any) error { return errImmediateWrite },
		}, nil

	case instr.AddrGlobal:
		p := vm.globals.slot(class, int(a.Value))
		return slot{
			get: func() any { return *p },
			set: func(v any) error { *p = v; return nil },
		}, nil

	case instr.AddrLocal:
		p := fr.slot(class, int(a.Value))
		return slot{
			get: func() any { return *p },
			set: func(v any) error { *p = v; return nil },
		}, nil

	case instr.AddrPointer:
		return vm.resolvePointer(fr, class, int(a.Value))

	default:
		return slot{}, boxerr.New(boxerr.UnknownOpcode, "vm: unrecognized addressing mode %d", a.Mode)
	}
}

// resolvePointer dereferences through the frame's current object-pointer
// register (ro0, register 0 of the Obj class), the runtime counterpart of
// the disassembler's "T[ro0+k]" syntax. If ro0 holds a Ref (produced by
// `lea` over a scalar register) the Ref's own get/set is used directly;
// if it holds an *Object, k indexes that object's class-appropriate slice.
func (vm *VM) resolvePointer(fr *Frame, class regalloc.Class, offset int) (slot, error) {
	base := *fr.slot(regalloc.Obj, fr.ro0)
	switch t := base.(type) {
	case Ref:
		return slot{get: t.Get, set: func(v any) error { t.Set(v); return nil }}, nil
	case *Object:
		if t == nil {
			return slot{}, boxerr.New(boxerr.SlotOutOfRange, "vm: dereference through a nil object pointer")
		}
		return objectSlot(t, class, offset), nil
	default:
		return slot{}, boxerr.New(boxerr.SlotOutOfRange, "vm: object-pointer register ro0 holds no object")
	}
}

// objectSlot addresses element index of obj's slice for class, growing the
// slice in place if index is out of range (an object's field count is only
// as fixed as what's been allocated so far, mirroring how malloc sizes it).
func objectSlot(obj *Object, class regalloc.Class, index int) slot {
	if index < 0 {
		index = 0
	}
	switch class {
	case regalloc.Char:
		for index >= len(obj.Chars) {
			obj.Chars = append(obj.Chars, 0)
		}
		return slot{
			get: func() any { return obj.Chars[index] },
			set: func(v any) error { obj.Chars[index] = v.(byte); return nil },
		}
	case regalloc.Int:
		for index >= len(obj.Ints) {
			obj.Ints = append(obj.Ints, 0)
		}
		return slot{
			get: func() any { return obj.Ints[index] },
			set: func(v any) error { obj.Ints[index] = v.(int64); return nil },
		}
	case regalloc.Real:
		for index >= len(obj.Reals) {
			obj.Reals = append(obj.Reals, 0)
		}
		return slot{
			get: func() any { return obj.Reals[index] },
			set: func(v any) error { obj.Reals[index] = v.(float64); return nil },
		}
	case regalloc.Point:
		for index >= len(obj.Points) {
			obj.Points = append(obj.Points, Point{})
		}
		return slot{
			get: func() any { return obj.Points[index] },
			set: func(v any) error { obj.Points[index] = v.(Point); return nil },
		}
	default:
		for index >= len(obj.Objs) {
			obj.Objs = append(obj.Objs, nil)
		}
		return slot{
			get: func() any { return obj.Objs[index] },
			set: func(v any) error { obj.Objs[index], _ = v.(*Object); return nil },
		}
	}
}

// immediateAsClass converts an instruction's raw 32-bit immediate into the
// Go value class expects. Immediates only ever carry whole numbers (counts,
// call targets, jump positions, small literals): a Real-class immediate
// becomes that whole number as a float64, and a Point-class immediate a
// point with that number as X and a zero Y.
func immediateAsClass(class regalloc.Class, raw int32) any {
	switch class {
	case regalloc.Char:
		return byte(raw)
	case regalloc.Real:
		return float64(raw)
	case regalloc.Point:
		return Point{X: float64(raw)}
	case regalloc.Obj:
		return (*Object)(nil)
	default:
		return int64(raw)
	}
}
