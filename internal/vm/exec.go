package vm

import (
	"math"

	"box/internal/boxerr"
	"box/internal/instr"
	"box/internal/regalloc"
)

// exec dispatches one decoded instruction against fr. It returns jumpTo (a
// word-offset pc to resume at, or -1 to fall through to the next
// instruction), done (true on OpRet), and an error.
//
// Grounded on box/src/vmexec.c's VM__Exec_* handler family, generalized from
// per-(mnemonic,type) C functions into one switch keyed on instr.Opcode,
// with Descriptor.Class telling each case which register class its operands
// address exactly the way vm_instr_desc_table's type column does.
//
// Comparison results (eq?/ne?/lt?/le?/gt?/ge?) and the scalar/point
// conversions (real/intg/point/projx/projy/pptrx/pptry) write their result
// into register 0 of the destination class ("the zero register" — ri0, rr0
// or rp0) instead of overwriting one of their operands in place. The
// original is inconsistent here: VM__Exec_Eq_II overwrites arg1 directly
// while VM__Exec_Eq_RR and VM__Exec_Eq_PP write through local[TYPE_INTG]
// instead. This VM picks the single zero-register convention uniformly
// rather than carrying that asymmetry forward; jc always tests Int
// register 0.
func (vm *VM) exec(fr *Frame, in instr.Instruction) (jumpTo int, done bool, err error) {
	jumpTo = -1
	d := instr.Describe(in.Op)
	get := func(i int) (any, error) {
		s, err := vm.resolve(fr, d.Class, in.Args[i])
		if err != nil {
			return nil, err
		}
		return s.get(), nil
	}
	set := func(i int, v any) error {
		s, err := vm.resolve(fr, d.Class, in.Args[i])
		if err != nil {
			return err
		}
		return s.set(v)
	}

	switch in.Op {
	case instr.OpLine:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		fr.line = int(v.(int64))
		return jumpTo, false, nil

	case instr.OpCall:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		return jumpTo, false, vm.RunCall(int(v.(int64)))

	case instr.OpNewC, instr.OpNewI, instr.OpNewR, instr.OpNewP, instr.OpNewO:
		nv, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		nr, err := get(1)
		if err != nil {
			return jumpTo, false, err
		}
		fr.alloc(d.Class, int(nv.(int64))+int(nr.(int64)))
		return jumpTo, false, nil

	case instr.OpMovC, instr.OpMovI, instr.OpMovR, instr.OpMovP, instr.OpMovO:
		v, err := get(1)
		if err != nil {
			return jumpTo, false, err
		}
		return jumpTo, false, set(0, v)

	case instr.OpBNot:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		return jumpTo, false, set(0, int64(^v.(int64)))
	case instr.OpBAnd:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a & b })
	case instr.OpBXor:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a ^ b })
	case instr.OpBOr:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a | b })
	case instr.OpShl:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a << uint(b) })
	case instr.OpShr:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a >> uint(b) })

	case instr.OpIncI:
		return jumpTo, false, unaryInt(get, set, func(a int64) int64 { return a + 1 })
	case instr.OpDecI:
		return jumpTo, false, unaryInt(get, set, func(a int64) int64 { return a - 1 })
	case instr.OpIncR:
		return jumpTo, false, unaryReal(get, set, func(a float64) float64 { return a + 1 })
	case instr.OpDecR:
		return jumpTo, false, unaryReal(get, set, func(a float64) float64 { return a - 1 })

	case instr.OpPowI:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return int64(math.Pow(float64(a), float64(b))) })
	case instr.OpPowR:
		return jumpTo, false, binaryReal(get, set, math.Pow)
	case instr.OpAddI:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a + b })
	case instr.OpAddR:
		return jumpTo, false, binaryReal(get, set, func(a, b float64) float64 { return a + b })
	case instr.OpAddP:
		return jumpTo, false, binaryPoint(get, set, func(a, b Point) Point { return Point{a.X + b.X, a.Y + b.Y} })
	case instr.OpSubI:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a - b })
	case instr.OpSubR:
		return jumpTo, false, binaryReal(get, set, func(a, b float64) float64 { return a - b })
	case instr.OpSubP:
		return jumpTo, false, binaryPoint(get, set, func(a, b Point) Point { return Point{a.X - b.X, a.Y - b.Y} })
	case instr.OpMulI:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return a * b })
	case instr.OpMulR:
		return jumpTo, false, binaryReal(get, set, func(a, b float64) float64 { return a * b })
	case instr.OpDivI:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 {
			if b == 0 {
				vm.fatal(boxerr.DivisionByZero, "vm: integer division by zero")
			}
			return a / b
		})
	case instr.OpDivR:
		return jumpTo, false, binaryReal(get, set, func(a, b float64) float64 { return a / b })
	case instr.OpRemI:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 {
			if b == 0 {
				vm.fatal(boxerr.DivisionByZero, "vm: integer remainder by zero")
			}
			return a % b
		})
	case instr.OpNegI:
		return jumpTo, false, unaryInt(get, set, func(a int64) int64 { return -a })
	case instr.OpNegR:
		return jumpTo, false, unaryReal(get, set, func(a float64) float64 { return -a })
	case instr.OpNegP:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		p := v.(Point)
		return jumpTo, false, set(0, Point{-p.X, -p.Y})

	case instr.OpPMulR:
		return jumpTo, false, pointScalar(vm, fr, get, set, func(p Point, s float64) Point { return Point{p.X * s, p.Y * s} })
	case instr.OpPDivR:
		return jumpTo, false, pointScalar(vm, fr, get, set, func(p Point, s float64) Point {
			if s == 0 {
				vm.fatal(boxerr.DivisionByZero, "vm: point division by zero scalar")
			}
			return Point{p.X / s, p.Y / s}
		})

	case instr.OpEqI:
		return jumpTo, false, compareInt(vm, fr, get, func(a, b int64) bool { return a == b })
	case instr.OpEqR:
		return jumpTo, false, compareReal(vm, fr, get, func(a, b float64) bool { return a == b })
	case instr.OpEqP:
		return jumpTo, false, comparePoint(vm, fr, get, func(a, b Point) bool { return a == b })
	case instr.OpNeI:
		return jumpTo, false, compareInt(vm, fr, get, func(a, b int64) bool { return a != b })
	case instr.OpNeR:
		return jumpTo, false, compareReal(vm, fr, get, func(a, b float64) bool { return a != b })
	case instr.OpNeP:
		return jumpTo, false, comparePoint(vm, fr, get, func(a, b Point) bool { return a != b })
	case instr.OpLtI:
		return jumpTo, false, compareInt(vm, fr, get, func(a, b int64) bool { return a < b })
	case instr.OpLtR:
		return jumpTo, false, compareReal(vm, fr, get, func(a, b float64) bool { return a < b })
	case instr.OpLeI:
		return jumpTo, false, compareInt(vm, fr, get, func(a, b int64) bool { return a <= b })
	case instr.OpLeR:
		return jumpTo, false, compareReal(vm, fr, get, func(a, b float64) bool { return a <= b })
	case instr.OpGtI:
		return jumpTo, false, compareInt(vm, fr, get, func(a, b int64) bool { return a > b })
	case instr.OpGtR:
		return jumpTo, false, compareReal(vm, fr, get, func(a, b float64) bool { return a > b })
	case instr.OpGeI:
		return jumpTo, false, compareInt(vm, fr, get, func(a, b int64) bool { return a >= b })
	case instr.OpGeR:
		return jumpTo, false, compareReal(vm, fr, get, func(a, b float64) bool { return a >= b })

	case instr.OpLNot:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		return jumpTo, false, set(0, boolInt(v.(int64) == 0))
	case instr.OpLAnd:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return boolInt(a != 0 && b != 0) })
	case instr.OpLOr:
		return jumpTo, false, binaryInt(get, set, func(a, b int64) int64 { return boolInt(a != 0 || b != 0) })

	case instr.OpRealC:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Real, 0) = float64(v.(byte))
		return jumpTo, false, nil
	case instr.OpRealI:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Real, 0) = float64(v.(int64))
		return jumpTo, false, nil
	case instr.OpIntgR:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Int, 0) = int64(v.(float64))
		return jumpTo, false, nil
	case instr.OpPointI:
		x, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		y, err := get(1)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Point, 0) = Point{X: float64(x.(int64)), Y: float64(y.(int64))}
		return jumpTo, false, nil
	case instr.OpPointR:
		x, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		y, err := get(1)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Point, 0) = Point{X: x.(float64), Y: y.(float64)}
		return jumpTo, false, nil
	case instr.OpProjX:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Real, 0) = v.(Point).X
		return jumpTo, false, nil
	case instr.OpProjY:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Real, 0) = v.(Point).Y
		return jumpTo, false, nil
	case instr.OpPPtrX:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Real, 0) = v.(Point).X
		return jumpTo, false, nil
	case instr.OpPPtrY:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		*fr.slot(regalloc.Real, 0) = v.(Point).Y
		return jumpTo, false, nil

	case instr.OpRet:
		return jumpTo, true, nil

	case instr.OpMalloc:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		n := int(v.(int64))
		obj := &Object{
			Chars:  make([]byte, n),
			Ints:   make([]int64, n),
			Reals:  make([]float64, n),
			Points: make([]Point, n),
			Objs:   make([]*Object, n),
		}
		*fr.slot(regalloc.Obj, fr.ro0) = obj
		return jumpTo, false, nil

	case instr.OpMFree:
		return jumpTo, false, set(0, (*Object)(nil))

	case instr.OpMCopy:
		dv, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		sv, err := get(1)
		if err != nil {
			return jumpTo, false, err
		}
		dst, _ := dv.(*Object)
		src, _ := sv.(*Object)
		if dst == nil || src == nil {
			return jumpTo, false, boxerr.New(boxerr.SlotOutOfRange, "vm: mcopy with a nil object")
		}
		dst.Chars = append([]byte(nil), src.Chars...)
		dst.Ints = append([]int64(nil), src.Ints...)
		dst.Reals = append([]float64(nil), src.Reals...)
		dst.Points = append([]Point(nil), src.Points...)
		dst.Objs = append([]*Object(nil), src.Objs...)
		return jumpTo, false, nil

	case instr.OpLea:
		return jumpTo, false, execLea(vm, fr, in)
	case instr.OpLeaO:
		v, err := get(1)
		if err != nil {
			return jumpTo, false, err
		}
		return jumpTo, false, set(0, v)

	case instr.OpPush:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		vm.stack = append(vm.stack, v)
		return jumpTo, false, nil
	case instr.OpPop:
		if len(vm.stack) == 0 {
			return jumpTo, false, boxerr.New(boxerr.SlotOutOfRange, "vm: pop with an empty stack")
		}
		top := vm.stack[len(vm.stack)-1]
		vm.stack = vm.stack[:len(vm.stack)-1]
		return jumpTo, false, set(0, top)

	case instr.OpJmp:
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		return int(v.(int64)), false, nil
	case instr.OpJc:
		cond := *fr.slot(regalloc.Int, 0)
		v, err := get(0)
		if err != nil {
			return jumpTo, false, err
		}
		if cond.(int64) != 0 {
			return int(v.(int64)), false, nil
		}
		return jumpTo, false, nil

	default:
		return jumpTo, false, boxerr.New(boxerr.UnknownOpcode, "vm: unhandled opcode %s", in.Op)
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func binaryInt(get func(int) (any, error), set func(int, any) error, f func(a, b int64) int64) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	b, err := get(1)
	if err != nil {
		return err
	}
	return set(0, f(a.(int64), b.(int64)))
}

func unaryInt(get func(int) (any, error), set func(int, any) error, f func(a int64) int64) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	return set(0, f(a.(int64)))
}

func binaryReal(get func(int) (any, error), set func(int, any) error, f func(a, b float64) float64) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	b, err := get(1)
	if err != nil {
		return err
	}
	return set(0, f(a.(float64), b.(float64)))
}

func unaryReal(get func(int) (any, error), set func(int, any) error, f func(a float64) float64) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	return set(0, f(a.(float64)))
}

func binaryPoint(get func(int) (any, error), set func(int, any) error, f func(a, b Point) Point) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	b, err := get(1)
	if err != nil {
		return err
	}
	return set(0, f(a.(Point), b.(Point)))
}

// pointScalar multiplies/divides a point register by the implicit scalar
// held in Real register 0 (rr0) — pmulr/pdivr take one explicit Point
// operand, the other operand is always the zero register, per the
// ro0/ri0/rr0 "zero register" convention documented on exec.
func pointScalar(vm *VM, fr *Frame, get func(int) (any, error), set func(int, any) error, f func(p Point, s float64) Point) error {
	p, err := get(0)
	if err != nil {
		return err
	}
	s := *fr.slot(regalloc.Real, 0)
	return set(0, f(p.(Point), s.(float64)))
}

func compareInt(vm *VM, fr *Frame, get func(int) (any, error), f func(a, b int64) bool) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	b, err := get(1)
	if err != nil {
		return err
	}
	*fr.slot(regalloc.Int, 0) = boolInt(f(a.(int64), b.(int64)))
	return nil
}

func compareReal(vm *VM, fr *Frame, get func(int) (any, error), f func(a, b float64) bool) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	b, err := get(1)
	if err != nil {
		return err
	}
	*fr.slot(regalloc.Int, 0) = boolInt(f(a.(float64), b.(float64)))
	return nil
}

func comparePoint(vm *VM, fr *Frame, get func(int) (any, error), f func(a, b Point) bool) error {
	a, err := get(0)
	if err != nil {
		return err
	}
	b, err := get(1)
	if err != nil {
		return err
	}
	*fr.slot(regalloc.Int, 0) = boolInt(f(a.(Point), b.(Point)))
	return nil
}

// execLea takes the address of in.Args[0] (an Int register, local or
// global) and stores the resulting Ref into the frame's
// object-pointer register (ro0), the way vmexec.c's addressing helpers
// hand back a raw pointer the next instruction dereferences.
func execLea(vm *VM, fr *Frame, in instr.Instruction) error {
	a := in.Args[0]
	// lea is declared over Int registers — the overwhelmingly common case
	// (array/string indexing) — rather than over whichever class the
	// addressed register actually is; a program needing another class
	// dereferences through ro0 and converts there instead.
	idx := int(a.Value)
	switch a.Mode {
	case instr.AddrLocal:
		*fr.slot(regalloc.Obj, fr.ro0) = Ref{
			Get: func() any { return *fr.slot(regalloc.Int, idx) },
			Set: func(v any) { *fr.slot(regalloc.Int, idx) = v },
		}
		return nil
	case instr.AddrGlobal:
		p := vm.globals.slot(regalloc.Int, idx)
		*fr.slot(regalloc.Obj, fr.ro0) = Ref{
			Get: func() any { return *p },
			Set: func(v any) { *p = v },
		}
		return nil
	default:
		return boxerr.New(boxerr.SlotOutOfRange, "vm: lea requires a local or global register operand")
	}
}
