// Package types implements the type system: a table of type descriptors
// together with the operations needed to build structures, species, enums,
// arrays, procedures and subtypes over it, compare two types structurally,
// and resolve aliases/detachments/species down to a core representation.
//
// Grounded on box/src/typesys.c and box/src/typesys.h, the original
// implementation this component is distilled from. The C original packs
// several unrelated meanings into two overloaded TSDesc fields (size doubles
// as "member offset" for structures and as "member's own size" for species
// and enums; target doubles as "head of the member chain" on a
// structure/species/enum descriptor and as "the aliased/array-element/member
// type" everywhere else). That reuse made sense for a single fixed-size C
// struct; translated here into a Go Descriptor with one field per role, the
// two meanings untangled rather than carried over as a comment.
//
// The descriptor table itself reuses internal/pool, the same slot-reusing
// container the register allocator and symbol table are built on.
package types

import (
	"box/internal/pool"
)

// Type is an opaque handle into a TypeSystem. Non-negative values index the
// descriptor table; a handful of negative values are reserved sentinels.
type Type int32

// Reserved sentinels. None and Void never index the descriptor table; Open,
// Close, Pause and Destroy mark the special bracket/control tokens of the
// language's object notation and carry no descriptor either.
const (
	TypeNone    Type = -1
	TypeVoid    Type = -2
	TypeOpen    Type = -3
	TypeClose   Type = -4
	TypePause   Type = -5
	TypeDestroy Type = -6
)

// IsSpecial reports whether t is one of the bracket/control sentinels.
func (t Type) IsSpecial() bool {
	switch t {
	case TypeOpen, TypeClose, TypePause, TypeDestroy:
		return true
	default:
		return false
	}
}

// SizeUnknown marks a descriptor whose size cannot be known until something
// else is resolved (an unregistered procedure or subtype, an array of
// unspecified length).
const SizeUnknown int64 = -1

// ArrayLengthUnknown marks an array descriptor created without a fixed
// length (Box's "()T" form, as opposed to "(N)T").
const ArrayLengthUnknown int = -1

// discriminantSize is the storage overhead an enum descriptor adds on top of
// its widest member, mirroring the original's sizeof(Int) tag reservation.
const discriminantSize int64 = 8

// Kind discriminates the variant held by a Descriptor.
type Kind int

const (
	KindIntrinsic Kind = iota
	KindAlias
	KindDetached
	KindArray
	KindStructure
	KindSpecies
	KindEnum
	KindMember
	KindProcedure
	KindSubtype
)

func (k Kind) String() string {
	switch k {
	case KindIntrinsic:
		return "intrinsic"
	case KindAlias:
		return "alias"
	case KindDetached:
		return "detached"
	case KindArray:
		return "array"
	case KindStructure:
		return "structure"
	case KindSpecies:
		return "species"
	case KindEnum:
		return "enum"
	case KindMember:
		return "member"
	case KindProcedure:
		return "procedure"
	case KindSubtype:
		return "subtype"
	default:
		return "unknown"
	}
}

// ProcKind is the pair of combinable bit flags a procedure is registered
// under, matching the two call forms the surface syntax exposes: a method
// called as "child@parent" and one called as "child@@parent". A procedure
// registered with both bits set answers a search issued under either form.
type ProcKind int

const (
	ProcKindMethod    ProcKind = 1 // child@parent
	ProcKindOperator  ProcKind = 2 // child@@parent
	ProcKindEither             = ProcKindMethod | ProcKindOperator
)

// Descriptor is the data held for one Type. Kind selects which group of
// fields is meaningful; fields outside that group are left at the zero
// value.
type Descriptor struct {
	Kind Kind
	Name string // "" if anonymous

	// Size is the byte size of the type as a whole. For Member descriptors
	// this is NOT the member's size: see MemberOffset/MemberSize below.
	Size int64

	// Target is the single "points to" relationship that every non-member,
	// non-structural kind has: the aliased type (Alias), the detached-from
	// type (Detached), the element type (Array), the member's own type
	// (Member), or the return/child type (Procedure).
	Target Type

	// Array
	ArrayLength int

	// Structure, Species, Enum: the member chain. MemberHead is the first
	// member added (Box calls this position "target" on the parent
	// descriptor in the original; here it gets its own name). MemberLast is
	// the most recently added member, which for a Species descriptor also
	// doubles as the conversion target: Box resolves a species to whichever
	// member was added last, not to the head of the chain.
	MemberHead  Type
	MemberLast  Type
	MemberCount int

	// Member: one link in a structure/species/enum's member chain. MemberOf
	// is the structure/species/enum this member was added to. MemberOffset
	// is meaningful for structure members only (the cumulative byte offset
	// within MemberOf at the time this member was appended); species and
	// enum members hold their own size on Target's descriptor already, so
	// MemberOffset is left at zero for those. MemberNext is the next member
	// in the chain, or MemberOf itself once the chain's end is reached —
	// callers walk the chain by following MemberNext until it equals the
	// type they started the walk on.
	MemberOf     Type
	MemberOffset int64
	MemberNext   Type

	// Procedure
	ProcParent Type
	ProcKind   ProcKind
	ProcSymNum int
	// ProcFirst is overloaded the same way the original's first_proc field
	// is: on any type used as a procedure's parent, it heads the chain of
	// procedures registered against that parent; on a Procedure descriptor
	// itself, it links to the next procedure sharing that parent. Only one
	// of the two roles applies to a given descriptor at a time, so the
	// field is kept singular rather than split into two always-mostly-empty
	// fields.
	ProcFirst Type

	// Subtype
	SubtypeParent    Type
	SubtypeChildName string
}

// TypeSystem owns the descriptor table and the two name-keyed lookup
// indexes (named members, registered subtypes).
type TypeSystem struct {
	descs     *pool.Pool[Descriptor]
	members   map[memberKey]Type
	subtypes  map[memberKey]Type
	nameCache map[Type]string
}

// memberKey names a (parent, name) pair, used both for a structure's named
// members and for a parent type's registered subtypes — exactly the index
// the original builds via its "full name" string concatenation of parent
// handle and child name.
type memberKey struct {
	Parent Type
	Name   string
}

// New creates an empty type system.
func New() *TypeSystem {
	return &TypeSystem{
		descs:     pool.New[Descriptor](64),
		members:   make(map[memberKey]Type),
		subtypes:  make(map[memberKey]Type),
		nameCache: make(map[Type]string),
	}
}

func (ts *TypeSystem) new_(d Descriptor) Type {
	// A new descriptor heads no procedure chain yet. Type 0 is a real
	// handle, so ProcFirst's zero value cannot stand for "none".
	d.ProcFirst = TypeNone
	return Type(ts.descs.OccupyWith(d) - 1)
}

func (ts *TypeSystem) desc(t Type) *Descriptor {
	return ts.descs.ItemPtr(int(t) + 1)
}

// Kind returns the kind of t.
func (ts *TypeSystem) Kind(t Type) Kind {
	return ts.desc(t).Kind
}

// Size returns the byte size associated with t, or SizeUnknown if it cannot
// be known yet (an array of unspecified length, an unregistered procedure or
// subtype).
func (ts *TypeSystem) Size(t Type) int64 {
	return ts.desc(t).Size
}

// Name returns t's name, or "" if t is anonymous.
func (ts *TypeSystem) Name(t Type) string {
	return ts.desc(t).Name
}

// IsAnonymous reports whether t was never given a name.
func (ts *TypeSystem) IsAnonymous(t Type) bool {
	if t == TypeNone {
		return true
	}
	return ts.desc(t).Name == ""
}

// SetName gives t a name. Setting a name twice on the same type is an error:
// the original forbids renaming outright rather than silently overwriting.
func (ts *TypeSystem) SetName(t Type, name string) error {
	d := ts.desc(t)
	if d.Name != "" {
		return errAlreadyNamed(t, d.Name, name)
	}
	d.Name = name
	clear(ts.nameCache)
	return nil
}

// IntrinsicNew registers a new primitive type of the given byte size.
func (ts *TypeSystem) IntrinsicNew(size int64) Type {
	return ts.new_(Descriptor{Kind: KindIntrinsic, Size: size, Target: TypeNone})
}

func (ts *TypeSystem) detachedLike(kind Kind, origin Type) Type {
	src := ts.desc(origin)
	return ts.new_(Descriptor{Kind: kind, Target: origin, Size: src.Size})
}

// AliasNew creates a new name for origin: an alias resolves transparently to
// origin wherever TS_KS_ALIAS-style resolution is requested.
func (ts *TypeSystem) AliasNew(origin Type) Type {
	return ts.detachedLike(KindAlias, origin)
}

// DetachedNew creates a type structurally identical to origin but that never
// compares Equal or Match to it: detachment is how two structurally
// identical record types are told apart.
func (ts *TypeSystem) DetachedNew(origin Type) Type {
	return ts.detachedLike(KindDetached, origin)
}

// ArrayNew creates an array of item repeated length times, or of unspecified
// length if length is ArrayLengthUnknown.
func (ts *TypeSystem) ArrayNew(item Type, length int) Type {
	itemSize := ts.desc(item).Size
	size := SizeUnknown
	if length >= 0 {
		size = int64(length) * itemSize
	}
	return ts.new_(Descriptor{
		Kind:        KindArray,
		Target:      item,
		Size:        size,
		ArrayLength: length,
	})
}

func (ts *TypeSystem) beginChain(kind Kind) Type {
	return ts.new_(Descriptor{Kind: kind, MemberHead: TypeNone, MemberLast: TypeNone})
}

// StructureBegin starts a new, empty structure. Members are appended with
// StructureAdd.
func (ts *TypeSystem) StructureBegin() Type { return ts.beginChain(KindStructure) }

// SpeciesBegin starts a new, empty species. Members are appended with
// SpeciesAdd.
func (ts *TypeSystem) SpeciesBegin() Type { return ts.beginChain(KindSpecies) }

// EnumBegin starts a new, empty enum. Members are appended with EnumAdd.
func (ts *TypeSystem) EnumBegin() Type { return ts.beginChain(KindEnum) }

// addMember is the shared body behind StructureAdd/SpeciesAdd/EnumAdd: it
// creates the Member descriptor, splices it onto the end of s's chain, and
// updates s's aggregate size per the kind-specific rule below.
func (ts *TypeSystem) addMember(kind Kind, s, member Type, name string) error {
	sd := ts.desc(s)
	if sd.Kind != kind {
		return errWrongKind(kind, sd.Kind)
	}
	memberSize := ts.desc(member).Size

	md := Descriptor{
		Kind:       KindMember,
		Target:     member,
		MemberOf:   s,
		MemberNext: s,
	}
	switch kind {
	case KindStructure:
		md.Name = name
		md.MemberOffset = sd.Size
	default:
		// Species/Enum: no offset concept, the size rule below tracks the
		// aggregate directly from each member's own size instead.
	}

	newM := ts.new_(md)

	if sd.MemberLast != TypeNone {
		ts.desc(sd.MemberLast).MemberNext = newM
	}
	sd.MemberLast = newM
	if sd.MemberHead == TypeNone {
		sd.MemberHead = newM
	}
	sd.MemberCount++

	switch kind {
	case KindStructure:
		sd.Size += memberSize
		if name != "" {
			key := memberKey{Parent: s, Name: name}
			if _, dup := ts.members[key]; dup {
				return errDuplicateMember(s, name)
			}
			ts.members[key] = newM
		}
	case KindEnum:
		tagged := memberSize + discriminantSize
		if tagged > sd.Size {
			sd.Size = tagged
		}
	default: // Species
		if memberSize > sd.Size {
			sd.Size = memberSize
		}
	}
	clear(ts.nameCache)
	return nil
}

// StructureAdd appends a field to structure s. name may be "" for an
// unnamed field (still addressable positionally, never by MemberFind).
func (ts *TypeSystem) StructureAdd(s, memberType Type, name string) error {
	return ts.addMember(KindStructure, s, memberType, name)
}

// SpeciesAdd appends member to species s. Members are always anonymous; the
// species resolves to whichever member was added last.
func (ts *TypeSystem) SpeciesAdd(s, member Type) error {
	return ts.addMember(KindSpecies, s, member, "")
}

// EnumAdd appends member to enum e.
func (ts *TypeSystem) EnumAdd(e, member Type) error {
	return ts.addMember(KindEnum, e, member, "")
}

// SpeciesTarget returns the type a species currently resolves to: the type
// of whichever member was added last. It is TypeNone for a species with no
// members yet. MemberLast itself holds the Member wrapper handle (the same
// representation MemberHead uses, so the chain-walking helpers below treat
// every member uniformly); SpeciesTarget unwraps it one level for callers
// that want the species' actual current type, not its member-chain node.
func (ts *TypeSystem) SpeciesTarget(species Type) Type {
	last := ts.desc(species).MemberLast
	if last == TypeNone {
		return TypeNone
	}
	return ts.desc(last).Target
}

// MemberNext walks the member chain: called with the structure/species/enum
// type itself it returns the head member; called with a member it returns
// the next member, or the parent type once the chain is exhausted. Test with
// IsMember to know which case was returned.
func (ts *TypeSystem) MemberNext(m Type) Type {
	d := ts.desc(m)
	if d.Kind == KindMember {
		return d.MemberNext
	}
	return d.MemberHead
}

// IsMember reports whether t is a Member descriptor (as opposed to the
// structure/species/enum a MemberNext walk terminates on).
func (ts *TypeSystem) IsMember(t Type) bool {
	if t == TypeNone {
		return false
	}
	return ts.desc(t).Kind == KindMember
}

// MemberCount returns the number of members of a structure, species or enum.
func (ts *TypeSystem) MemberCount(s Type) int {
	return ts.desc(s).MemberCount
}

// MemberGet returns the member's own type and, for a structure member, its
// byte offset within the parent (0 for species/enum members).
func (ts *TypeSystem) MemberGet(m Type) (memberType Type, offset int64) {
	d := ts.desc(m)
	return d.Target, d.MemberOffset
}

// MemberName returns a structure member's field name, or "" if it was added
// unnamed.
func (ts *TypeSystem) MemberName(m Type) string {
	return ts.desc(m).Name
}

// MemberFind looks up a structure's named field by name. The parent is
// resolved through aliases/species/detachment first, exactly as the name
// lookup in the original does, so a field can be found through an alias of
// the structure without the caller resolving it first.
func (ts *TypeSystem) MemberFind(parent Type, name string) (Type, bool) {
	parent = ts.Resolve(parent, KSAlias|KSSpecies|KSDetached)
	m, ok := ts.members[memberKey{Parent: parent, Name: name}]
	return m, ok
}
