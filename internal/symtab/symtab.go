// Package symtab implements minicc's two flat, insertion-ordered symbol
// directories (spec.md §3, §4.3): globals live for the whole compilation,
// locals are reset at every function prologue. Grounded on
// std/compiler/frontend.go's Package.Symbols bookkeeping (insertion-order
// symbol collection per package) and the frame-offset allocation the
// teacher's native backends perform when spilling locals, adapted here
// from a map to the ordered slice + linear scan spec.md requires (order of
// declaration is observable: lookups return the first match and §8's
// invariants depend on the order). Redeclaring a name is not rejected: a
// second entry is appended and lookups keep returning the first one.
package symtab

// Global is a top-level name: a function or a variable. InitValue is only
// meaningful for variables and holds the constant materialized into the
// .data section.
type Global struct {
	Name       string
	IsFunction bool
	IsExtern   bool
	InitValue  int64
}

// Local is a function-scoped name: a parameter or an ordinary local.
// Offset is signed bytes relative to rbp.
type Local struct {
	Name   string
	Offset int
}

// Table holds both directories for one compilation. Locals and the
// param/local counters are reset by NewScope at each function prologue;
// Globals and the string table (owned by the caller) persist for the run.
type Table struct {
	Globals []Global
	Locals  []Local

	localNo int
	paramNo int
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{}
}

// NewGlobal registers a global variable and returns its index.
func (t *Table) NewGlobal(name string) int {
	t.Globals = append(t.Globals, Global{Name: name})
	return len(t.Globals) - 1
}

// NewFunc registers a global function (local definition or extern import)
// and returns its index.
func (t *Table) NewFunc(name string, isExtern bool) int {
	t.Globals = append(t.Globals, Global{Name: name, IsFunction: true, IsExtern: isExtern})
	return len(t.Globals) - 1
}

// NewScope discards the current local table and resets the local/param
// counters, as happens at the start of every function body.
func (t *Table) NewScope() {
	t.Locals = nil
	t.localNo = 0
	t.paramNo = 0
}

// NewLocal registers an ordinary local and returns its index. Offset is
// -8*(local_no - param_no + 1) per spec.md §4.3: locals declared before
// any NewParam call get offsets as if no parameters existed yet, which is
// why NewParam must be called, for every parameter, before any ordinary
// local declaration in the same function (true of spec.md's grammar: the
// parameter list is always parsed before the body).
func (t *Table) NewLocal(name string) int {
	offset := -8 * (t.localNo - t.paramNo + 1)
	t.localNo++
	t.Locals = append(t.Locals, Local{Name: name, Offset: offset})
	return len(t.Locals) - 1
}

// NewParam registers a parameter and returns its index. It allocates a
// local slot first (for bookkeeping symmetry with NewLocal) and then
// overwrites the offset to the parameter's actual positive frame slot,
// 16 + 8*i, per spec.md §3/§4.3.
func (t *Table) NewParam(name string) int {
	idx := t.NewLocal(name)
	t.Locals[idx].Offset = 8 * (2 + t.paramNo)
	t.paramNo++
	return idx
}

// FrameSlots returns the total count of NewLocal calls for the current
// scope, counting parameters and ordinary locals alike (every NewParam
// call makes one). This is the slot count spec.md §4.8's prologue
// reserves via "sub rsp, 8*local_no" — it over-counts relative to what
// ordinary locals alone would need, since parameters also occupy a
// register-spill slot below rbp that their positive frame offset never
// actually addresses, but the allocation is harmless and spec.md §8
// states the invariant in exactly these terms.
func (t *Table) FrameSlots() int {
	return t.localNo
}

// LookupGlobal returns the index of the first (insertion-order) global
// named name, or -1.
func (t *Table) LookupGlobal(name string) int {
	for i := range t.Globals {
		if t.Globals[i].Name == name {
			return i
		}
	}
	return -1
}

// LookupLocal returns the index of the first (insertion-order) local
// named name, or -1.
func (t *Table) LookupLocal(name string) int {
	for i := range t.Locals {
		if t.Locals[i].Name == name {
			return i
		}
	}
	return -1
}

// ResolveKind distinguishes which directory Resolve found a name in.
type ResolveKind int

const (
	NotFound ResolveKind = iota
	InLocal
	InGlobal
)

// Resolve looks a name up in both directories and reports which one
// matched, preferring the local when both hit. spec.md §9 flags the
// original mini-c compiler's global-wins behavior as a suspected bug;
// this implementation takes the corrected local-shadows-global reading
// spec.md recommends.
func (t *Table) Resolve(name string) (ResolveKind, int) {
	if i := t.LookupLocal(name); i >= 0 {
		return InLocal, i
	}
	if i := t.LookupGlobal(name); i >= 0 {
		return InGlobal, i
	}
	return NotFound, -1
}
