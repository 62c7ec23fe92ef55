// Package label generates minicc's monotonically increasing jump-target
// labels and their fixed textual encoding. Grounded on the label/fixup
// bookkeeping in std/compiler/ir.go and backend.go (labelOffsets
// map[int]int), narrowed here to text emission since minicc writes fasm
// source rather than patching raw machine code offsets.
package label

import "fmt"

// Gen is a monotonic label counter. The zero value starts at label 0.
type Gen struct {
	next int
}

// New returns a fresh generator.
func New() *Gen {
	return &Gen{}
}

// Next allocates and returns the next label id.
func (g *Gen) Next() int {
	id := g.next
	g.next++
	return id
}

// Text returns a label id's fixed textual encoding: an underscore followed
// by eight zero-padded decimal digits. This format is load-bearing per
// spec.md §4.4 — every jump target in the emitted fasm source is spelled
// this way.
func Text(id int) string {
	return fmt.Sprintf("_%08d", id)
}
