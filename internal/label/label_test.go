package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIsMonotonic(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Next())
	assert.Equal(t, 1, g.Next())
	assert.Equal(t, 2, g.Next())
}

func TestTextFormat(t *testing.T) {
	assert.Equal(t, "_00000000", Text(0))
	assert.Equal(t, "_00000042", Text(42))
	assert.Equal(t, "_12345678", Text(12345678))
}

func TestGeneratorsAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.Next()
	a.Next()
	assert.Equal(t, 0, b.Next())
}
