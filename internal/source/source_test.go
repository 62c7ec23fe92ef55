package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextAdvancesAndCountsLines(t *testing.T) {
	s := New([]byte("ab\ncd"))
	assert.Equal(t, byte('a'), s.Next())
	assert.Equal(t, 1, s.Line)
	assert.Equal(t, byte('b'), s.Next())
	assert.Equal(t, byte('\n'), s.Next())
	assert.Equal(t, 2, s.Line)
	assert.Equal(t, byte('c'), s.Next())
	assert.Equal(t, byte('d'), s.Next())
	assert.False(t, s.Eof())
	assert.Equal(t, byte(0), s.Next())
	assert.True(t, s.Eof())
}

func TestUnreadResolvesSlashVsLineComment(t *testing.T) {
	s := New([]byte("/x"))
	s.Next() // '/'
	before := s.Cur
	second := s.Next() // 'x'
	assert.Equal(t, byte('x'), second)

	assert.False(t, s.Unread(before))
	assert.Equal(t, byte('/'), s.Cur)
	assert.False(t, s.Eof())

	assert.Equal(t, byte('x'), s.Next())
	assert.False(t, s.Eof())
	assert.Equal(t, byte(0), s.Next())
	assert.True(t, s.Eof())
}

func TestEofFalseWhilePending(t *testing.T) {
	s := New([]byte("a"))
	s.Next()
	s.Next() // now AtEOF
	assert.True(t, s.Eof())
	s.Unread('z')
	assert.False(t, s.Eof())
}
