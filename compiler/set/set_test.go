package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	b := MakeBitmap(10)

	b.Set(1)
	b.Set(70)
	b.Set(3)

	assert.True(t, b.IsSet(70))
	assert.False(t, b.IsSet(2))
	assert.False(t, b.IsSet(-1))
	assert.False(t, b.IsSet(1000))
	assert.Equal(t, 3, b.Size())

	var l []int

	b.Range(func(i int) bool {
		l = append(l, i)
		return true
	})

	assert.Equal(t, []int{1, 3, 70}, l)

	l = l[:0]

	b.Range(func(i int) bool {
		l = append(l, i)
		return i < 3
	})

	assert.Equal(t, []int{1, 3}, l)
}

func TestNames(t *testing.T) {
	s := NewNames([]string{"f", "g", "f", "main"})

	assert.Equal(t, 2, s.Index("f"))
	assert.Equal(t, -1, s.Index("nope"))

	assert.True(t, s.Add("f"))
	assert.False(t, s.Add("nope"))

	assert.True(t, s.Has("f"))
	assert.False(t, s.Has("g"))
	assert.False(t, s.Has("nope"))
	assert.Equal(t, 1, s.Size())

	s.Add("main")

	assert.Equal(t, []string{"f", "main"}, s.List())

	wire := s.TlogAppend(nil)
	assert.Contains(t, string(wire), "main")
	assert.NotContains(t, string(wire), "g")

	var nilSet *Names
	assert.False(t, nilSet.Has("f"))
}
