package set

import (
	"sort"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Names is a set of names over a fixed universe.
	// Each name is a bit at the index it was last declared at.
	Names struct {
		idx   map[string]int
		names []string
		bits  Bitmap
	}
)

// NewNames makes an empty set over the universe.
// Duplicates take the latest index.
func NewNames(universe []string) *Names {
	s := &Names{
		idx:   make(map[string]int, len(universe)),
		names: universe,
		bits:  MakeBitmap(len(universe)),
	}

	for i, n := range universe {
		s.idx[n] = i
	}

	return s
}

// Index returns the universe index of name or -1.
func (s *Names) Index(name string) int {
	i, ok := s.idx[name]
	if !ok {
		return -1
	}

	return i
}

// Add puts name into the set. Names out of universe are ignored.
func (s *Names) Add(name string) bool {
	i := s.Index(name)
	if i < 0 {
		return false
	}

	s.bits.Set(i)

	return true
}

func (s *Names) Has(name string) bool {
	if s == nil {
		return false
	}

	return s.bits.IsSet(s.Index(name))
}

func (s *Names) Size() int {
	if s == nil {
		return 0
	}

	return s.bits.Size()
}

// List returns names in the set sorted.
func (s *Names) List() []string {
	var l []string

	s.bits.Range(func(i int) bool {
		l = append(l, s.names[i])
		return true
	})

	sort.Strings(l)

	return l
}

func (s *Names) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	s.bits.Range(func(i int) bool {
		b = e.AppendString(b, s.names[i])
		return true
	})

	return e.AppendBreak(b)
}
