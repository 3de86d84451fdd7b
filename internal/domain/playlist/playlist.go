// Package playlist provides the user-curated playlist set.
package playlist

// Set is an ordered set of track IDs.
// Insertion order is preserved across toggles; removing an ID keeps the
// relative order of the remaining IDs.
type Set struct {
	ids []int
}

// NewSet creates a playlist set holding the given IDs in order.
// Duplicate IDs after the first occurrence are ignored.
func NewSet(ids ...int) *Set {
	s := &Set{ids: make([]int, 0, len(ids))}
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle appends id if absent, removes it if present.
// Returns true if id is a member after the call.
func (s *Set) Toggle(id int) bool {
	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id int) bool {
	return s.indexOf(id) >= 0
}

// IDs returns a copy of the IDs in insertion order.
func (s *Set) IDs() []int {
	result := make([]int, len(s.ids))
	copy(result, s.ids)
	return result
}

// Len returns the number of IDs.
func (s *Set) Len() int {
	return len(s.ids)
}

func (s *Set) indexOf(id int) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
