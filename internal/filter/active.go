package filter

// ActiveSet is the ordered set of currently active fragments.
// The zero value is an empty set ready for use.
type ActiveSet struct {
	fragments []Fragment
}

// Add appends f unless a fragment with the same slot is already present.
// Returns false when nothing changed.
func (s *ActiveSet) Add(f Fragment) bool {
	if s.index(key(f)) >= 0 {
		return false
	}
	s.fragments = append(s.fragments, f)
	return true
}

// Remove deletes the fragment occupying f's slot.
// Returns false when no such fragment exists.
func (s *ActiveSet) Remove(f Fragment) bool {
	i := s.index(key(f))
	if i < 0 {
		return false
	}
	s.fragments = append(s.fragments[:i], s.fragments[i+1:]...)
	return true
}

// Replace removes any fragment in f's slot, then appends f unconditionally.
// Used for range fragments, which always move to the end of the sequence.
func (s *ActiveSet) Replace(f Fragment) {
	s.Remove(f)
	s.fragments = append(s.fragments, f)
}

// Lookup returns the range fragment registered under name, if any.
func (s *ActiveSet) Lookup(name string) (RangeFilter, bool) {
	i := s.index("range:" + name)
	if i < 0 {
		return RangeFilter{}, false
	}
	return s.fragments[i].(RangeFilter), true
}

// Fragments returns a copy of the active fragments in insertion order.
func (s *ActiveSet) Fragments() Fragments {
	out := make(Fragments, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// Len returns the number of active fragments.
func (s *ActiveSet) Len() int {
	return len(s.fragments)
}

// Clear removes every fragment.
func (s *ActiveSet) Clear() {
	s.fragments = nil
}

func (s *ActiveSet) index(k string) int {
	for i, f := range s.fragments {
		if key(f) == k {
			return i
		}
	}
	return -1
}
