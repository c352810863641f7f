package portfolio

import "sync"

// Selection is an ordered multi-select set of SKU IDs.
// Insertion order is preserved so exports come out in the order the
// operator clicked, and it is safe for concurrent handler access.
type Selection struct {
	mu    sync.Mutex
	index map[string]int
	order []string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{index: make(map[string]int)}
}

// Toggle adds the ID if absent, removes it if present.
// Returns true when the ID is selected after the call.
func (s *Selection) Toggle(skuID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[skuID]; ok {
		s.removeLocked(skuID)
		return false
	}
	s.index[skuID] = len(s.order)
	s.order = append(s.order, skuID)
	return true
}

// SelectAll replaces the selection with the given IDs, deduplicated,
// keeping first-occurrence order.
func (s *Selection) SelectAll(skuIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = make(map[string]int, len(skuIDs))
	s.order = s.order[:0]
	for _, id := range skuIDs {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = len(s.order)
		s.order = append(s.order, id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]int)
	s.order = s.order[:0]
}

// Contains reports whether the ID is currently selected.
func (s *Selection) Contains(skuID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[skuID]
	return ok
}

// IDs returns the selected IDs in insertion order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of selected IDs.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Prune drops IDs no longer present in the catalog, keeping order.
func (s *Selection) Prune(valid map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := valid[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
	s.index = make(map[string]int, len(kept))
	for i, id := range kept {
		s.index[id] = i
	}
}

func (s *Selection) removeLocked(skuID string) {
	pos := s.index[skuID]
	delete(s.index, skuID)
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	for i := pos; i < len(s.order); i++ {
		s.index[s.order[i]] = i
	}
}
