package cache

import "sync"

// DefaultRecencyWindow is how many recently-served question IDs are held
// back from re-selection.
const DefaultRecencyWindow = 15

// Recency is a bounded ring of recently-served IDs. Once full, the oldest
// entry falls out.
type Recency struct {
	mu   sync.Mutex
	ids  []string
	size int
}

// NewRecency creates a ring holding up to size IDs.
func NewRecency(size int) *Recency {
	if size <= 0 {
		size = DefaultRecencyWindow
	}
	return &Recency{size: size}
}

// Add records an ID as recently served.
func (r *Recency) Add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	r.ids = append(r.ids, id)
	if len(r.ids) > r.size {
		r.ids = r.ids[len(r.ids)-r.size:]
	}
}

// Contains reports whether the ID was served recently.
func (r *Recency) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Len returns the number of IDs currently held.
func (r *Recency) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
