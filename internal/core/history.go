package core

import "sync"

// history keeps the most recent import results, newest first.
type history struct {
	mu      sync.RWMutex
	entries []ImportResult
	limit   int
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) add(r ImportResult) {
	if h.limit <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]ImportResult{r}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

func (h *history) list() []ImportResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ImportResult, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *history) get(id string) (ImportResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.entries {
		if r.ImportID == id {
			return r, true
		}
	}
	return ImportResult{}, false
}
