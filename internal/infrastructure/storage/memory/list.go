package memory

import (
	"bytes"
	"strings"
	"time"

	"factura/internal/core/id"
)

func matchIDs(ids []id.ID, v id.ID) bool {
	if len(ids) == 0 {
		return true
	}
	for _, x := range ids {
		if x == v {
			return true
		}
	}
	return false
}

// newerFirst orders by creation time, then by id (UUIDv7 is time ordered).
func newerFirst(a, b time.Time, aID, bID id.ID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return bytes.Compare(aID[:], bID[:]) > 0
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// matchSearch reports whether a document number or its client name
// contains the search term (already lower-cased).
func matchSearch(st *state, search string, number *string, clientID id.ID) bool {
	if search == "" {
		return true
	}
	if number != nil && strings.Contains(strings.ToLower(*number), search) {
		return true
	}
	c, ok := st.clients[clientID]
	return ok && strings.Contains(strings.ToLower(c.DisplayName), search)
}
