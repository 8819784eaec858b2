package handles

import (
	"time"

	"github.com/FujiNetWIFI/tnfsd/internal/direngine"
)

// dirState is the Empty | Cached(load_time) | Held(cursor) tagged state of
// spec.md §9's redesign note for the two-shape handle. The enum carries
// only the state; the Held cursor itself lives in the handle's EntryList
// (preloaded) or ExtIterator (streaming).
type dirState int

const (
	stateEmpty dirState = iota
	stateCached
	stateHeld
)

// DirKind distinguishes the streaming and preloaded handle shapes
// (spec.md §3 "Directory handle").
type DirKind int

const (
	KindNone DirKind = iota
	KindStreaming
	KindPreloaded
)

// DirHandle is one directory-handle slot (spec.md §3). A streaming handle
// wraps a direngine.ExtIterator; a preloaded handle wraps a
// direngine.EntryList plus the bookkeeping spec.md requires for reuse
// (path, options, pattern) and the open/loaded state.
type DirHandle struct {
	Kind DirKind

	// Preloaded fields.
	Path      string // absolute, sandboxed host path the handle was opened on
	DirOpts   byte
	SortOpts  byte
	Pattern   string
	Entries   *direngine.EntryList
	loadedAt  time.Time

	// Streaming fields.
	Stream *direngine.ExtIterator

	state dirState
	open  bool
}

// Open reports whether the slot is currently held by a client (spec.md §3
// invariant: open implies loaded for preloaded handles).
func (h *DirHandle) Open() bool { return h.open }

// Loaded reports whether a preloaded handle's entry list is materialized.
func (h *DirHandle) Loaded() bool { return h.state != stateEmpty }

// MatchesReuseKey reports whether this loaded-not-open preloaded handle
// can be reused for a fresh opendirx request with the same (path, dirOpts,
// sortOpts, pattern) (spec.md §4.4.4 rule 1).
func (h *DirHandle) MatchesReuseKey(path string, dirOpts, sortOpts byte, pattern string) bool {
	return h.Kind == KindPreloaded &&
		h.Loaded() && !h.open &&
		h.Path == path && h.DirOpts == dirOpts && h.SortOpts == sortOpts && h.Pattern == pattern
}

// reset clears the slot back to KindNone/Empty.
func (h *DirHandle) reset() {
	*h = DirHandle{}
}

// DirTable is the fixed-size, per-session directory-handle table (size D,
// default 8), implementing the opendirx slot-allocation/GC policy of
// spec.md §4.4.4.
type DirTable struct {
	slots []DirHandle
	ttl   time.Duration
}

// NewDirTable allocates a table of size D with the given handle-cache TTL
// (spec.md §4.5 "directory-handle TTL", default 300s).
func NewDirTable(size int, ttl time.Duration) *DirTable {
	return &DirTable{slots: make([]DirHandle, size), ttl: ttl}
}

// Size returns D.
func (t *DirTable) Size() int { return len(t.slots) }

// Get returns the handle at idx, enforcing the strict idx < Size() bound
// (spec.md §9 mandated redesign) and that the slot is open.
func (t *DirTable) Get(idx int) (*DirHandle, error) {
	if idx < 0 || idx >= len(t.slots) || !t.slots[idx].open {
		return nil, ErrBadHandle
	}
	return &t.slots[idx], nil
}

// Count returns the number of currently open (client-held) slots
// (spec.md §8 property 3).
func (t *DirTable) Count() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].open {
			n++
		}
	}
	return n
}

// Allocate implements the spec.md §4.4.4 slot-allocation policy: garbage
// collect stale loaded-not-open slots, then try reuse, then an
// empty slot, then any not-open slot. It returns the slot index, the
// handle, and whether a cached slot was reused; when every slot is open it
// returns -1 and a nil handle.
func (t *DirTable) Allocate(now time.Time, reuse bool, path string, dirOpts, sortOpts byte, pattern string) (int, *DirHandle, bool) {
	t.gc(now)

	if reuse {
		for i := range t.slots {
			if t.slots[i].MatchesReuseKey(path, dirOpts, sortOpts, pattern) {
				t.slots[i].Entries.Seek(0)
				t.slots[i].open = true
				t.slots[i].state = stateHeld
				return i, &t.slots[i], true
			}
		}
	}

	for i := range t.slots {
		if !t.slots[i].open && !t.slots[i].Loaded() {
			return i, &t.slots[i], false
		}
	}
	for i := range t.slots {
		if !t.slots[i].open {
			t.slots[i].reset()
			return i, &t.slots[i], false
		}
	}
	return -1, nil, false
}

// gc evicts slots that are loaded, not open, and older than the handle
// cache TTL (spec.md §4.4.4 "Before allocation, the manager
// garbage-collects...").
func (t *DirTable) gc(now time.Time) {
	if t.ttl <= 0 {
		return
	}
	for i := range t.slots {
		s := &t.slots[i]
		if s.Loaded() && !s.open && now.Sub(s.loadedAt) > t.ttl {
			s.reset()
		}
	}
}

// FinishLoad fills a freshly allocated preloaded slot with its materialized
// entry list, marking it open and loaded.
func (h *DirHandle) FinishLoad(path string, dirOpts, sortOpts byte, pattern string, entries *direngine.EntryList, loadedAt time.Time) {
	h.Kind = KindPreloaded
	h.Path = path
	h.DirOpts = dirOpts
	h.SortOpts = sortOpts
	h.Pattern = pattern
	h.Entries = entries
	h.loadedAt = loadedAt
	h.open = true
	h.state = stateHeld
}

// StartStreaming fills a freshly allocated slot with a streaming iterator.
func (h *DirHandle) StartStreaming(it *direngine.ExtIterator) {
	h.Kind = KindStreaming
	h.Stream = it
	h.open = true
	h.state = stateHeld
}

// Release marks the slot as no longer held by the client. A preloaded
// handle remains loaded (a cached reuse candidate); a streaming handle has
// nothing worth caching and is fully reset (spec.md §3: "a handle may be
// loaded but not open ... but never open without being loaded").
func (t *DirTable) Release(idx int, now time.Time) error {
	h, err := t.Get(idx)
	if err != nil {
		return err
	}
	h.open = false
	if h.Kind == KindPreloaded {
		h.state = stateCached
		h.loadedAt = now
	} else {
		h.reset()
	}
	return nil
}

// CloseAll forcibly releases every open slot, used on session teardown.
func (t *DirTable) CloseAll() {
	for i := range t.slots {
		t.slots[i].reset()
	}
}
