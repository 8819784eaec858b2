package session

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/FujiNetWIFI/tnfsd/internal/handles"
)

// ErrSessionTableFull is returned by Mount when either the global or the
// per-IP session cap (spec.md §4.5, default 4096 each, independent per
// spec.md §9 Open Question) is already at capacity.
var ErrSessionTableFull = errors.New("session: table full")

// Options configures a Manager (spec.md §3, §4.5, §6).
type Options struct {
	FileSlots        int           // F, default 16
	DirSlots         int           // D, default 8
	DirHandleTTL     time.Duration // default 300s
	SessionTTL       time.Duration // default 600s, 0 disables
	MaxSessions      int           // default 4096
	MaxSessionsPerIP int           // default 4096, independently configurable
}

// DefaultOptions returns spec.md's documented defaults.
func DefaultOptions() Options {
	return Options{
		FileSlots:        16,
		DirSlots:         8,
		DirHandleTTL:     300 * time.Second,
		SessionTTL:       600 * time.Second,
		MaxSessions:      4096,
		MaxSessionsPerIP: 4096,
	}
}

// Manager owns the bounded, process-wide session table (spec.md §3
// "Global state"). Sessions are kept in a go-cache instance whose
// per-entry expiration equals the session TTL: go-cache's janitor
// goroutine performs the idle-timeout sweep (spec.md §4.5) without a
// hand-rolled ticker, and OnEvicted wires handle teardown into that sweep.
type Manager struct {
	opts Options

	mu         sync.Mutex
	sessions   *gocache.Cache
	perIPCount map[string]int

	cleanupFile func(*handles.FileHandle)
}

// NewManager constructs a Manager. cleanupFile, if non-nil, is invoked for
// every file handle closed by session teardown (wired to hostio.Close in
// production).
func NewManager(opts Options, cleanupFile func(*handles.FileHandle)) *Manager {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m := &Manager{
		opts:        opts,
		sessions:    gocache.New(ttl, time.Minute),
		perIPCount:  make(map[string]int),
		cleanupFile: cleanupFile,
	}
	m.sessions.OnEvicted(func(_ string, v interface{}) {
		s := v.(*Session)
		m.mu.Lock()
		m.perIPCount[s.PeerKey]--
		if m.perIPCount[s.PeerKey] <= 0 {
			delete(m.perIPCount, s.PeerKey)
		}
		m.mu.Unlock()

		// go-cache invokes this hook synchronously both from its own
		// janitor goroutine (idle TTL expiry, nobody holds s's lock
		// yet) and from an explicit Delete call (Unmount/Shutdown,
		// possibly made by a goroutine that already holds it). Only
		// take the lock ourselves when it is actually free; otherwise
		// the holder is already tearing the session down directly
		// (see Unmount) and must not be raced or deadlocked against.
		if s.TryLock() {
			s.CloseLocked(m.cleanupFile)
			s.Unlock()
		}
	})
	return m
}

// Mount allocates a fresh session id and Session (spec.md §4.5). peerIP
// identifies the client for the per-IP cap; peerKey is the full
// addr:port/connection identity stored on the Session.
func (m *Manager) Mount(peerIP, peerKey, sessionRoot string, version uint16, creds Credentials) (*Session, error) {
	m.mu.Lock()
	if m.sessions.ItemCount() >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, ErrSessionTableFull
	}
	if m.perIPCount[peerIP] >= m.opts.MaxSessionsPerIP {
		m.mu.Unlock()
		return nil, ErrSessionTableFull
	}
	m.mu.Unlock()

	id, err := m.allocateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := New(id, peerKey, sessionRoot, version, creds, m.opts.FileSlots, m.opts.DirSlots, m.opts.DirHandleTTL, now)

	m.mu.Lock()
	m.perIPCount[peerIP]++
	m.mu.Unlock()

	m.sessions.SetDefault(key(id), s)
	return s, nil
}

// allocateID picks a random nonzero id with no live collision (spec.md §4.5
// "recommended: random with probe").
func (m *Manager) allocateID() (uint16, error) {
	for attempt := 0; attempt < 65535; attempt++ {
		id := uint16(rand.Intn(65535) + 1) // nonzero
		if _, found := m.sessions.Get(key(id)); !found {
			return id, nil
		}
	}
	return 0, ErrSessionTableFull
}

// Find looks up a live session by id (spec.md §4.6 step 1).
func (m *Manager) Find(sid uint16) (*Session, bool) {
	v, ok := m.sessions.Get(key(sid))
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Touch records activity on a session and pushes its idle-timeout window
// back out (spec.md §4.6 step 3 "update last-activity"). go-cache's TTL
// measures time since the entry was last Set, so activity re-arms it by
// re-inserting the same pointer under the same expiration.
func (m *Manager) Touch(s *Session) {
	s.Touch(time.Now())
	m.sessions.SetDefault(key(s.ID), s)
}

// Unmount tears a session down immediately (spec.md §3 "destroyed by
// UMOUNT"). The caller (dispatch.Handle) already holds the session's
// request lock for the UMOUNT request being handled, so handles are
// closed directly here: the eviction hook that Delete runs synchronously
// finds the lock taken (TryLock fails) and closes nothing itself.
func (m *Manager) Unmount(sid uint16) {
	if s, ok := m.Find(sid); ok {
		s.CloseLocked(m.cleanupFile)
	}
	m.sessions.Delete(key(sid))
}

// Count returns the number of live sessions.
func (m *Manager) Count() int { return m.sessions.ItemCount() }

// Shutdown tears down every live session (spec.md §5 "server shutdown").
// Deleting one at a time (rather than Flush) ensures the OnEvicted handle
// teardown hook still runs for each.
func (m *Manager) Shutdown() {
	for k := range m.sessions.Items() {
		m.sessions.Delete(k)
	}
}

func key(id uint16) string { return strconv.Itoa(int(id)) }
