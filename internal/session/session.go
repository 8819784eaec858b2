// Package session implements session lifecycle, identifier allocation,
// and the request-retransmission cache (spec.md §3, §4.5, §4.6).
package session

import (
	"sync"
	"time"

	"github.com/FujiNetWIFI/tnfsd/internal/handles"
)

// Credentials is the opaque mount-time username/password pair spec.md §3
// and §4 (SUPPLEMENTED FEATURES) describe: stored, never validated.
type Credentials struct {
	Username string
	Password string
}

// replyCache is the per-session "last reply" used for retransmission
// detection (spec.md §4.6).
type replyCache struct {
	seq     uint8
	command uint8
	valid   bool
	bytes   []byte
}

// Session is one client mount (spec.md §3).
type Session struct {
	ID uint16

	// PeerKey identifies the client's network identity (datagram
	// addr:port, or stream connection id) opaquely to this package.
	PeerKey string

	Root        string // session sub-root beneath the global root
	Version     uint16 // client-declared protocol version
	Credentials Credentials

	Files *handles.FileTable
	Dirs  *handles.DirTable

	LastActivity  time.Time
	LastDirForLog string // last directory path, for usage logging only

	// mu serializes every in-flight request against this session
	// (spec.md §5: "at most one in-flight request per session id"), so
	// that a goroutine-per-connection transport and the idle-timeout
	// janitor can never run a handler concurrently with handle teardown.
	// dispatch.Dispatcher.Handle holds it for the whole of one request;
	// Manager's eviction hook takes it itself before closing an idle
	// session out from under nobody.
	mu sync.Mutex

	cache replyCache
}

// Lock acquires the session's request lock. Callers must Unlock it once
// the request (or eviction) is finished, even on an error path.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's request lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// TryLock attempts to acquire the session's request lock without
// blocking. Used by the eviction hook to detect the case where the
// calling goroutine already holds the lock (an in-flight UMOUNT closing
// the session directly) and must not try to take it a second time.
func (s *Session) TryLock() bool { return s.mu.TryLock() }

// New constructs a Session with file/dir tables sized F and D
// (spec.md §3, defaults 16/8) and the given directory-handle cache TTL.
func New(id uint16, peerKey, root string, version uint16, creds Credentials, fileSlots, dirSlots int, dirHandleTTL time.Duration, now time.Time) *Session {
	return &Session{
		ID:           id,
		PeerKey:      peerKey,
		Root:         root,
		Version:      version,
		Credentials:  creds,
		Files:        handles.NewFileTable(fileSlots),
		Dirs:         handles.NewDirTable(dirSlots, dirHandleTTL),
		LastActivity: now,
	}
}

// Touch updates the last-activity timestamp (spec.md §4.6 step 3).
func (s *Session) Touch(now time.Time) { s.LastActivity = now }

// Expired reports whether the session has been idle longer than ttl
// (spec.md §4.5; ttl<=0 disables the timeout).
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastActivity) > ttl
}

// closeLocked releases every open file and directory handle the session
// owns (spec.md §4.5 "Invalidation closes every open file and directory
// handle owned by the session"). The caller must already hold the
// session's lock.
func (s *Session) closeLocked(cleanupFile func(*handles.FileHandle)) {
	s.Files.CloseAll(cleanupFile)
	s.Dirs.CloseAll()
}

// Close acquires the session's lock and releases every open file and
// directory handle it owns, for callers that do not already hold the
// lock. (Manager's eviction hook uses TryLock and CloseLocked instead.)
func (s *Session) Close(cleanupFile func(*handles.FileHandle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked(cleanupFile)
}

// CloseLocked is the explicit-UMOUNT counterpart to Close: it assumes
// the caller (dispatch.Handle) already holds the session's lock for the
// request being handled and must not try to re-acquire it.
func (s *Session) CloseLocked(cleanupFile func(*handles.FileHandle)) {
	s.closeLocked(cleanupFile)
}

// CachedReply returns the cached reply bytes if (seq, cmd) matches the
// last request this session answered, implementing the at-most-once
// retransmission check of spec.md §4.6 step 2.
func (s *Session) CachedReply(seq, cmd uint8) ([]byte, bool) {
	if s.cache.valid && s.cache.seq == seq && s.cache.command == cmd {
		return s.cache.bytes, true
	}
	return nil, false
}

// CacheReply stores the most recent reply for possible retransmission
// (spec.md §4.6 step 3).
func (s *Session) CacheReply(seq, cmd uint8, reply []byte) {
	s.cache = replyCache{seq: seq, command: cmd, valid: true, bytes: reply}
}
