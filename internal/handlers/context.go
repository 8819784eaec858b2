package handlers

import (
	"time"

	"github.com/FujiNetWIFI/tnfsd/internal/hostio"
	"github.com/FujiNetWIFI/tnfsd/internal/pathsandbox"
)

// Context bundles the process-wide, read-mostly collaborators every
// handler needs (spec.md §5 "the session table and the global root path
// are process-wide; both are read-mostly"). One Context is shared by the
// whole server; per-session state is threaded through as an explicit
// argument to each handler instead of living on this struct, per spec.md
// §9's "model as a long-lived server context passed explicitly" note.
type Context struct {
	Sandbox *pathsandbox.Sandbox
	FS      *hostio.FS

	// Now is overridable in tests; defaults to time.Now via NewContext.
	Now func() time.Time
}

// NewContext builds a Context bound to root and the host filesystem.
func NewContext(sandbox *pathsandbox.Sandbox, fs *hostio.FS) *Context {
	return &Context{Sandbox: sandbox, FS: fs, Now: time.Now}
}
