package handlers

import (
	"github.com/FujiNetWIFI/tnfsd/internal/errtab"
	"github.com/FujiNetWIFI/tnfsd/internal/pathsandbox"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

// Mount handles MOUNT (spec.md §4.5, scenario S1): version(2B LE) ∥
// root(cstr) ∥ username(cstr) ∥ password(cstr). The requested root is
// validated against the global sandbox and stored as the session's
// sub-root; credentials are carried opaquely (spec.md §1 Non-goals).
func (c *Context) Mount(mgr *session.Manager, peerIP, peerKey string, payload []byte) (errtab.Status, []byte, *session.Session) {
	version, rest, err := readU16(payload)
	if err != nil {
		return errtab.EINVAL, nil, nil
	}
	root, rest, err := readCString(rest)
	if err != nil {
		return errtab.EINVAL, nil, nil
	}
	user, rest, err := readCString(rest)
	if err != nil {
		return errtab.EINVAL, nil, nil
	}
	pass, _, err := readCString(rest)
	if err != nil {
		return errtab.EINVAL, nil, nil
	}

	sessionRoot := pathsandbox.Normalize(root)
	if _, err := c.Sandbox.Resolve("", sessionRoot); err != nil {
		return errtab.EINVAL, nil, nil
	}

	s, err := mgr.Mount(peerIP, peerKey, sessionRoot, version, session.Credentials{Username: user, Password: pass})
	if err != nil {
		return errtab.SessionFull, nil, nil
	}

	reply := appendU16(nil, s.ID)
	reply = append(reply, wire.ProtocolVersionMajor, wire.ProtocolVersionMinor)
	reply = appendU16(reply, wire.MountTimeoutMillis)
	return errtab.Success, reply, s
}

// Umount handles UMOUNT: no payload, tears the session down immediately
// (spec.md §3).
func (c *Context) Umount(mgr *session.Manager, s *session.Session) (errtab.Status, []byte) {
	mgr.Unmount(s.ID)
	return errtab.Success, nil
}
