package handlers

import (
	"github.com/FujiNetWIFI/tnfsd/internal/errtab"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

// Version handles the informational VERSION command: no payload. Reply:
// versionMajor(1B) ∥ versionMinor(1B) (spec.md §6).
func (c *Context) Version(_ *session.Session, _ []byte) (errtab.Status, []byte) {
	return errtab.Success, []byte{wire.ProtocolVersionMajor, wire.ProtocolVersionMinor}
}

// Size handles the informational SIZE command: no payload. Reply:
// total(4B LE) ∥ free(4B LE) bytes on the filesystem backing the
// session's root.
func (c *Context) Size(s *session.Session, _ []byte) (errtab.Status, []byte) {
	host, err := c.Sandbox.Resolve(s.Root, "")
	if err != nil {
		return errtab.EACCES, nil
	}
	total, free, err := c.FS.FreeSpace(host)
	if err != nil {
		return errtab.FromHostError(err), nil
	}
	reply := appendU32(nil, uint32(total))
	return errtab.Success, appendU32(reply, uint32(free))
}

// Free is an alias informational command reporting only the free-space
// figure (some clients query FREE instead of SIZE): no payload. Reply:
// free(4B LE).
func (c *Context) Free(s *session.Session, _ []byte) (errtab.Status, []byte) {
	host, err := c.Sandbox.Resolve(s.Root, "")
	if err != nil {
		return errtab.EACCES, nil
	}
	_, free, err := c.FS.FreeSpace(host)
	if err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, appendU32(nil, uint32(free))
}
