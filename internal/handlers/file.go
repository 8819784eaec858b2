package handlers

import (
	"os"

	"github.com/FujiNetWIFI/tnfsd/internal/errtab"
	"github.com/FujiNetWIFI/tnfsd/internal/hostio"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
)

// Open flag bits (spec.md §4.7 OPEN). spec.md names the operation but not
// its wire encoding; the layout is this daemon's own. Only the
// access-mode bits (WRONLY 0x01, RDWR 0x02) share POSIX's O_* values;
// translateOpenFlags maps each bit to its os.O_* flag.
const (
	openWronly byte = 0x01
	openRdwr   byte = 0x02
	openAppend byte = 0x08
	openCreat  byte = 0x10
	openTrunc  byte = 0x20
	openExcl   byte = 0x40
)

func translateOpenFlags(tnfsFlags uint16) int {
	b := byte(tnfsFlags)
	flags := os.O_RDONLY
	switch {
	case b&openRdwr != 0:
		flags = os.O_RDWR
	case b&openWronly != 0:
		flags = os.O_WRONLY
	}
	if b&openAppend != 0 {
		flags |= os.O_APPEND
	}
	if b&openCreat != 0 {
		flags |= os.O_CREATE
	}
	if b&openTrunc != 0 {
		flags |= os.O_TRUNC
	}
	if b&openExcl != 0 {
		flags |= os.O_EXCL
	}
	return flags
}

// Open handles OPEN: path(cstr) ∥ flags(2B LE) ∥ mode(2B LE). A handler
// that cannot complete leaves no lingering file-table slot (spec.md §7).
func (c *Context) Open(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, rest, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	tnfsFlags, rest, err := readU16(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	mode, _, err := readU16(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}

	host, err := c.Sandbox.Resolve(s.Root, path)
	if err != nil {
		return errtab.EACCES, nil
	}

	flags := translateOpenFlags(tnfsFlags)
	f, err := c.FS.Open(host, flags, os.FileMode(mode))
	if err != nil {
		return errtab.FromHostError(err), nil
	}

	idx, err := s.Files.Open(f, flags)
	if err != nil {
		f.Close()
		return errtab.EMFILE, nil
	}
	return errtab.Success, []byte{byte(idx)}
}

// Read handles READ: handle(1B) ∥ size(2B LE, capped at 512 per
// spec.md §5) ∥ offset(4B LE). Reply: count(2B LE) ∥ data, or status EOF
// with an empty payload at end of file (scenario S7).
func (c *Context) Read(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, rest, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	size, rest, err := readU16(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	offset, _, err := readU32(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}

	h, err := s.Files.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}
	f := h.FD.(*hostio.File)

	if size > 512 {
		size = 512
	}
	buf := make([]byte, size)
	n, err := f.Read(buf, int64(offset))
	if err != nil {
		return errtab.FromHostError(err), nil
	}
	if n == 0 && size > 0 {
		return errtab.EOF, nil
	}

	reply := appendU16(nil, uint16(n))
	return errtab.Success, append(reply, buf[:n]...)
}

// Write handles WRITE: handle(1B) ∥ offset(4B LE) ∥ size(2B LE) ∥ data.
// Reply: bytes_written(2B LE).
func (c *Context) Write(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, rest, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	offset, rest, err := readU32(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	size, rest, err := readU16(rest)
	if err != nil || int(size) > len(rest) {
		return errtab.EINVAL, nil
	}
	data := rest[:size]

	h, err := s.Files.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}
	f := h.FD.(*hostio.File)

	n, err := f.Write(data, int64(offset))
	if err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, appendU16(nil, uint16(n))
}

// Close handles CLOSE: handle(1B).
func (c *Context) Close(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, _, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	h, err := s.Files.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}
	f := h.FD.(*hostio.File)
	closeErr := f.Close()
	s.Files.Close(int(idx))
	if closeErr != nil {
		return errtab.FromHostError(closeErr), nil
	}
	return errtab.Success, nil
}

// Stat handles STAT: path(cstr). Reply: flags(1B) ∥ size(4B LE) ∥
// mtime(4B LE) ∥ ctime(4B LE), the same fixed fields as a directory entry
// (spec.md §3).
func (c *Context) Stat(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, _, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	host, err := c.Sandbox.Resolve(s.Root, path)
	if err != nil {
		return errtab.EACCES, nil
	}
	si, err := c.FS.Stat(host)
	if err != nil {
		return errtab.FromHostError(err), nil
	}

	var flags byte
	if si.IsDir {
		flags |= 0x01
	}
	if si.IsHidden {
		flags |= 0x02
	}
	if si.IsSpecial {
		flags |= 0x04
	}
	reply := []byte{flags}
	reply = appendU32(reply, uint32(si.Size))
	reply = appendU32(reply, uint32(si.ModTime.Unix()))
	reply = appendU32(reply, uint32(si.ChangeTime.Unix()))
	return errtab.Success, reply
}

// Seek whence values (spec.md §4.7 SEEK). This daemon's own choice,
// matching the conventional POSIX lseek encoding.
const (
	seekSet = 0
	seekCur = 1
	seekEnd = 2
)

// Seek handles SEEK: handle(1B) ∥ whence(1B) ∥ offset(4B LE signed, sent
// as its two's-complement bit pattern). Reply: new offset(4B LE).
func (c *Context) Seek(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, rest, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	whence, rest, err := readByte(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	offsetBits, _, err := readU32(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	offset := int64(int32(offsetBits))

	h, err := s.Files.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}
	f := h.FD.(*hostio.File)

	size, err := f.Size()
	if err != nil {
		return errtab.FromHostError(err), nil
	}

	var newPos int64
	switch whence {
	case seekSet:
		newPos = offset
	case seekCur:
		return errtab.EINVAL, nil // current-position tracking lives on the client; unsupported server-side
	case seekEnd:
		newPos = size + offset
	default:
		return errtab.EINVAL, nil
	}
	if newPos < 0 {
		return errtab.EINVAL, nil
	}
	return errtab.Success, appendU32(nil, uint32(newPos))
}

// Unlink handles UNLINK: path(cstr).
func (c *Context) Unlink(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, _, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	host, err := c.Sandbox.Resolve(s.Root, path)
	if err != nil {
		return errtab.EACCES, nil
	}
	if err := c.FS.Unlink(host); err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, nil
}

// Chmod handles CHMOD: path(cstr) ∥ mode(2B LE).
func (c *Context) Chmod(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, rest, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	mode, _, err := readU16(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	host, err := c.Sandbox.Resolve(s.Root, path)
	if err != nil {
		return errtab.EACCES, nil
	}
	if err := c.FS.Chmod(host, os.FileMode(mode)); err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, nil
}

// Rename handles RENAME: oldpath(cstr) ∥ newpath(cstr).
func (c *Context) Rename(s *session.Session, payload []byte) (errtab.Status, []byte) {
	oldPath, rest, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	newPath, _, err := readCString(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	oldHost, err := c.Sandbox.Resolve(s.Root, oldPath)
	if err != nil {
		return errtab.EACCES, nil
	}
	newHost, err := c.Sandbox.Resolve(s.Root, newPath)
	if err != nil {
		return errtab.EACCES, nil
	}
	if err := c.FS.Rename(oldHost, newHost); err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, nil
}
