// Package errtab translates host errors (errno-style, surfaced through the
// Go stdlib as os.PathError/os.LinkError/os.ErrX sentinels) into the TNFS
// wire status taxonomy (spec.md §6).
package errtab

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// Status is a single wire status byte.
type Status byte

// Status codes, spec.md §6.
const (
	Success       Status = 0x00
	EPERM         Status = 0x01
	ENOENT        Status = 0x02
	EIO           Status = 0x03
	EBADF         Status = 0x04
	ENOMEM        Status = 0x05
	EACCES        Status = 0x06
	EEXIST        Status = 0x07
	ENOTDIR       Status = 0x08
	EISDIR        Status = 0x09
	EINVAL        Status = 0x0A
	EMFILE        Status = 0x0B
	ENOSPC        Status = 0x0C
	EROFS         Status = 0x0D
	ENAMETOOLONG  Status = 0x0E
	ENOTEMPTY     Status = 0x0F
	EOF           Status = 0x21
	SessionFull   Status = 0x29 // no free session slot at MOUNT
	InvalidSession Status = 0x2A // sid doesn't name a live session (spec.md §4.6 step 1)
)

// FromHostError maps a host-level error to a wire Status. Unknown errors,
// including anything that doesn't unwrap to a recognized errno, map to EIO
// per spec.md §7 ("unknown errnos map to EIO").
func FromHostError(err error) Status {
	if err == nil {
		return Success
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ENOENT
	}
	if errors.Is(err, fs.ErrExist) {
		return EEXIST
	}
	if errors.Is(err, fs.ErrPermission) {
		return EACCES
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if s, ok := errnoTable[errno]; ok {
			return s
		}
		return EIO
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return FromHostError(linkErr.Err)
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return FromHostError(pathErr.Err)
	}
	return EIO
}

var errnoTable = map[syscall.Errno]Status{
	syscall.EPERM:        EPERM,
	syscall.ENOENT:       ENOENT,
	syscall.EIO:          EIO,
	syscall.EBADF:        EBADF,
	syscall.ENOMEM:       ENOMEM,
	syscall.EACCES:       EACCES,
	syscall.EEXIST:       EEXIST,
	syscall.ENOTDIR:      ENOTDIR,
	syscall.EISDIR:       EISDIR,
	syscall.EINVAL:       EINVAL,
	syscall.EMFILE:       EMFILE,
	syscall.ENFILE:       EMFILE,
	syscall.ENOSPC:       ENOSPC,
	syscall.EROFS:        EROFS,
	syscall.ENAMETOOLONG: ENAMETOOLONG,
	syscall.ENOTEMPTY:    ENOTEMPTY,
}
