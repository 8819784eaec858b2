// Package hostio is the concrete file-I/O collaborator spec.md §1 and §6
// describe as out of scope for the core ("the concrete file I/O calls
// open/read/write/stat/unlink/rename/chmod/mkdir/rmdir"), provided here so
// the daemon can actually run against a real directory tree. It is a thin
// os-package wrapper in the style of the teacher's backend/local/local.go:
// every failure is wrapped with fmt.Errorf's %w, so the original error stays
// reachable for errtab's errors.Is/errors.As classification.
package hostio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/FujiNetWIFI/tnfsd/internal/direngine"
)

// FS is the host filesystem collaborator. A single FS instance is shared
// by the whole daemon and operates purely on absolute, already-sandboxed
// host paths handed to it by internal/pathsandbox.
type FS struct{}

// New returns an FS bound to the local host filesystem.
func New() *FS { return &FS{} }

// ListDir implements direngine.Lister.
func (fs *FS) ListDir(hostPath string) ([]direngine.StatInfo, error) {
	entries, err := os.ReadDir(hostPath)
	if err != nil {
		return nil, fmt.Errorf("readdir %q: %w", hostPath, err)
	}
	out := make([]direngine.StatInfo, 0, len(entries))
	for _, de := range entries {
		info, err := de.Info()
		if err != nil {
			// Entry may have been removed concurrently; skip it rather
			// than fail the whole listing, matching the teacher's
			// "skip entry removed by a concurrent goroutine" handling.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %q: %w", filepath.Join(hostPath, de.Name()), err)
		}
		out = append(out, statInfoFrom(de.Name(), info))
	}
	return out, nil
}

// Stat returns a single entry's StatInfo.
func (fs *FS) Stat(hostPath string) (direngine.StatInfo, error) {
	info, err := os.Lstat(hostPath)
	if err != nil {
		return direngine.StatInfo{}, fmt.Errorf("stat %q: %w", hostPath, err)
	}
	return statInfoFrom(filepath.Base(hostPath), info), nil
}

// Mkdir creates a directory (spec.md §4.7 MKDIR).
func (fs *FS) Mkdir(hostPath string) error {
	if err := os.Mkdir(hostPath, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", hostPath, err)
	}
	return nil
}

// Rmdir removes an empty directory (spec.md §4.7 RMDIR).
func (fs *FS) Rmdir(hostPath string) error {
	if err := os.Remove(hostPath); err != nil {
		return fmt.Errorf("rmdir %q: %w", hostPath, err)
	}
	return nil
}

// Unlink removes a file (spec.md §4.7 UNLINK).
func (fs *FS) Unlink(hostPath string) error {
	if err := os.Remove(hostPath); err != nil {
		return fmt.Errorf("unlink %q: %w", hostPath, err)
	}
	return nil
}

// Rename moves a file or directory (spec.md §4.7 RENAME).
func (fs *FS) Rename(oldHostPath, newHostPath string) error {
	if err := os.Rename(oldHostPath, newHostPath); err != nil {
		return fmt.Errorf("rename %q -> %q: %w", oldHostPath, newHostPath, err)
	}
	return nil
}

// Chmod changes a file's permission bits (spec.md §4.7 CHMOD).
func (fs *FS) Chmod(hostPath string, mode os.FileMode) error {
	if err := os.Chmod(hostPath, mode); err != nil {
		return fmt.Errorf("chmod %q: %w", hostPath, err)
	}
	return nil
}

// File is an open host file handle backing a session's file-descriptor
// table slot.
type File struct {
	f *os.File
}

// Open opens hostPath with the given os.O_* flags (spec.md §4.7 OPEN).
func (fs *FS) Open(hostPath string, flags int, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(hostPath, flags, perm)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", hostPath, err)
	}
	return &File{f: f}, nil
}

// Read reads up to len(buf) bytes at off (spec.md §4.7 READ, capped by the
// handler at 512 bytes per spec.md §5).
func (f *File) Read(buf []byte, off int64) (int, error) {
	n, err := f.f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read: %w", err)
	}
	return n, nil
}

// Write writes buf at off (spec.md §4.7 WRITE).
func (f *File) Write(buf []byte, off int64) (int, error) {
	n, err := f.f.WriteAt(buf, off)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// Close closes the host file descriptor.
func (f *File) Close() error {
	if err := f.f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Size returns the current file size (spec.md §4.7 SEEK end-relative
// offsets, STAT).
func (f *File) Size() (int64, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	return info.Size(), nil
}

func statInfoFrom(name string, info os.FileInfo) direngine.StatInfo {
	mtime := info.ModTime()
	return direngine.StatInfo{
		Name:       name,
		IsDir:      info.IsDir(),
		IsHidden:   isHiddenName(name),
		IsSpecial:  isSpecialMode(info.Mode()),
		Size:       info.Size(),
		ModTime:    mtime,
		ChangeTime: changeTime(info, mtime),
	}
}

func isHiddenName(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func isSpecialMode(mode os.FileMode) bool {
	return mode&(os.ModeDevice|os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket|os.ModeSymlink) != 0
}

// changeTime falls back to mtime on platforms/filesystems with no
// inode-change-time in os.FileInfo; stat_unix.go-style builds (not
// included here, per spec.md §1 "platform-specific ... canonicalization"
// being out of scope) would read Sys().(*syscall.Stat_t).Ctim instead.
func changeTime(info os.FileInfo, mtime time.Time) time.Time {
	return mtime
}
