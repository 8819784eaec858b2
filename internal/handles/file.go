// Package handles implements the per-session file-descriptor and
// directory-handle tables of spec.md §3 / §4.5, including the opendirx
// slot-allocation and garbage-collection policy of §4.4.4.
package handles

import "errors"

// ErrFull is returned when a table has no free slot.
var ErrFull = errors.New("handles: table full")

// ErrBadHandle is returned for an out-of-range or unused handle index.
// spec.md §9 mandates a strict `index < size` bound check (the original
// daemon inconsistently used `>` in places).
var ErrBadHandle = errors.New("handles: invalid handle")

// FileHandle is one open-file slot (spec.md §3 "File handle").
type FileHandle struct {
	FD    any // host-specific file descriptor/reference, opaque to this package
	Flags int
	inUse bool
}

// FileTable is the fixed-size, per-session file-descriptor table (size F,
// default 16).
type FileTable struct {
	slots []FileHandle
}

// NewFileTable allocates a table of size F.
func NewFileTable(size int) *FileTable {
	return &FileTable{slots: make([]FileHandle, size)}
}

// Size returns F.
func (t *FileTable) Size() int { return len(t.slots) }

// Open finds a free slot, stores fd/flags in it, and returns its index.
func (t *FileTable) Open(fd any, flags int) (int, error) {
	for i := range t.slots {
		if !t.slots[i].inUse {
			t.slots[i] = FileHandle{FD: fd, Flags: flags, inUse: true}
			return i, nil
		}
	}
	return 0, ErrFull
}

// Get returns the handle at idx. idx must satisfy 0 <= idx < Size() and be
// in use, or ErrBadHandle is returned.
func (t *FileTable) Get(idx int) (*FileHandle, error) {
	if idx < 0 || idx >= len(t.slots) || !t.slots[idx].inUse {
		return nil, ErrBadHandle
	}
	return &t.slots[idx], nil
}

// Close releases the slot at idx.
func (t *FileTable) Close(idx int) error {
	if idx < 0 || idx >= len(t.slots) || !t.slots[idx].inUse {
		return ErrBadHandle
	}
	t.slots[idx] = FileHandle{}
	return nil
}

// CloseAll releases every open slot, used on session teardown.
func (t *FileTable) CloseAll(cleanup func(*FileHandle)) {
	for i := range t.slots {
		if t.slots[i].inUse {
			if cleanup != nil {
				cleanup(&t.slots[i])
			}
			t.slots[i] = FileHandle{}
		}
	}
}

// Count returns the number of currently open slots (spec.md §8 property 3).
func (t *FileTable) Count() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].inUse {
			n++
		}
	}
	return n
}
