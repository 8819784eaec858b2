// Package direngine implements directory loading, filtering, sorting,
// traversal and the streaming/shuffle extended iterator (spec.md §4.4).
package direngine

import "time"

// Entry flag bits (spec.md §3 "Directory entry"). Numeric values are this
// daemon's own choice — spec.md only names the bit set, not its encoding.
const (
	FlagDirectory byte = 1 << 0
	FlagHidden    byte = 1 << 1
	FlagSpecial   byte = 1 << 2
)

// Entry is one preloaded directory entry (spec.md §3).
type Entry struct {
	Name  string // path component, up to 256 bytes, NUL-terminated on the wire
	Flags byte
	Size  uint32
	MTime uint32 // epoch seconds
	CTime uint32 // epoch seconds
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Flags&FlagDirectory != 0 }

// StatInfo is the subset of host stat results the loader needs. hostio
// supplies these so direngine never calls os/syscall directly (spec.md §1:
// concrete file I/O is an external collaborator).
type StatInfo struct {
	Name      string
	IsDir     bool
	IsHidden  bool
	IsSpecial bool
	Size      int64
	ModTime   time.Time
	ChangeTime time.Time
}

func entryFromStat(si StatInfo) Entry {
	var flags byte
	if si.IsDir {
		flags |= FlagDirectory
	}
	if si.IsHidden {
		flags |= FlagHidden
	}
	if si.IsSpecial {
		flags |= FlagSpecial
	}
	return Entry{
		Name:  si.Name,
		Flags: flags,
		Size:  uint32(si.Size),
		MTime: uint32(si.ModTime.Unix()),
		CTime: uint32(si.ChangeTime.Unix()),
	}
}
