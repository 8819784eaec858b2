package direngine

import "github.com/FujiNetWIFI/tnfsd/internal/pattern"

// EntryList is a preloaded, ordered set of directory entries backed by a
// contiguous slice. The cursor is a plain index, giving tell/seek O(1)
// cost instead of the teacher protocol's linked-list O(n) walk (spec.md §9
// design note, mandated redesign).
type EntryList struct {
	entries []Entry
	cursor  int
}

// NewEntryList wraps entries in a fresh EntryList with the cursor at head.
func NewEntryList(entries []Entry) *EntryList {
	return &EntryList{entries: entries}
}

// Len returns the total entry count.
func (l *EntryList) Len() int { return len(l.entries) }

// Entries returns the immutable backing slice (spec.md §3: "Preloaded
// entry lists are immutable after load").
func (l *EntryList) Entries() []Entry { return l.entries }

// Tell returns the current cursor position (spec.md §4.4.4).
func (l *EntryList) Tell() int { return l.cursor }

// Seek moves the cursor to pos, clamped to [0, Len()].
func (l *EntryList) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.entries) {
		pos = len(l.entries)
	}
	l.cursor = pos
}

// AtEnd reports whether the cursor has consumed every entry.
func (l *EntryList) AtEnd() bool { return l.cursor >= len(l.entries) }

// Next returns the entry at the cursor and advances it by one, or ok=false
// at end of list (spec.md §4.4.4, single-entry READDIR).
func (l *EntryList) Next() (Entry, bool) {
	if l.AtEnd() {
		return Entry{}, false
	}
	e := l.entries[l.cursor]
	l.cursor++
	return e, true
}

// Batch returns up to n entries starting at the cursor (n<=0 means
// "as many as the caller's own framing limit allows" — the caller, not
// EntryList, enforces the datagram size cap per spec.md §4.4.4), the list
// index the batch started at, and whether the cursor is now at EOF. The
// cursor advances past the returned entries.
func (l *EntryList) Batch(n int) (batch []Entry, startIndex int, eof bool) {
	startIndex = l.cursor
	if l.AtEnd() {
		return nil, startIndex, true
	}
	remaining := len(l.entries) - l.cursor
	if n <= 0 || n > remaining {
		n = remaining
	}
	batch = l.entries[l.cursor : l.cursor+n]
	l.cursor += n
	return batch, startIndex, l.AtEnd()
}

// Load implements spec.md §4.4.1: list path's children via lister, filter,
// split into directory/file sub-lists, sort each (unless DirsortNone),
// concatenate directories-first (unless DiroptNoFoldersFirst), honoring
// maxResults.
func Load(lister Lister, hostPath string, dirOpts, sortOpts byte, maxResults int, pat string) (*EntryList, error) {
	stats, err := lister.ListDir(hostPath)
	if err != nil {
		return nil, err
	}

	var dirs, files []Entry
	var count int
	for _, si := range stats {
		if !patternOK(si, dirOpts, pat) {
			continue
		}
		if dirOpts&DiroptNoSkipHidden == 0 && si.IsHidden {
			continue
		}
		if dirOpts&DiroptNoSkipSpecial == 0 && si.IsSpecial {
			continue
		}
		if dirOpts&DiroptNoFolders != 0 && si.IsDir {
			continue
		}

		e := entryFromStat(si)
		if si.IsDir && dirOpts&DiroptNoFoldersFirst == 0 {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
		count++
		if maxResults > 0 && count >= maxResults {
			break
		}
	}

	if sortOpts&DirsortNone == 0 {
		sortEntries(dirs, sortOpts)
		sortEntries(files, sortOpts)
	}

	combined := make([]Entry, 0, len(dirs)+len(files))
	combined = append(combined, dirs...)
	combined = append(combined, files...)
	return NewEntryList(combined), nil
}

func patternOK(si StatInfo, dirOpts byte, pat string) bool {
	if pat == "" {
		return true
	}
	if si.IsDir && dirOpts&DiroptDirPattern == 0 {
		return true
	}
	return pattern.Match(pat, si.Name)
}
