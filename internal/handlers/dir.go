package handlers

import (
	"github.com/FujiNetWIFI/tnfsd/internal/direngine"
	"github.com/FujiNetWIFI/tnfsd/internal/errtab"
	"github.com/FujiNetWIFI/tnfsd/internal/handles"
	"github.com/FujiNetWIFI/tnfsd/internal/pathsandbox"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
)

// Opendir handles the plain OPENDIR form (spec.md §4.4.2, scenario S6):
// path(cstr), optionally carrying a wildcard segment and a trailing
// ";flags" suffix. It always allocates a Streaming handle.
func (c *Context) Opendir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	raw, _, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}

	clientPath, suffix := pathsandbox.StripOptionsSuffix(raw)
	dir, mask := pathsandbox.ExtractWildcard(clientPath)

	hostDir := c.Sandbox.ResolveForOpendir(s.Root, dir)
	stats, err := c.FS.ListDir(hostDir)
	if err != nil {
		return errtab.FromHostError(err), nil
	}

	names := make([]string, len(stats))
	isDir := make([]bool, len(stats))
	for i, st := range stats {
		names[i] = st.Name
		isDir[i] = st.IsDir
	}
	it := direngine.NewExtIterator(names, isDir, mask, suffix)

	idx, h, _ := s.Dirs.Allocate(c.Now(), false, "", 0, 0, "")
	if h == nil {
		return errtab.EMFILE, nil
	}
	h.StartStreaming(it)

	return errtab.Success, []byte{byte(idx)}
}

// Readdir handles READDIR: handle(1B). Returns a single transformed name
// (cstr), or status EOF with an empty payload once exhausted (scenario
// S6: "d, c, b, a, then EOF").
func (c *Context) Readdir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, _, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	h, err := s.Dirs.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}

	switch h.Kind {
	case handles.KindStreaming:
		name, ok := h.Stream.Next()
		if !ok {
			return errtab.EOF, nil
		}
		return errtab.Success, appendCString(nil, name)
	case handles.KindPreloaded:
		e, ok := h.Entries.Next()
		if !ok {
			return errtab.EOF, nil
		}
		return errtab.Success, appendCString(nil, e.Name)
	default:
		return errtab.EBADF, nil
	}
}

// Closedir handles CLOSEDIR: handle(1B).
func (c *Context) Closedir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, _, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	if err := s.Dirs.Release(int(idx), c.Now()); err != nil {
		return errtab.EBADF, nil
	}
	return errtab.Success, nil
}

// Mkdir handles MKDIR: path(cstr).
func (c *Context) Mkdir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, _, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	host, err := c.Sandbox.Resolve(s.Root, path)
	if err != nil {
		return errtab.EACCES, nil
	}
	if err := c.FS.Mkdir(host); err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, nil
}

// Rmdir handles RMDIR: path(cstr).
func (c *Context) Rmdir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, _, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	host, err := c.Sandbox.Resolve(s.Root, path)
	if err != nil {
		return errtab.EACCES, nil
	}
	if err := c.FS.Rmdir(host); err != nil {
		return errtab.FromHostError(err), nil
	}
	return errtab.Success, nil
}

// Telldir handles TELLDIR: handle(1B). Reply: position(4B LE).
func (c *Context) Telldir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, _, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	h, err := s.Dirs.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}
	var pos int
	switch h.Kind {
	case handles.KindStreaming:
		pos = h.Stream.Tell()
	case handles.KindPreloaded:
		pos = h.Entries.Tell()
	default:
		return errtab.EBADF, nil
	}
	return errtab.Success, appendU32(nil, uint32(pos))
}

// Seekdir handles SEEKDIR: handle(1B) ∥ position(4B LE).
func (c *Context) Seekdir(s *session.Session, payload []byte) (errtab.Status, []byte) {
	idx, rest, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	pos, _, err := readU32(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	h, err := s.Dirs.Get(int(idx))
	if err != nil {
		return errtab.EBADF, nil
	}
	switch h.Kind {
	case handles.KindStreaming:
		h.Stream.Seek(int(pos))
	case handles.KindPreloaded:
		h.Entries.Seek(int(pos))
	default:
		return errtab.EBADF, nil
	}
	return errtab.Success, nil
}

// Opendirx handles OPENDIRX (spec.md §4.4.4, scenarios S4/S5): path(cstr)
// ∥ dirOpts(1B) ∥ sortOpts(1B) ∥ maxResults(2B LE) ∥ pattern(cstr). It
// always allocates a Preloaded handle. The TRAVERSE bit both switches the
// loader to the recursive walk of §4.4.3 and requests slot reuse per the
// §4.4.4 allocation policy.
func (c *Context) Opendirx(s *session.Session, payload []byte) (errtab.Status, []byte) {
	path, rest, err := readCString(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	dirOpts, rest, err := readByte(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	sortOpts, rest, err := readByte(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	maxResults, rest, err := readU16(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}
	pattern, _, err := readCString(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}

	hostPath := c.Sandbox.ResolveForOpendir(s.Root, path)
	traverse := dirOpts&direngine.DiroptTraverse != 0

	idx, h, reused := s.Dirs.Allocate(c.Now(), traverse, hostPath, dirOpts, sortOpts, pattern)
	if h == nil {
		return errtab.EMFILE, nil
	}
	if reused {
		reply := []byte{byte(idx)}
		return errtab.Success, appendU32(reply, uint32(h.Entries.Len()))
	}

	var entries *direngine.EntryList
	if traverse {
		entries, err = direngine.Traverse(c.FS, hostPath, "", dirOpts, sortOpts, int(maxResults), pattern)
	} else {
		entries, err = direngine.Load(c.FS, hostPath, dirOpts, sortOpts, int(maxResults), pattern)
	}
	if err != nil {
		return errtab.FromHostError(err), nil
	}
	h.FinishLoad(hostPath, dirOpts, sortOpts, pattern, entries, c.Now())

	reply := []byte{byte(idx)}
	return errtab.Success, appendU32(reply, uint32(entries.Len()))
}

// readdirxEnvelopeOverhead is the fixed portion of a READDIRX reply ahead
// of the repeated entry records: count(1B) ∥ status(1B) ∥ startIndex(2B).
const readdirxEnvelopeOverhead = 4

// readdirxEntryFixedSize is the fixed portion of one encoded entry ahead
// of its NUL-terminated name: flags(1B) ∥ size(4B) ∥ mtime(4B) ∥ ctime(4B).
const readdirxEntryFixedSize = 13

// Readdirx handles READDIRX (spec.md §4.4.4): handle(1B) ∥
// requestedCount(1B, 0 = as many as fit). The reply never splits an entry
// across the datagram boundary (spec.md §8 property 7).
func (c *Context) Readdirx(s *session.Session, payload []byte, maxReplyPayload int) (errtab.Status, []byte) {
	idx, rest, err := readByte(payload)
	if err != nil {
		return errtab.EINVAL, nil
	}
	requested, _, err := readByte(rest)
	if err != nil {
		return errtab.EINVAL, nil
	}

	h, err := s.Dirs.Get(int(idx))
	if err != nil || h.Kind != handles.KindPreloaded {
		return errtab.EBADF, nil
	}

	n := int(requested)
	if n <= 0 {
		n = h.Entries.Len()
	}
	startIndex := h.Entries.Tell()
	batch, _, eof := h.Entries.Batch(n)

	budget := maxReplyPayload - readdirxEnvelopeOverhead
	kept := 0
	used := 0
	for _, e := range batch {
		cost := readdirxEntryFixedSize + len(e.Name) + 1
		if used+cost > budget {
			break
		}
		used += cost
		kept++
	}
	if kept < len(batch) {
		h.Entries.Seek(startIndex + kept)
		eof = false
	}
	batch = batch[:kept]

	var statusBits byte
	if eof {
		statusBits = 0x01
	}

	reply := []byte{byte(len(batch)), statusBits}
	reply = appendU16(reply, uint16(startIndex))
	for _, e := range batch {
		reply = append(reply, e.Flags)
		reply = appendU32(reply, e.Size)
		reply = appendU32(reply, e.MTime)
		reply = appendU32(reply, e.CTime)
		reply = appendCString(reply, e.Name)
	}
	return errtab.Success, reply
}
