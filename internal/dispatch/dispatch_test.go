package dispatch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FujiNetWIFI/tnfsd/internal/errtab"
	"github.com/FujiNetWIFI/tnfsd/internal/handlers"
	"github.com/FujiNetWIFI/tnfsd/internal/hostio"
	"github.com/FujiNetWIFI/tnfsd/internal/pathsandbox"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	root := t.TempDir()
	sb, err := pathsandbox.New(root)
	require.NoError(t, err)
	ctx := handlers.NewContext(sb, hostio.New())
	mgr := session.NewManager(session.DefaultOptions(), nil)
	return New(ctx, mgr), root
}

func buildMount(seq uint8) []byte {
	var payload []byte
	payload = append(payload, 0x02, 0x01) // version LE
	payload = append(payload, '/', 0, 0, 0)
	return append([]byte{0, 0, seq, byte(CmdMount)}, payload...)
}

func TestDispatchMountThenOpendirThenReaddir(t *testing.T) {
	d, root := newTestDispatcher(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("x"), 0o644))

	peer := Peer{IP: "1.2.3.4", Key: "1.2.3.4:9000"}

	mountReply := d.Handle(peer, buildMount(1))
	require.NotNil(t, mountReply)
	h, rest, err := wire.DecodeHeader(mountReply)
	require.NoError(t, err)
	require.Equal(t, byte(0), rest[0])
	sid := wire.Uint16(rest[1:3])
	require.NotZero(t, sid)
	require.Equal(t, uint8(1), h.Seq)

	opendirPayload := []byte{'/', 0}
	opendirMsg := append(wireHeader(sid, 2, byte(CmdOpendir)), opendirPayload...)
	opendirReply := d.Handle(peer, opendirMsg)
	_, rest, err = wire.DecodeHeader(opendirReply)
	require.NoError(t, err)
	require.Equal(t, byte(errtab.Success), rest[0])
	handleIdx := rest[1]

	readdirMsg := append(wireHeader(sid, 3, byte(CmdReaddir)), handleIdx)
	readdirReply := d.Handle(peer, readdirMsg)
	_, rest, err = wire.DecodeHeader(readdirReply)
	require.NoError(t, err)
	require.Equal(t, byte(errtab.Success), rest[0])
}

func TestDispatchRetransmissionReturnsCachedBytes(t *testing.T) {
	d, _ := newTestDispatcher(t)
	peer := Peer{IP: "1.2.3.4", Key: "1.2.3.4:9000"}

	mountReply := d.Handle(peer, buildMount(1))
	_, rest, err := wire.DecodeHeader(mountReply)
	require.NoError(t, err)
	sid := wire.Uint16(rest[1:3])

	opendirMsg := append(wireHeader(sid, 2, byte(CmdOpendir)), '/', 0)
	first := d.Handle(peer, opendirMsg)
	second := d.Handle(peer, opendirMsg)
	assert.Equal(t, first, second)
}

func TestDispatchUnknownSessionReturnsInvalidSession(t *testing.T) {
	d, _ := newTestDispatcher(t)
	peer := Peer{IP: "1.2.3.4", Key: "1.2.3.4:9000"}

	msg := append(wireHeader(0xBEEF, 1, byte(CmdOpendir)), '/', 0)
	reply := d.Handle(peer, msg)
	_, rest, err := wire.DecodeHeader(reply)
	require.NoError(t, err)
	assert.Equal(t, byte(errtab.InvalidSession), rest[0])
}

// TestDispatchSerializesConcurrentRequestsForSameSession exercises
// spec.md §5's "at most one in-flight request per session id": many
// goroutines hammering the same session id with distinct opendir/readdir
// pairs must never observe a handle table mutated out from under them
// (the race the -race detector would catch if the per-session lock in
// Dispatcher.Handle were ever removed).
func TestDispatchSerializesConcurrentRequestsForSameSession(t *testing.T) {
	d, root := newTestDispatcher(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))
	peer := Peer{IP: "1.2.3.4", Key: "1.2.3.4:9000"}

	// All 32 goroutines may hold an open directory handle at the same
	// time, so the session needs one directory slot per goroutine.
	opts := session.DefaultOptions()
	opts.DirSlots = 32
	d.Sessions = session.NewManager(opts, nil)

	mountReply := d.Handle(peer, buildMount(1))
	_, rest, err := wire.DecodeHeader(mountReply)
	require.NoError(t, err)
	sid := wire.Uint16(rest[1:3])

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			seq := uint8(n + 2)
			opendirMsg := append(wireHeader(sid, seq, byte(CmdOpendir)), '/', 0)
			reply := d.Handle(peer, opendirMsg)
			_, rest, err := wire.DecodeHeader(reply)
			assert.NoError(t, err)
			assert.Equal(t, byte(errtab.Success), rest[0])

			closedirMsg := append(wireHeader(sid, seq, byte(CmdClosedir)), rest[1])
			d.Handle(peer, closedirMsg)
		}(i)
	}
	wg.Wait()
}

// TestDispatchUmountWaitsForInFlightRequest makes sure UMOUNT cannot tear
// a session's handle tables down while another goroutine is still mid
// handler for that same session (spec.md §5; also covers the deadlock
// regression in Manager.Unmount/OnEvicted's shared-lock handoff).
func TestDispatchUmountWaitsForInFlightRequest(t *testing.T) {
	d, root := newTestDispatcher(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))
	peer := Peer{IP: "1.2.3.4", Key: "1.2.3.4:9000"}

	mountReply := d.Handle(peer, buildMount(1))
	_, rest, err := wire.DecodeHeader(mountReply)
	require.NoError(t, err)
	sid := wire.Uint16(rest[1:3])

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		opendirMsg := append(wireHeader(sid, 2, byte(CmdOpendir)), '/', 0)
		d.Handle(peer, opendirMsg)
	}()
	go func() {
		defer wg.Done()
		umountMsg := wireHeader(sid, 3, byte(CmdUmount))
		d.Handle(peer, umountMsg)
	}()
	wg.Wait()

	_, ok := d.Sessions.Find(sid)
	assert.False(t, ok)
}

func wireHeader(sid uint16, seq uint8, cmd byte) []byte {
	return []byte{byte(sid), byte(sid >> 8), seq, cmd}
}
