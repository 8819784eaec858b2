package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FujiNetWIFI/tnfsd/internal/dispatch"
	"github.com/FujiNetWIFI/tnfsd/internal/handlers"
	"github.com/FujiNetWIFI/tnfsd/internal/hostio"
	"github.com/FujiNetWIFI/tnfsd/internal/pathsandbox"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

func TestUDPListenerRoundTripsMount(t *testing.T) {
	sb, err := pathsandbox.New(t.TempDir())
	require.NoError(t, err)
	ctx := handlers.NewContext(sb, hostio.New())
	mgr := session.NewManager(session.DefaultOptions(), nil)
	d := dispatch.New(ctx, mgr)

	l, err := NewUDPListener("127.0.0.1:0", d)
	require.NoError(t, err)
	defer l.Close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Serve(runCtx)

	conn, err := net.Dial("udp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	msg := []byte{0, 0, 1, 0x00, 0x02, 0x01, '/', 0, 0, 0}
	_, err = conn.Write(msg)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, wire.MaxMessage)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	h, rest, err := wire.DecodeHeader(buf[:n])
	require.NoError(t, err)
	require.Equal(t, uint8(1), h.Seq)
	require.Equal(t, byte(0), rest[0])
}
