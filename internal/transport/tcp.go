package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/FujiNetWIFI/tnfsd/internal/dispatch"
	"github.com/FujiNetWIFI/tnfsd/internal/tnfslog"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

// Stream keepalive tuning (spec.md §5: "idle 30s, probe 1s, max probes
// 60"). A closed connection is detected by the read loop exiting; the
// keepalive settings only affect how quickly a half-open peer is noticed.
const (
	keepaliveIdle     = 30 * time.Second
	keepaliveInterval = 1 * time.Second
	keepaliveCount    = 60
)

// TCPListener serves the optional stream transport. Each message is
// framed with a 2-byte little-endian length prefix ahead of the usual
// header+payload bytes — the stream has no datagram boundary to rely on,
// so this daemon adds its own length delimiter (spec.md §6 names only
// the datagram wire format; stream framing is this daemon's own choice).
type TCPListener struct {
	ln net.Listener
	d  *dispatch.Dispatcher
}

// NewTCPListener binds addr and returns a listener ready to Serve.
func NewTCPListener(addr string, d *dispatch.Dispatcher) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln, d: d}, nil
}

// Addr returns the bound local address.
func (l *TCPListener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting new connections.
func (l *TCPListener) Close() error { return l.ln.Close() }

// Serve accepts connections until ctx is cancelled or the listener
// errors (spec.md §7).
func (l *TCPListener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go l.serveConn(ctx, conn)
	}
}

func (l *TCPListener) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAliveConfig(net.KeepAliveConfig{
			Enable:   true,
			Idle:     keepaliveIdle,
			Interval: keepaliveInterval,
			Count:    keepaliveCount,
		})
	}

	peer := dispatch.Peer{IP: connIP(conn), Key: conn.RemoteAddr().String()}
	var lenBuf [2]byte
	msgBuf := make([]byte, wire.MaxMessage)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		n := int(binary.LittleEndian.Uint16(lenBuf[:]))
		if n > wire.MaxMessage {
			tnfslog.Errorf(tnfslog.Plain("transport/tcp"), "oversized frame %d from %s", n, peer.Key)
			return
		}
		if _, err := io.ReadFull(conn, msgBuf[:n]); err != nil {
			return
		}

		reply := l.d.Handle(peer, msgBuf[:n])
		if reply == nil {
			continue
		}
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(reply)))
		if _, err := conn.Write(lenBuf[:]); err != nil {
			return
		}
		if _, err := conn.Write(reply); err != nil {
			return
		}
	}
}

func connIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
