// Package transport implements the two listener shapes of spec.md §5/§6:
// a connectionless UDP listener and a TCP stream listener with keepalive.
// The UDP loop handles one datagram to completion before reading the
// next; the TCP listener serves each connection in its own goroutine, one
// framed message at a time per connection, so requests from different
// connections can run concurrently (per-session serialization comes from
// the session lock taken in dispatch.Dispatcher.Handle).
package transport

import (
	"context"
	"net"

	"github.com/FujiNetWIFI/tnfsd/internal/dispatch"
	"github.com/FujiNetWIFI/tnfsd/internal/tnfslog"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

// UDPListener serves the datagram transport (spec.md §6, default port
// 16384).
type UDPListener struct {
	conn *net.UDPConn
	d    *dispatch.Dispatcher
}

// NewUDPListener binds addr (":16384"-style) and returns a listener ready
// to Serve.
func NewUDPListener(addr string, d *dispatch.Dispatcher) (*UDPListener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &UDPListener{conn: conn, d: d}, nil
}

// Addr returns the bound local address.
func (l *UDPListener) Addr() net.Addr { return l.conn.LocalAddr() }

// Close stops the listener.
func (l *UDPListener) Close() error { return l.conn.Close() }

// Serve runs the receive loop until ctx is cancelled or the socket errors
// (spec.md §7: "only unrecoverable socket errors on the listener itself
// terminate the server; any per-request error is reported and the loop
// continues").
func (l *UDPListener) Serve(ctx context.Context) error {
	buf := make([]byte, wire.MaxMessage)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, peerAddr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		peer := dispatch.Peer{IP: peerAddr.IP.String(), Key: peerAddr.String()}
		reply := l.d.Handle(peer, buf[:n])
		if reply == nil {
			continue
		}
		if _, err := l.conn.WriteToUDP(reply, peerAddr); err != nil {
			tnfslog.Errorf(tnfslog.Plain("transport/udp"), "write to %s: %v", peerAddr, err)
		}
	}
}
