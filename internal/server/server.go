// Package server wires the transport, dispatch, and session packages
// together into a runnable daemon, coordinating their goroutines with
// golang.org/x/sync/errgroup the way the teacher's multi-backend
// operations fan out concurrent work and propagate the first error
// (backend/raid3/raid3.go's errgroup.WithContext usage).
package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FujiNetWIFI/tnfsd/internal/config"
	"github.com/FujiNetWIFI/tnfsd/internal/dispatch"
	"github.com/FujiNetWIFI/tnfsd/internal/handlers"
	"github.com/FujiNetWIFI/tnfsd/internal/handles"
	"github.com/FujiNetWIFI/tnfsd/internal/hostio"
	"github.com/FujiNetWIFI/tnfsd/internal/pathsandbox"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
	"github.com/FujiNetWIFI/tnfsd/internal/tnfslog"
	"github.com/FujiNetWIFI/tnfsd/internal/transport"
)

// Server owns every long-lived daemon component: the sandbox, session
// manager, dispatcher, listeners, and the background idle-timeout sweep.
type Server struct {
	opts config.Options

	sandbox *pathsandbox.Sandbox
	manager *session.Manager
	disp    *dispatch.Dispatcher

	udp *transport.UDPListener
	tcp *transport.TCPListener
}

// New constructs a Server bound to opts. Root is canonicalized once here
// (spec.md §3 "the global root path, canonicalized once at startup").
func New(opts config.Options) (*Server, error) {
	sandbox, err := pathsandbox.New(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("server: resolve root %q: %w", opts.Root, err)
	}

	fs := hostio.New()
	hctx := handlers.NewContext(sandbox, fs)

	sessOpts := session.Options{
		FileSlots:        opts.FileSlots,
		DirSlots:         opts.DirSlots,
		DirHandleTTL:     opts.DirHandleTTL,
		SessionTTL:       opts.SessionTTL,
		MaxSessions:      opts.MaxSessions,
		MaxSessionsPerIP: opts.MaxSessionsPerIP,
	}
	manager := session.NewManager(sessOpts, func(h *handles.FileHandle) {
		if f, ok := h.FD.(*hostio.File); ok {
			f.Close()
		}
	})

	disp := dispatch.New(hctx, manager)

	udpAddr := net.JoinHostPort("", strconv.Itoa(opts.UDPPort))
	udp, err := transport.NewUDPListener(udpAddr, disp)
	if err != nil {
		return nil, fmt.Errorf("server: bind UDP %s: %w", udpAddr, err)
	}

	var tcp *transport.TCPListener
	if opts.TCPPort != 0 {
		tcpAddr := net.JoinHostPort("", strconv.Itoa(opts.TCPPort))
		tcp, err = transport.NewTCPListener(tcpAddr, disp)
		if err != nil {
			udp.Close()
			return nil, fmt.Errorf("server: bind TCP %s: %w", tcpAddr, err)
		}
	}

	return &Server{
		opts:    opts,
		sandbox: sandbox,
		manager: manager,
		disp:    disp,
		udp:     udp,
		tcp:     tcp,
	}, nil
}

// Run serves until ctx is cancelled, then tears every session down
// (spec.md §4.5 "destroyed by ... server shutdown").
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.udp.Serve(gCtx)
	})
	if s.tcp != nil {
		g.Go(func() error {
			return s.tcp.Serve(gCtx)
		})
	}
	if s.opts.StatsInterval > 0 {
		g.Go(func() error {
			s.statsLoop(gCtx)
			return nil
		})
	}

	err := g.Wait()
	s.manager.Shutdown()
	return err
}

// statsLoop logs the live session count on the configured cadence
// (spec.md §6 "stats interval"). Idle-session eviction itself runs via
// go-cache's own janitor goroutine (internal/session.Manager), not here.
func (s *Server) statsLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tnfslog.Logf(tnfslog.Plain("server"), "sessions=%d root=%s", s.manager.Count(), s.sandbox.Root())
		}
	}
}
