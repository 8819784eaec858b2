// Package dispatch implements the request-routing pipeline of spec.md
// §4.6: decode header, find session, check the retransmission cache,
// invoke the matching handler, cache the reply, and re-encode it onto the
// wire.
package dispatch

import (
	"github.com/FujiNetWIFI/tnfsd/internal/errtab"
	"github.com/FujiNetWIFI/tnfsd/internal/handlers"
	"github.com/FujiNetWIFI/tnfsd/internal/session"
	"github.com/FujiNetWIFI/tnfsd/internal/tnfslog"
	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

// Peer identifies the client that sent a request, opaquely to everything
// below the dispatcher (spec.md §3 "client network identity").
type Peer struct {
	IP  string // used for the per-IP session cap
	Key string // full addr:port or stream connection id, stored on the session
}

// Handler executes one command against an already-resolved session and
// returns a status and reply payload.
type Handler func(ctx *handlers.Context, s *session.Session, payload []byte) (errtab.Status, []byte)

// Dispatcher wires a Context and session Manager to the Handler registry.
type Dispatcher struct {
	Ctx      *handlers.Context
	Sessions *session.Manager

	handlers map[Command]Handler
}

// New builds a Dispatcher with the default handler registry (every
// command of spec.md §4.7 except MOUNT, which the dispatcher special-
// cases because it has no session yet, and UMOUNT, which it special-cases
// because the session is gone once it has run).
func New(ctx *handlers.Context, sessions *session.Manager) *Dispatcher {
	d := &Dispatcher{Ctx: ctx, Sessions: sessions, handlers: make(map[Command]Handler)}
	d.handlers[CmdOpendir] = (*handlers.Context).Opendir
	d.handlers[CmdReaddir] = (*handlers.Context).Readdir
	d.handlers[CmdClosedir] = (*handlers.Context).Closedir
	d.handlers[CmdMkdir] = (*handlers.Context).Mkdir
	d.handlers[CmdRmdir] = (*handlers.Context).Rmdir
	d.handlers[CmdTelldir] = (*handlers.Context).Telldir
	d.handlers[CmdSeekdir] = (*handlers.Context).Seekdir
	d.handlers[CmdOpendirx] = (*handlers.Context).Opendirx
	d.handlers[CmdReaddirx] = func(ctx *handlers.Context, s *session.Session, payload []byte) (errtab.Status, []byte) {
		return ctx.Readdirx(s, payload, wire.MaxReplyPayload)
	}
	d.handlers[CmdOpen] = (*handlers.Context).Open
	d.handlers[CmdRead] = (*handlers.Context).Read
	d.handlers[CmdWrite] = (*handlers.Context).Write
	d.handlers[CmdClose] = (*handlers.Context).Close
	d.handlers[CmdStat] = (*handlers.Context).Stat
	d.handlers[CmdSeek] = (*handlers.Context).Seek
	d.handlers[CmdUnlink] = (*handlers.Context).Unlink
	d.handlers[CmdChmod] = (*handlers.Context).Chmod
	d.handlers[CmdRename] = (*handlers.Context).Rename
	d.handlers[CmdVersion] = (*handlers.Context).Version
	d.handlers[CmdSize] = (*handlers.Context).Size
	d.handlers[CmdFree] = (*handlers.Context).Free
	return d
}

// Handle runs the full pipeline of spec.md §4.6 over one decoded request
// and returns the bytes to send back to peer.
func (d *Dispatcher) Handle(peer Peer, msg []byte) []byte {
	h, payload, err := wire.DecodeHeader(msg)
	if err != nil {
		return nil
	}

	if Command(h.Command) == CmdMount {
		status, reply, _ := d.Ctx.Mount(d.Sessions, peer.IP, peer.Key, payload)
		out, encErr := wire.EncodeReply(h, byte(status), reply)
		if encErr != nil {
			tnfslog.Errorf(tnfslog.Plain("dispatch"), "encode mount reply: %v", encErr)
			return nil
		}
		return out
	}

	s, ok := d.Sessions.Find(h.SessionID)
	if !ok {
		out, _ := wire.EncodeReply(h, byte(errtab.InvalidSession), nil)
		return out
	}

	// spec.md §5 requires at most one in-flight request per session id:
	// a goroutine-per-TCP-connection transport, the UDP loop, and the
	// idle-timeout janitor can all reach the same *Session concurrently
	// otherwise. Held for the whole request, including the UMOUNT branch
	// below, so teardown can never run alongside a handler still using
	// the session's handle tables.
	s.Lock()
	defer s.Unlock()

	if cached, ok := s.CachedReply(h.Seq, h.Command); ok {
		return cached
	}

	// UMOUNT tears the session down immediately: caching a reply or
	// touching last-activity on it afterwards would resurrect the entry
	// in the session table, so it is encoded and returned directly.
	if Command(h.Command) == CmdUmount {
		status, reply := d.Ctx.Umount(d.Sessions, s)
		out, _ := wire.EncodeReply(h, byte(status), reply)
		return out
	}

	handler, ok := d.handlers[Command(h.Command)]
	if !ok {
		out, _ := wire.EncodeReply(h, byte(errtab.EINVAL), nil)
		return out
	}

	status, reply := handler(d.Ctx, s, payload)
	out, encErr := wire.EncodeReply(h, byte(status), reply)
	if encErr != nil {
		tnfslog.Errorf(tnfslog.Plain("dispatch"), "encode reply for cmd %d: %v", h.Command, encErr)
		out, _ = wire.EncodeReply(h, byte(errtab.EINVAL), nil)
	}

	s.CacheReply(h.Seq, h.Command, out)
	d.Sessions.Touch(s)
	return out
}
