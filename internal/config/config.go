// Package config defines the daemon's startup options and binds them to
// command-line flags via pflag, the CLI out-of-scope boundary of
// spec.md §1 ("the CLI that parses startup flags").
package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Options holds every daemon startup option of spec.md §6
// ("Configuration (environment or flags)").
type Options struct {
	Root string // required: directory served as the global sandbox root

	UDPPort int // default 16384
	TCPPort int // 0 disables the stream transport

	SessionTTL   time.Duration // default 600s, 0 disables
	DirHandleTTL time.Duration // default 300s

	MaxSessions      int // default 4096
	MaxSessionsPerIP int // default 4096

	FileSlots int // per-session file-descriptor table size F, default 16
	DirSlots  int // per-session directory-handle table size D, default 8

	StatsInterval time.Duration // default 60s, 0 disables
	LogLevel      string        // logrus level name, default "info"
}

// Default returns the documented defaults (spec.md §4.5, §6).
func Default() Options {
	return Options{
		UDPPort:          16384,
		SessionTTL:       600 * time.Second,
		DirHandleTTL:     300 * time.Second,
		MaxSessions:      4096,
		MaxSessionsPerIP: 4096,
		FileSlots:        16,
		DirSlots:         8,
		StatsInterval:    60 * time.Second,
		LogLevel:         "info",
	}
}

// BindFlags registers every Options field onto fs, following the
// teacher's pflag.*Var binding convention (pflag.CommandLine mirrored
// through cobra.Command.Flags()).
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Root, "root", o.Root, "directory served as the sandbox root (required)")
	fs.IntVar(&o.UDPPort, "udp-port", o.UDPPort, "UDP port to listen on")
	fs.IntVar(&o.TCPPort, "tcp-port", o.TCPPort, "optional TCP port to listen on (0 disables)")
	fs.DurationVar(&o.SessionTTL, "session-ttl", o.SessionTTL, "idle session timeout (0 disables)")
	fs.DurationVar(&o.DirHandleTTL, "dir-handle-ttl", o.DirHandleTTL, "directory-handle cache TTL")
	fs.IntVar(&o.MaxSessions, "max-sessions", o.MaxSessions, "maximum concurrent sessions")
	fs.IntVar(&o.MaxSessionsPerIP, "max-sessions-per-ip", o.MaxSessionsPerIP, "maximum concurrent sessions per client IP")
	fs.IntVar(&o.FileSlots, "file-slots", o.FileSlots, "per-session open-file table size")
	fs.IntVar(&o.DirSlots, "dir-slots", o.DirSlots, "per-session directory-handle table size")
	fs.DurationVar(&o.StatsInterval, "stats-interval", o.StatsInterval, "usage-stats log interval (0 disables)")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "logrus log level (panic, fatal, error, warn, info, debug, trace)")
}
