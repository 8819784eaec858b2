// Package wire implements the TNFS datagram/stream codec: the 4-byte
// header, little-endian integer helpers, and the fixed-size message
// envelope shared by every request and reply.
package wire

import (
	"errors"
	"fmt"
)

// Wire-level size limits (spec.md §4.1 / §6).
const (
	MaxMessage    = 532 // largest request or reply, header included
	HeaderSize    = 4   // sid(2) + seq(1) + cmd(1)
	StatusSize    = 1   // reply-only status byte
	MaxReplyPayload = MaxMessage - HeaderSize - StatusSize
)

// Protocol version and mount timeout reported to clients (spec.md §6).
const (
	ProtocolVersionMajor = 0x01
	ProtocolVersionMinor = 0x02
	MountTimeoutMillis   = 0x03E8 // 1000ms
)

// ErrTooLarge is returned when an encoded message would exceed MaxMessage.
var ErrTooLarge = errors.New("wire: message exceeds maximum size")

// ErrShort is returned when a buffer is too small to contain a header.
var ErrShort = errors.New("wire: buffer shorter than header")

// Header is the 4-byte prefix common to every request and reply.
type Header struct {
	SessionID uint16
	Seq       uint8
	Command   uint8
}

// DecodeHeader splits buf into its header and the remaining payload slice.
// The returned payload aliases buf; callers must not retain buf beyond the
// lifetime of the datagram buffer it was read into.
func DecodeHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, ErrShort
	}
	h := Header{
		SessionID: Uint16(buf[0:2]),
		Seq:       buf[2],
		Command:   buf[3],
	}
	return h, buf[HeaderSize:], nil
}

// EncodeReply builds a reply message: header, status byte, payload.
// The returned slice is a fresh copy sized exactly to the message; encoding
// never grows beyond a fixed MaxMessage scratch buffer.
func EncodeReply(h Header, status byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxReplyPayload {
		return nil, fmt.Errorf("%w: payload %d bytes > max %d", ErrTooLarge, len(payload), MaxReplyPayload)
	}
	var scratch [MaxMessage]byte
	PutUint16(scratch[0:2], h.SessionID)
	scratch[2] = h.Seq
	scratch[3] = h.Command
	scratch[4] = status
	n := HeaderSize + StatusSize + copy(scratch[HeaderSize+StatusSize:], payload)
	out := make([]byte, n)
	copy(out, scratch[:n])
	return out, nil
}

// Uint16 reads a little-endian uint16 from the first two bytes of b.
func Uint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// Uint32 reads a little-endian uint32 from the first four bytes of b.
func Uint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// PutUint16 writes v little-endian into the first two bytes of b.
func PutUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// PutUint32 writes v little-endian into the first four bytes of b.
func PutUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
