// Package handlers implements the thin per-command adapters of spec.md
// §4.7: they parse a request payload, drive the path sandbox, handle
// tables, directory engine and host filesystem, and translate host
// errors into the wire status taxonomy. Argument parsing follows the
// teacher's backend/local error-wrapping idiom; nothing here touches a
// socket or the session table directly except through internal/session.
package handlers

import (
	"bytes"
	"errors"

	"github.com/FujiNetWIFI/tnfsd/internal/wire"
)

// ErrMalformed is returned by argument parsing when a payload is too
// short or missing a required NUL terminator (spec.md §4.7 "malformed
// arguments yield EINVAL").
var ErrMalformed = errors.New("handlers: malformed request payload")

// readCString reads a NUL-terminated string from the front of buf,
// returning the string and the remainder of buf after the terminator.
func readCString(buf []byte) (string, []byte, error) {
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 {
		return "", nil, ErrMalformed
	}
	return string(buf[:idx]), buf[idx+1:], nil
}

func readU16(buf []byte) (uint16, []byte, error) {
	if len(buf) < 2 {
		return 0, nil, ErrMalformed
	}
	return wire.Uint16(buf), buf[2:], nil
}

func readU32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, ErrMalformed
	}
	return wire.Uint32(buf), buf[4:], nil
}

func readByte(buf []byte) (byte, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, ErrMalformed
	}
	return buf[0], buf[1:], nil
}

// appendCString appends s and a trailing NUL to buf.
func appendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	wire.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	wire.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}
