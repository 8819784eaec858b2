//go:build windows || plan9

package hostio

import "errors"

// FreeSpace is unsupported on this platform: it always returns an error,
// which the SIZE and FREE handlers report as an error status.
func (fs *FS) FreeSpace(hostPath string) (total, free uint64, err error) {
	return 0, 0, errors.New("hostio: free space reporting not supported on this platform")
}
