//go:build !windows && !plan9

package hostio

import "golang.org/x/sys/unix"

// FreeSpace reports the FREE/SIZE figures for the SIZE command (spec.md
// §4.7), grounded on the teacher's backend/local/about_unix.go use of
// unix.Statfs for the about command's free-space report.
func (fs *FS) FreeSpace(hostPath string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(hostPath, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}
