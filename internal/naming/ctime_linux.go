//go:build linux

package naming

import (
	"time"

	"golang.org/x/sys/unix"
)

// CreationTime returns the birth time of path when the filesystem records
// one, falling back to the inode change time.
func CreationTime(path string) (time.Time, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME|unix.STATX_CTIME, &stx)
	if err == nil {
		if stx.Mask&unix.STATX_BTIME != 0 {
			return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
		}
		return time.Unix(stx.Ctime.Sec, int64(stx.Ctime.Nsec)), nil
	}

	// Kernels older than 4.11 have no statx.
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, err
	}
	return time.Unix(st.Ctim.Unix()), nil
}
