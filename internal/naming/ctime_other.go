//go:build !linux && !darwin

package naming

import (
	"os"
	"time"
)

// CreationTime falls back to the modification time on platforms without a
// portable creation timestamp.
func CreationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
