package lib

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// FileSize returns size of file or zero
func FileSize(fs afero.Fs, name string) int64 {
	fi, err := fs.Stat(name)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// IsAbs covers problem of filepath.IsAbs which only checks
// first element of path and allows .. inside.
// So this function returns true, if filepath.Abs returns very same value
func IsAbs(path string) bool {
	if abs, err := filepath.Abs(path); err != nil || abs != path {
		return false
	}

	return true
}
