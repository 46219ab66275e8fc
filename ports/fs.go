package ports

import "github.com/spf13/afero"

// FS is the filesystem of config and cache files
type FS = afero.Fs
