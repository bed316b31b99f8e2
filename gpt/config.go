package gpt

import "github.com/venicegeo/bf-snap/util"

// Config describes how to reach the SNAP Graph Processing Tool
type Config struct {
	// Path is the gpt executable
	Path string
	// CacheSize is the tile cache ceiling passed with -c, e.g. "2048M"
	CacheSize string
	// LibraryPath is exported to gpt as LD_LIBRARY_PATH
	LibraryPath string
	// WorkDir is the directory gpt runs in
	WorkDir string
}

// ConfigFromEnv builds a Config from the SNAP_* environment variables
func ConfigFromEnv() Config {
	return Config{
		Path:        util.GetGptPath(),
		CacheSize:   util.GetGptCacheSize(),
		LibraryPath: util.GetLibraryPath(),
		WorkDir:     util.GetWorkDir(),
	}
}
