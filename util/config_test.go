package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetters_Defaults(t *testing.T) {
	for _, name := range []string{SNAP_GPT_PATH, SNAP_GPT_CACHE, SNAP_LD_LIBRARY_PATH, SNAP_WORKDIR, PORT} {
		t.Setenv(name, "")
	}

	assert.Equal(t, "/opt/snap/bin/gpt", GetGptPath())
	assert.Equal(t, "2048M", GetGptCacheSize())
	assert.Equal(t, ".", GetLibraryPath())
	assert.Equal(t, ".", GetWorkDir())
	assert.Equal(t, ":8080", GetPortStr())
}

func TestGetters_Environment(t *testing.T) {
	t.Setenv(SNAP_GPT_PATH, "/usr/local/snap/bin/gpt")
	t.Setenv(SNAP_GPT_CACHE, "8G")
	t.Setenv(SNAP_LD_LIBRARY_PATH, "/usr/local/snap/lib")
	t.Setenv(SNAP_WORKDIR, "/scratch")
	t.Setenv(PORT, "9000")

	assert.Equal(t, "/usr/local/snap/bin/gpt", GetGptPath())
	assert.Equal(t, "8G", GetGptCacheSize())
	assert.Equal(t, "/usr/local/snap/lib", GetLibraryPath())
	assert.Equal(t, "/scratch", GetWorkDir())
	assert.Equal(t, ":9000", GetPortStr())
}
