// Copyright 2016, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"os"

	"github.com/google/uuid"
)

// AppName is reported by every log context in this application
const AppName = "bf-snap"

// Version is the version reported by the CLI
const Version = "1.0.0"

// Environment variables
const (
	SNAP_GPT_PATH        = "SNAP_GPT_PATH"
	SNAP_GPT_CACHE       = "SNAP_GPT_CACHE"
	SNAP_LD_LIBRARY_PATH = "SNAP_LD_LIBRARY_PATH"
	SNAP_WORKDIR         = "SNAP_WORKDIR"
	LOG_LEVEL            = "LOG_LEVEL"
	PORT                 = "PORT"
)

const (
	defaultGptPath     = "/opt/snap/bin/gpt"
	defaultGptCache    = "2048M"
	defaultLibraryPath = "."
	defaultWorkDir     = "."
	defaultPort        = "8080"
)

// GetGptPath returns the SNAP gpt executable from SNAP_GPT_PATH, or the
// standard install location
func GetGptPath() string {
	if path, ok := os.LookupEnv(SNAP_GPT_PATH); ok && path != "" {
		return path
	}
	return defaultGptPath
}

// GetGptCacheSize returns the tile cache ceiling handed to gpt via -c
func GetGptCacheSize() string {
	if size, ok := os.LookupEnv(SNAP_GPT_CACHE); ok && size != "" {
		return size
	}
	return defaultGptCache
}

// GetLibraryPath returns the LD_LIBRARY_PATH used for gpt processes
func GetLibraryPath() string {
	if path, ok := os.LookupEnv(SNAP_LD_LIBRARY_PATH); ok && path != "" {
		return path
	}
	return defaultLibraryPath
}

// GetWorkDir returns the working directory gpt runs in
func GetWorkDir() string {
	if dir, ok := os.LookupEnv(SNAP_WORKDIR); ok && dir != "" {
		return dir
	}
	return defaultWorkDir
}

// GetPortStr returns the listen address for the HTTP server
func GetPortStr() string {
	if port, ok := os.LookupEnv(PORT); ok && port != "" {
		return ":" + port
	}
	return ":" + defaultPort
}

// PsuUUID returns a new random UUID string
func PsuUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
