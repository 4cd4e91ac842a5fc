// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the default maximum secret file size (64KB).
const MaxFileSize = 64 * 1024

// FileConfig controls which files the file provider may read.
type FileConfig struct {
	// Allowlist restricts reads to these files or directories. Empty allows
	// any absolute path.
	Allowlist []string `yaml:"allowlist,omitempty"`

	// FollowSymlinks allows the secret path to be a symlink.
	FollowSymlinks bool `yaml:"follow_symlinks,omitempty"`

	// MaxSize is the maximum file size in bytes. Zero means MaxFileSize.
	MaxSize int64 `yaml:"max_size,omitempty"`
}

// FileProvider resolves file: references.
type FileProvider struct {
	config FileConfig
}

// NewFileProvider creates a file provider.
func NewFileProvider(config FileConfig) *FileProvider {
	if config.MaxSize == 0 {
		config.MaxSize = MaxFileSize
	}
	return &FileProvider{config: config}
}

// Scheme returns "file".
func (f *FileProvider) Scheme() string {
	return "file"
}

// Resolve reads the file at the absolute path key and returns its contents
// with surrounding whitespace trimmed.
func (f *FileProvider) Resolve(_ context.Context, key string) (string, error) {
	ref := "file:" + key
	fail := func(c Category, msg string, err error) (string, error) {
		return "", NewResolutionError(c, ref, "file", msg, err)
	}

	if !filepath.IsAbs(key) {
		return fail(CategoryInvalidSyntax, "path must be absolute", nil)
	}
	path := filepath.Clean(key)
	if !f.isAllowed(path) {
		return fail(CategoryAccessDenied, "path not in allowlist", nil)
	}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fail(CategoryNotFound, "file not found", err)
		}
		return fail(CategoryAccessDenied, "file stat failed", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		if !f.config.FollowSymlinks {
			return fail(CategoryAccessDenied, "symlinks not allowed", nil)
		}
		if info, err = os.Stat(path); err != nil {
			return fail(CategoryNotFound, "symlink target not found", err)
		}
	}
	if info.Size() > f.config.MaxSize {
		return fail(CategoryInvalidSyntax, fmt.Sprintf("file too large (max %d bytes)", f.config.MaxSize), nil)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return fail(CategoryAccessDenied, "permission denied", err)
		}
		return fail(CategoryNotFound, "failed to read file", err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return fail(CategoryNotFound, "file is empty", nil)
	}
	return value, nil
}

// isAllowed matches path against the allowlist by exact path or directory
// prefix.
func (f *FileProvider) isAllowed(path string) bool {
	if len(f.config.Allowlist) == 0 {
		return true
	}
	for _, allowed := range f.config.Allowlist {
		allowed = filepath.Clean(allowed)
		if path == allowed || strings.HasPrefix(path, allowed+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
