package secrets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileProvider_Resolve(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	good := write("good", "  s3cr3t \n")
	empty := write("empty", "\n")
	big := write("big", strings.Repeat("x", 32))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(good, link))

	otherDir := t.TempDir()
	outside := filepath.Join(otherDir, "outside")
	require.NoError(t, os.WriteFile(outside, []byte("nope"), 0o600))

	ctx := context.Background()

	tests := []struct {
		name         string
		config       FileConfig
		path         string
		want         string
		wantCategory Category
	}{
		{name: "reads and trims", path: good, want: "s3cr3t"},
		{name: "missing", path: filepath.Join(dir, "missing"), wantCategory: CategoryNotFound},
		{name: "empty", path: empty, wantCategory: CategoryNotFound},
		{name: "too large", config: FileConfig{MaxSize: 16}, path: big, wantCategory: CategoryInvalidSyntax},
		{name: "symlink rejected", path: link, wantCategory: CategoryAccessDenied},
		{name: "symlink followed", config: FileConfig{FollowSymlinks: true}, path: link, want: "s3cr3t"},
		{name: "allowlisted dir", config: FileConfig{Allowlist: []string{dir}}, path: good, want: "s3cr3t"},
		{name: "outside allowlist", config: FileConfig{Allowlist: []string{dir}}, path: outside, wantCategory: CategoryAccessDenied},
		{name: "relative", path: "relative/secret", wantCategory: CategoryInvalidSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFileProvider(tt.config).Resolve(ctx, tt.path)
			if tt.wantCategory == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, tt.wantCategory, resErr.Category)
			assert.NotContains(t, err.Error(), "s3cr3t")
		})
	}
}
