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

package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
)

func setup(t *testing.T, content string) {
	t.Helper()
	for _, k := range []string{
		"FLOWS_CONFIG", "FLOWS_SERVER_ADDR", "FLOWS_METRICS_ENABLED", "FLOWS_CATALOG_INCLUDE",
		"FLOWS_TRACING_EXPORTER", "FLOWS_LOG_LEVEL", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	shared.SetConfigPathForTest(path)
	t.Cleanup(func() {
		shared.SetConfigPathForTest("")
		serveAddr = ""
		onListen = func(string) {}
	})
}

// start runs serve until the returned cancel function is called.
func start(t *testing.T, args ...string) (string, func() error) {
	t.Helper()
	addrCh := make(chan string, 1)
	onListen = func(addr string) { addrCh <- addr }

	root := &cobra.Command{Use: "flows-aws", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewCommand())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"serve"}, args...))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- root.ExecuteContext(ctx) }()

	select {
	case addr := <-addrCh:
		return addr, func() error {
			cancel()
			select {
			case err := <-errCh:
				return err
			case <-time.After(10 * time.Second):
				t.Fatal("serve did not stop")
				return nil
			}
		}
	case err := <-errCh:
		cancel()
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("serve did not start")
	}
	return "", nil
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServe(t *testing.T) {
	setup(t, "log:\n  level: error\nserver:\n  addr: 127.0.0.1:0\ncatalog:\n  include: [\"cloudwatch.*\"]\n")

	addr, stop := start(t)

	status, _ := get(t, "http://"+addr+"/health")
	assert.Equal(t, http.StatusOK, status)

	status, body := get(t, "http://"+addr+"/v1/blocks")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Count  int `json:"count"`
		Blocks []struct {
			ID string `json:"id"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Positive(t, list.Count)
	for _, b := range list.Blocks {
		assert.Contains(t, b.ID, "cloudwatch.")
	}

	status, body = get(t, "http://"+addr+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "go_goroutines")

	require.NoError(t, stop())
}

func TestServe_AddrFlagAndMetricsDisabled(t *testing.T) {
	setup(t, "log:\n  level: error\nserver:\n  addr: 127.0.0.1:1\nmetrics:\n  enabled: false\n")

	addr, stop := start(t, "--addr", "127.0.0.1:0")

	status, _ := get(t, "http://"+addr+"/metrics")
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, stop())
}

func TestServe_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"include matches nothing", "catalog:\n  include: [\"s3.*\"]\n"},
		{"bad tracing exporter", "tracing:\n  exporter: zipkin\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, "server:\n  addr: 127.0.0.1:0\n"+tt.config)

			root := &cobra.Command{Use: "flows-aws", SilenceUsage: true, SilenceErrors: true}
			root.AddCommand(NewCommand())
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs([]string{"serve"})

			err := root.Execute()
			require.Error(t, err)
			var exitErr *shared.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, shared.ExitConfiguration, exitErr.Code)
		})
	}
}
