package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/internal/cli/config"
	"github.com/leapstack-labs/qrsheet/internal/testutil"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// execute runs cmd with args and returns its output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.Contains(t, cmd.Aliases, "ui")

	for _, flag := range []string{"port", "no-browser", "dev"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewGenerateCommand(t *testing.T) {
	cmd := NewGenerateCommand()

	assert.Equal(t, "generate", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"text", "table", "out", "terminal"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewScanCommand(t *testing.T) {
	cmd := NewScanCommand()

	assert.Equal(t, "scan [image...]", cmd.Use)
	for _, flag := range []string{"watch", "raw"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewTUICommand(t *testing.T) {
	cmd := NewTUICommand()

	assert.Equal(t, "tui", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("no-color"))
}

func TestGenerate_TextThenScan(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "code.png")

	stdout, err := execute(t, NewGenerateCommand(), "--text", "hello world", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)

	stdout, err = execute(t, NewScanCommand(), out)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", stdout)
}

func TestGenerate_DefaultOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := execute(t, NewGenerateCommand(), "--text", "hi")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, core.DownloadFilename))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestGenerate_TableThenScan(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,price\napple,1\n"), 0o600))
	out := filepath.Join(dir, "table.png")

	_, err := execute(t, NewGenerateCommand(), "--table", csvPath, "--out", out)
	require.NoError(t, err)

	stdout, err := execute(t, NewScanCommand(), out)
	require.NoError(t, err)
	assert.Contains(t, stdout, `{"columns":["name","price"],"rows":[["apple","1"]]}`)
	assert.Contains(t, stdout, "┌", "tabular results are also printed as a table")
	assert.Contains(t, stdout, "apple")

	stdout, err = execute(t, NewScanCommand(), "--raw", out)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "┌")
}

func TestGenerate_Stdout(t *testing.T) {
	stdout, err := execute(t, NewGenerateCommand(), "--text", "x", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", stdout[:4])
}

func TestGenerate_Terminal(t *testing.T) {
	stdout, err := execute(t, NewGenerateCommand(), "--text", "x", "--terminal")
	require.NoError(t, err)
	assert.Contains(t, stdout, "█")
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"no content", nil},
		{"text and table", []string{"--text", "a", "--table", "t.csv"}},
		{"out and terminal", []string{"--text", "a", "--terminal", "--out", "x.png"}},
		{"unknown table format", []string{"--table", filepath.Join(dir, "t.json")}},
		{"missing table file", []string{"--table", filepath.Join(dir, "missing.csv")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewGenerateCommand(), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_EmptyText(t *testing.T) {
	_, err := execute(t, NewGenerateCommand(), "--text", "", "--out", filepath.Join(t.TempDir(), "x.png"))
	require.ErrorIs(t, err, core.ErrEmptyPayload)
}

func TestScan_NoCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.png")
	require.NoError(t, os.WriteFile(path, testutil.BlankPNG(t), 0o600))

	stdout, err := execute(t, NewScanCommand(), path)
	require.NoError(t, err)
	assert.Equal(t, core.SentinelNoQRCode+"\n", stdout)
}

func TestScan_MultipleImages(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(a, testutil.QRPNG(t, "first"), 0o600))
	require.NoError(t, os.WriteFile(b, testutil.BlankPNG(t), 0o600))

	stdout, err := execute(t, NewScanCommand(), a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "==> "+a+" <==\nfirst\n")
	assert.Contains(t, stdout, "==> "+b+" <==\n"+core.SentinelNoQRCode)
}

func TestScan_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, NewScanCommand())
	assert.Error(t, err, "no images")

	_, err = execute(t, NewScanCommand(), filepath.Join(dir, "missing.png"))
	assert.Error(t, err, "unreadable file")

	_, err = execute(t, NewScanCommand(), "--watch", dir, "image.png")
	assert.Error(t, err, "watch with images")

	_, err = execute(t, NewScanCommand(), "--watch", filepath.Join(dir, "missing"))
	assert.Error(t, err, "missing watch dir")
}

func TestScan_Watch(t *testing.T) {
	watchDir := t.TempDir()
	stage := t.TempDir()
	png := testutil.QRPNG(t, "from a frame")

	var out bytes.Buffer
	cmd := NewScanCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--watch", watchDir})
	config.ResetConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// keep dropping frames until the watcher is up and one is decoded
	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Contains(t, out.String(), "from a frame")
			return
		case <-ticker.C:
			tmp := filepath.Join(stage, fmt.Sprintf("frame-%d.png", i))
			require.NoError(t, os.WriteFile(tmp, png, 0o600))
			require.NoError(t, os.Rename(tmp, filepath.Join(watchDir, filepath.Base(tmp))))
		case <-ctx.Done():
			t.Fatal("watch did not decode a frame in time")
		}
	}
}
