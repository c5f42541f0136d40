package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/internal/cli/config"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())
	config.ResetConfig()
	cfgFile = ""

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"serve", "generate", "scan", "tui", "version", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "verbose", "log-format", "output-dir"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "qrsheet v"+Version)
}

func TestRootCmd_OutputDirFlag(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, "--output-dir", dir, "generate", "--text", "hello")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, core.DownloadFilename))
	assert.NoError(t, err)
}

func TestRootCmd_VerboseJSONLogs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.png")

	_, stderr, err := run(t, "-v", "--log-format", "json", "generate", "--text", "hello", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"generated payload"`)
}

func TestRootCmd_QuietByDefault(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.png")

	_, stderr, err := run(t, "generate", "--text", "hello", "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("qr:\n  size: 3\n"), 0o600))

	_, _, err := run(t, "--config", cfgPath, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qr.size")
}

func TestRootCmd_Completion(t *testing.T) {
	stdout, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "qrsheet")
}
