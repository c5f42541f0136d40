package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0", "qrsheet v0.1.0\n"},
		{"1.2.3", "qrsheet v1.2.3\n"},
		{"dev", "qrsheet vdev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			out, err := execute(t, NewVersionCommand(tt.version))
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "text and tables")
		})
	}
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, NewVersionCommand("test"), "extra")
	assert.Error(t, err)
}
