package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CQCL/tket-iqm/internal/testutil"
)

func TestCompileBell(t *testing.T) {
	path := writeBatch(t, bellBatch)
	opts := &RootOptions{
		Format: "text",
		Device: "fake-line",
		Client: &testutil.FakeClient{},
	}

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "bell:")
	assert.Contains(t, out, "PhasedX")
	assert.Contains(t, out, "CZ")
	assert.Contains(t, out, "Measure")
	assert.NotContains(t, out, "H ")
	assert.NotContains(t, out, "CX")
}

func TestCompileShowPasses(t *testing.T) {
	path := writeBatch(t, bellBatch)
	opts := &RootOptions{
		Format: "text",
		Device: "fake-line",
		Client: &testutil.FakeClient{},
	}

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--passes", "--level", "0"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "passes:")
}

func TestCompileJSON(t *testing.T) {
	path := writeBatch(t, bellBatch)
	opts := &RootOptions{
		Format: "json",
		Device: "fake-line",
		Client: &testutil.FakeClient{},
	}

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--level", "1"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result struct {
		Level    int              `json:"level"`
		Circuits []circuitSummary `json:"circuits"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, 1, result.Level)
	require.Len(t, result.Circuits, 1)
	assert.Equal(t, "bell", result.Circuits[0].Name)
	assert.NotEmpty(t, result.Circuits[0].Commands)
}

func TestCompileBadBatch(t *testing.T) {
	opts := &RootOptions{
		Format: "text",
		Device: "fake-line",
		Client: &testutil.FakeClient{},
	}

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"no-such-file.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E005]")
}
