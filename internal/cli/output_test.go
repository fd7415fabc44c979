package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErrorMessage(t *testing.T) {
	err := NewExitError(ExitCommandError, "bad flag")
	assert.Equal(t, "bad flag", err.Error())

	wrapped := WrapExitError(ExitFailure, "submit", errors.New("connection refused"))
	assert.Equal(t, "submit: connection refused", wrapped.Error())
	assert.ErrorContains(t, wrapped, "connection refused")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	// Codes survive wrapping.
	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestFormatterSuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"count": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestFormatterErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeSchema, "bad batch"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSchema, resp.Error.Code)
	assert.Equal(t, "bad batch", resp.Error.Message)
}

func TestFormatterErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeRemote, "server unreachable"))
	assert.Contains(t, buf.String(), "Error [E007]: server unreachable")
}

func TestFormatterFail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	f.Fail(ErrCodeNoToken, errors.New("no token in any source"))
	assert.Contains(t, buf.String(), "Error [E006]: no token in any source")
}

func TestVerboseLogRouting(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("probing %s", "device")
	assert.Empty(t, out.String())
	assert.Equal(t, "probing device\n", errOut.String())

	f.Verbose = false
	f.VerboseLog("silent")
	assert.Equal(t, "probing device\n", errOut.String())
}
