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

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(CompiledStatement{Name: "q", SQL: "DELETE FROM [User]"})
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompiledStatement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "DELETE FROM [User]", resp.Data.SQL)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error("CAPABILITY_TIER", "unsupported union operation on build 515", "INTERSECT")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CAPABILITY_TIER", resp.Error.Code)
	assert.Equal(t, "INTERSECT", resp.Error.Details)
	assert.Nil(t, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("SELECT 1\n"))
	assert.Equal(t, "SELECT 1\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeFixture, "invalid fixture", nil))
	assert.Equal(t, "Error [E002]: invalid fixture\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Error(ErrCodeFixture, "invalid fixture", "line 3, column 5: unknown column T0.Nope"))
	assert.Contains(t, buf.String(), "Details: line 3, column 5")
}

func TestExitError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapExitError(ExitCommandError, "load", cause)
	assert.Equal(t, "load: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	bare := &ExitError{Code: ExitFailure, Message: "no cause"}
	assert.Equal(t, "no cause", bare.Error())
}
