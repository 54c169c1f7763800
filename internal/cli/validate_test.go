package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/testutil"
)

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidDocument(t *testing.T) {
	specs := testutil.EnvSpecsDir(t)
	doc := testutil.WriteFile(t, t.TempDir(), "dev.yaml", "Dev:\n  port: 8080\n")

	out, err := executeValidate(t, "text", specs, doc)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+doc+"\n", out)
}

func TestValidateInvalidDocument(t *testing.T) {
	specs := testutil.EnvSpecsDir(t)
	doc := testutil.WriteFile(t, t.TempDir(), "both.yaml", "Dev:\n  port: 0\nProd:\n  host: example.com\n")

	out, err := executeValidate(t, "text", specs, doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ "+doc+"\n")
	assert.Contains(t, out, "  "+doc+":2: Dev.port: must be at least 1\n")
	assert.Contains(t, out, `  rule "one-env": Exactly 1 of {Dev,Prod} must be selected, found 2: {Dev,Prod}`)
	assert.Contains(t, out, "1 of 1 document(s) invalid")
}

func TestValidateJSONReportID(t *testing.T) {
	specs := testutil.EnvSpecsDir(t)
	doc := testutil.WriteFile(t, t.TempDir(), "prod.yaml", "Prod:\n  host: example.com\n")

	out, err := executeValidate(t, "json", specs, doc)
	require.NoError(t, err)

	var resp struct {
		Status   string           `json:"status"`
		ReportID string           `json:"report_id"`
		Data     ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Documents, 1)

	id, err := uuid.Parse(resp.ReportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, resp.ReportID, resp.Data.Documents[0].Report.ID)
}

func TestValidateGlob(t *testing.T) {
	specs := testutil.EnvSpecsDir(t)
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "envs/dev.yaml", "Dev:\n  port: 8080\n")
	bad := testutil.WriteFile(t, dir, "envs/nested/broken.yaml", "Dev: [1, 2]\n")
	testutil.WriteFile(t, dir, "envs/notes.txt", "ignored")

	out, err := executeValidate(t, "json", specs, filepath.Join(dir, "envs", "**", "*.yaml"))
	require.Error(t, err)

	var resp struct {
		Status   string           `json:"status"`
		ReportID string           `json:"report_id"`
		Error    *ResponseError   `json:"error"`
		Data     ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Empty(t, resp.ReportID)
	assert.Equal(t, "1 of 2 document(s) invalid", resp.Error.Message)

	require.Len(t, resp.Data.Documents, 2)
	assert.Equal(t, good, resp.Data.Documents[0].Path)
	assert.True(t, resp.Data.Documents[0].Valid)
	assert.Equal(t, bad, resp.Data.Documents[1].Path)
	assert.Contains(t, resp.Data.Documents[1].Error, `section "Dev" must be a mapping`)
}

func TestValidateMissingDocument(t *testing.T) {
	specs := testutil.EnvSpecsDir(t)

	out, err := executeValidate(t, "text", specs, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: document not found")
}

func TestValidateGlobWithoutMatches(t *testing.T) {
	specs := testutil.EnvSpecsDir(t)

	_, err := executeValidate(t, "text", specs, filepath.Join(t.TempDir(), "*.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents match")
}

func TestValidateBadSpecs(t *testing.T) {
	doc := testutil.WriteFile(t, t.TempDir(), "dev.yaml", "Dev: {}\n")

	out, err := executeValidate(t, "text", filepath.Join(t.TempDir(), "missing"), doc)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := executeValidate(t, "text", testutil.EnvSpecsDir(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}

func TestExpandDocumentsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteFile(t, dir, "a.yaml", "")
	b := testutil.WriteFile(t, dir, "b.yaml", "")

	files, err := expandDocuments([]string{b, filepath.Join(dir, "*.yaml")})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, files)
}

func TestWatchRoots(t *testing.T) {
	roots := watchRoots("specs", []string{"conf/dev.yaml", "envs/**/*.yaml", "conf/prod.yaml"})
	assert.Equal(t, []watchRoot{
		{Path: "specs", Recursive: true},
		{Path: "conf"},
		{Path: "envs", Recursive: true},
	}, roots)
}
