package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/auth"
	"github.com/humidorapp/humidor-server/internal/service"
	"github.com/humidorapp/humidor-server/internal/stats"
)

const exportFixture = `{
  "cigars": [
    {"id": "1", "name": "Robusto X", "brand": "Marca Y", "strength": 4, "price": 30, "quantity": 2}
  ],
  "tastingSessions": [
    {"id": "t1", "cigarId": "1", "cigarName": "Robusto X", "cigarBrand": "Marca Y",
     "startTime": "2025-12-01T20:00:00.000Z", "endTime": "2025-12-01T20:40:00.000Z",
     "rating": 4, "flavors": ["Cedro"]}
  ],
  "currentTastingSessions": []
}`

// run executes the CLI against a sqlite store in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"--store", "sqlite",
		"--data-path", dir,
		"--env-file", filepath.Join(dir, "missing.env"),
	}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestImportThenStats(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(file, []byte(exportFixture), 0o600))

	out, err := run(t, dir, "import", "--user", "u1", "--file", file)
	require.NoError(t, err)

	var res service.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Cigars)
	assert.Equal(t, 1, res.Archived)

	out, err = run(t, dir, "stats", "--user", "u1")
	require.NoError(t, err)

	var overview stats.Overview
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.Equal(t, 1, overview.TotalCigars)
	assert.Equal(t, 2, overview.TotalUnits)
	assert.Equal(t, 1, overview.TotalSessions)
	assert.Equal(t, 40, overview.TotalDuration)

	// A repeated import is refused rather than duplicating records.
	_, err = run(t, dir, "import", "--user", "u1", "--file", file)
	require.Error(t, err)

	// Another user sees nothing.
	out, err = run(t, dir, "stats", "--user", "u2")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.Zero(t, overview.TotalCigars)
}

func TestToken(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "token", "--user", "u1", "--email", "u1@example.com")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, "humidor", time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
}

func TestRequiredFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "import", "--user", "u1")
	require.Error(t, err)

	_, err = run(t, dir, "token")
	require.Error(t, err)
}

func TestImport_BadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(file, []byte("not json"), 0o600))

	_, err := run(t, dir, "import", "--user", "u1", "--file", file)
	require.Error(t, err)
}

func TestBackupRestore_AcrossDrivers(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "export.json")
	require.NoError(t, os.WriteFile(file, []byte(exportFixture), 0o600))

	_, err := run(t, src, "import", "--user", "u1", "--file", file)
	require.NoError(t, err)

	archive := filepath.Join(t.TempDir(), "u1.zip")
	_, err = run(t, src, "backup", "--user", "u1", "--out", archive)
	require.NoError(t, err)

	// Refuses to overwrite.
	_, err = run(t, src, "backup", "--user", "u1", "--out", archive)
	require.Error(t, err)

	dst := t.TempDir()
	restore := func(args ...string) (string, error) {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--store", "badger", "--data-path", dst, "--env-file", filepath.Join(dst, "none.env"), "restore", "--file", archive}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	_, err = restore("--dry-run")
	require.NoError(t, err)
	_, err = restore()
	require.NoError(t, err)
	_, err = restore()
	require.Error(t, err)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--store", "badger", "--data-path", dst, "--env-file", filepath.Join(dst, "none.env"), "stats", "--user", "u1"})
	require.NoError(t, cmd.Execute())

	var overview stats.Overview
	require.NoError(t, json.Unmarshal(out.Bytes(), &overview))
	assert.Equal(t, 1, overview.TotalCigars)
	assert.Equal(t, 1, overview.TotalSessions)
}
