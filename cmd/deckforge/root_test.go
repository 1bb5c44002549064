package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "generate", "migrate"})
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestGenerateCmd_RejectsArgs(t *testing.T) {
	_, err := executeRoot("generate", "coins", "--theme", "x")
	require.Error(t, err)

	_, err = executeRoot("generate", "cups")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme")
}

func TestMigrateCmd_RejectsUnknownCommand(t *testing.T) {
	_, err := executeRoot("migrate", "sideways")
	require.Error(t, err)

	_, err = executeRoot("migrate")
	require.Error(t, err)
}

func TestMigrateCmd_MissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := executeRoot("--config", missing, "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestMigrationTarget_NoDatabase(t *testing.T) {
	t.Setenv("DECKFORGE_DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "llm:\n  gemini_api_key: test-key\n")

	opts := &rootOptions{configPath: path}
	_, _, err := migrationTarget(opts, "", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestMigrationTarget_ExplicitURL(t *testing.T) {
	opts := &rootOptions{configPath: filepath.Join(t.TempDir(), "absent.yaml")}
	url, log, err := migrationTarget(opts, "postgres://deck@localhost/deck", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://deck@localhost/deck", url)
	assert.NotNil(t, log)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
