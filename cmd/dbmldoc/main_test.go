package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersSource = `Project Accounts {
  Note: 'User accounts'
}

Table users {
  id int [pk]
  email varchar [unique, not null]
}
`

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, env map[string]string, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	code := run(args, strings.NewReader(stdin), &stdout, &stderr, lookup)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestVersion(t *testing.T) {
	res := execute(t, nil, "", "version")

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "dbmldoc version 1.0.0\n", res.stdout)
}

func TestUnknownCommand(t *testing.T) {
	res := execute(t, nil, "", "publish")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error:")
}

func TestGenerateStdin(t *testing.T) {
	res := execute(t, nil, usersSource, "generate", "--source=false")

	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "# Accounts documentation\n\nUser accounts\n\n### users\n"))
	assert.Contains(t, res.stdout, "| 🔑 | id | int |")
	assert.Contains(t, res.stdout, "|  | email | varchar | true | true |  |  |  |")
	assert.NotContains(t, res.stdout, "## Source")
}

func TestGenerateFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "users.dbml")
	output := filepath.Join(dir, "docs", "users.md")
	writeFile(t, input, usersSource)

	res := execute(t, nil, "", "generate", "--title", "Identity", input, output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "documentation written")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Identity documentation\n"))
	assert.Contains(t, string(data), "## Source\n\n```dbml\n")
}

func TestGenerateInvalid(t *testing.T) {
	res := execute(t, nil, "Table users {", "generate")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "failed to parse dbml")
	assert.Empty(t, res.stdout)
}

func TestGeneratePreview(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "users.dbml")
	writeFile(t, input, usersSource)

	res := execute(t, nil, "", "generate", "--preview", input)
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(input + "-DBMLDoc.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Accounts documentation\n")
}

func TestGeneratePreviewInvalid(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.dbml")
	writeFile(t, input, "Table broken {")

	res := execute(t, nil, "", "generate", "--preview", input)
	assert.Equal(t, 1, res.code)

	data, err := os.ReadFile(input + "-DBMLDoc.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Documentation for broken.dbml could not be generated.")
}

func TestGeneratePreviewArguments(t *testing.T) {
	res := execute(t, nil, usersSource, "generate", "--preview")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "--preview requires an input file")

	res = execute(t, nil, "", "generate", "--preview", "a.dbml", "b.md")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "cannot be combined")
}

func TestSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "dbmldoc.yaml")
	writeFile(t, configPath, "title: From config\ninclude_source: false\nexclude_tables: [sessions]\n")

	source := usersSource + "\nTable sessions {\n  id int [pk]\n}\n"

	res := execute(t, nil, source, "generate", "--config", configPath)
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "# From config documentation\n"))
	assert.NotContains(t, res.stdout, "sessions")
	assert.NotContains(t, res.stdout, "## Source")

	env := map[string]string{"DBMLDOC_TITLE": "From env"}
	res = execute(t, env, source, "generate", "--config", configPath)
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "# From env documentation\n"))

	res = execute(t, env, source, "generate", "--config", configPath, "--title", "From flag", "--exclude-tables", "", "--source")
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "# From flag documentation\n"))
	assert.Contains(t, res.stdout, "### sessions\n")
	assert.Contains(t, res.stdout, "## Source")
}

func TestMissingConfig(t *testing.T) {
	res := execute(t, nil, usersSource, "generate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "failed to read config")
}

func TestIntrospectRequiresURL(t *testing.T) {
	res := execute(t, nil, "", "introspect")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "database URL is required")
}

func TestIntrospectInvalidFormat(t *testing.T) {
	env := map[string]string{"DATABASE_URL": "postgres://localhost/none"}
	res := execute(t, env, "", "introspect", "--format", "yaml")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid format: yaml")
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "docs")
	writeFile(t, filepath.Join(dir, "users.dbml"), usersSource)

	res := execute(t, nil, "", "batch", "--out-dir", outDir, "--workers", "2", dir)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "batch finished")

	data, err := os.ReadFile(filepath.Join(outDir, "users.dbml-DBMLDoc.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Accounts documentation\n")
}

func TestBatchFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.dbml"), usersSource)
	writeFile(t, filepath.Join(dir, "broken.dbml"), "Table broken {")

	res := execute(t, nil, "", "batch", dir)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "1 of 2 files could not be documented")

	_, err := os.Stat(filepath.Join(dir, "users.dbml-DBMLDoc.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "broken.dbml-DBMLDoc.md"))
	assert.NoError(t, err)
}

func TestSetupLogger(t *testing.T) {
	var out bytes.Buffer

	logger := setupLogger("debug", &out)
	assert.Equal(t, "debug", logger.GetLevel().String())

	logger = setupLogger("loud", &out)
	assert.Equal(t, "info", logger.GetLevel().String())
}
