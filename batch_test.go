package dbmldoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/dbmldoc/parser"
)

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerateDir(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "shop.dbml"), shopSource)
	writeSource(t, filepath.Join(dir, "nested", "broken.dbml"), "Table broken {")
	writeSource(t, filepath.Join(dir, "notes.txt"), "not dbml")

	log, hook := test.NewNullLogger()

	results, err := GenerateDir(context.Background(), dir, "", nil, 2, log)
	require.NoError(t, err)
	require.Len(t, results, 2)

	broken := results[0]
	assert.Equal(t, filepath.Join(dir, "nested", "broken.dbml"), broken.Source)
	assert.Equal(t, filepath.Join(dir, "nested", "broken.dbml-DBMLDoc.md"), broken.Output)
	assert.ErrorIs(t, broken.Err, parser.ErrSyntax)

	shop := results[1]
	assert.Equal(t, filepath.Join(dir, "shop.dbml"), shop.Source)
	assert.NoError(t, shop.Err)

	data, err := os.ReadFile(shop.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Shop documentation\n")

	data, err = os.ReadFile(broken.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Documentation for broken.dbml could not be generated.")

	_, err = os.Stat(filepath.Join(dir, "notes.txt-DBMLDoc.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	var warnings, infos int
	for _, entry := range hook.AllEntries() {
		switch entry.Level {
		case logrus.WarnLevel:
			warnings++
		case logrus.InfoLevel:
			infos++
		}
	}
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 1, infos)
}

func TestGenerateDirOutDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "docs")
	writeSource(t, filepath.Join(dir, "billing", "invoices.dbml"), "Table invoices {\n  id int [pk]\n}\n")

	log, _ := test.NewNullLogger()

	results, err := GenerateDir(context.Background(), dir, outDir, &Config{Title: "Billing"}, 0, log)
	require.NoError(t, err)
	require.Len(t, results, 1)

	want := filepath.Join(outDir, "billing", "invoices.dbml-DBMLDoc.md")
	assert.Equal(t, want, results[0].Output)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Billing documentation\n")
	assert.Contains(t, string(data), "### invoices\n")
}

func TestGenerateDirMissing(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := GenerateDir(context.Background(), filepath.Join(t.TempDir(), "missing"), "", nil, 1, log)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateDirCanceled(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "shop.dbml"), shopSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log, _ := test.NewNullLogger()

	_, err := GenerateDir(ctx, dir, "", nil, 1, log)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateDirNilLogger(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "shop.dbml"), shopSource)

	results, err := GenerateDir(context.Background(), dir, "", nil, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}
