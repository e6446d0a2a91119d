package dbmldoc

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucasefe/dbmldoc/generator"
	"github.com/lucasefe/dbmldoc/introspect"
	"github.com/lucasefe/dbmldoc/markdown"
	"github.com/lucasefe/dbmldoc/parser"
	"github.com/lucasefe/dbmldoc/schema"

	_ "github.com/lib/pq"
)

// PreviewSuffix is appended to a DBML file name to name its documentation.
const PreviewSuffix = "-DBMLDoc.md"

// Config controls how documentation is generated.
type Config struct {
	// Title replaces the database name in the document title.
	Title string `yaml:"title,omitempty"`
	// IncludeSource appends the DBML source as a code block.
	IncludeSource bool `yaml:"include_source"`
	// ExcludeTables lists tables left out of the document, bare or schema-qualified.
	ExcludeTables []string `yaml:"exclude_tables,omitempty"`
	// PrimaryKeyGlyph overrides the primary-key marker.
	PrimaryKeyGlyph string `yaml:"primary_key_glyph,omitempty"`
	// LinkGlyph overrides the marker of fields used by refs.
	LinkGlyph string `yaml:"link_glyph,omitempty"`
	// Schemas lists the schemas to introspect. Defaults to public.
	Schemas []string `yaml:"schemas,omitempty"`
	// IncludeAllSchemas introspects every non-system schema.
	IncludeAllSchemas bool `yaml:"all_schemas,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{IncludeSource: true}
}

// Generate parses DBML source and returns its Markdown documentation.
func Generate(source string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := parser.Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse dbml: %w", err)
	}

	return document(db, source, cfg)
}

// GenerateFromFile reads a DBML file and returns its Markdown documentation.
func GenerateFromFile(path string, cfg *Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Generate(string(data), cfg)
}

// GenerateFromConnection introspects a PostgreSQL database and returns its
// Markdown documentation. The source block, when enabled, holds DBML
// generated from the introspected schema.
func GenerateFromConnection(ctx context.Context, db *sql.DB, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	result, err := introspect.Database(ctx, db, introspectOptions(cfg)...)
	if err != nil {
		return "", fmt.Errorf("failed to introspect database: %w", err)
	}

	var source string
	if cfg.IncludeSource {
		source, err = generator.GenerateDBMLString(result)
		if err != nil {
			return "", fmt.Errorf("failed to generate dbml: %w", err)
		}
	}

	return document(result, source, cfg)
}

// GenerateFromConnectionString connects to a PostgreSQL database and
// returns its Markdown documentation.
func GenerateFromConnectionString(ctx context.Context, connStr string, cfg *Config) (string, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return "", fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("failed to ping database: %w", err)
	}

	return GenerateFromConnection(ctx, db, cfg)
}

// WriteToFile writes documentation to filename, creating parent directories.
func WriteToFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// PreviewFileName returns the documentation file name for a DBML file.
func PreviewFileName(path string) string {
	return path + PreviewSuffix
}

// ErrorDocument returns a Markdown document reporting that path could not
// be documented. It stands in for the preview while the source is broken.
func ErrorDocument(path string, err error) string {
	out := markdown.NewCollector()
	out.Append(markdown.Heading{Level: 1, Text: "DBML documentation"})
	out.Append(markdown.Text(fmt.Sprintf("Documentation for %s could not be generated.", filepath.Base(path))))
	out.AppendCodeBlock(err.Error(), "")

	text, renderErr := markdown.Render(out.Nodes())
	if renderErr != nil {
		return err.Error() + "\n"
	}
	return text
}

func document(db *schema.Database, source string, cfg *Config) (string, error) {
	if len(cfg.ExcludeTables) > 0 {
		db = schema.FilterTables(db, cfg.ExcludeTables)
	}
	if cfg.Title != "" {
		titled := *db
		titled.Name = cfg.Title
		db = &titled
	}

	opts := []generator.Option{
		generator.WithPrimaryKeyGlyph(cfg.PrimaryKeyGlyph),
		generator.WithLinkGlyph(cfg.LinkGlyph),
	}
	if cfg.IncludeSource && source != "" {
		opts = append(opts, generator.WithSource(source))
	}

	text, err := generator.GenerateString(db, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate documentation: %w", err)
	}
	return text, nil
}

func introspectOptions(cfg *Config) []introspect.Option {
	var opts []introspect.Option
	if len(cfg.Schemas) > 0 {
		opts = append(opts, introspect.WithSchemas(cfg.Schemas...))
	}
	if cfg.IncludeAllSchemas {
		opts = append(opts, introspect.WithAllSchemas())
	}
	if len(cfg.ExcludeTables) > 0 {
		opts = append(opts, introspect.WithExcludeTables(cfg.ExcludeTables...))
	}
	return opts
}
