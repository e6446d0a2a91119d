// Package generator turns a schema.Database into Markdown documentation and,
// for databases that have no DBML text of their own, into DBML source.
//
// Basic usage:
//
//	output, err := generator.Generate(db)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(output)
//
// The walk is deterministic: the same Database always yields the same node
// sequence and the same text. Nothing is sorted; schemas, enums, tables,
// fields, indexes and refs appear in source order.
package generator

import (
	"fmt"
	"strings"

	"github.com/lucasefe/dbmldoc/markdown"
	"github.com/lucasefe/dbmldoc/schema"
)

const (
	// fallbackTitle is used when the database has no name.
	fallbackTitle = "DBML"
	// titleSuffix follows the database name in the document title.
	titleSuffix = " documentation"

	enumsHeading        = "Enumerations"
	defaultGroupHeading = "Default Table Group"
	indicesHeading      = "Indices"
	referencesHeading   = "References"
	sourceHeading       = "Source"
)

var (
	enumColumns  = []string{"enum value", "note"}
	fieldColumns = []string{"", "name", "type", "unique", "not null", "default", "increment", "note"}
)

// Layout decides heading depth for one schema.
type Layout int

const (
	// LayoutFlat renders tables and enums at level 3; the schema has no table groups.
	LayoutFlat Layout = iota
	// LayoutGrouped renders tables and enums at level 4 under level-3 group headings.
	LayoutGrouped
)

// LayoutFor resolves the layout of a schema.
func LayoutFor(s *schema.Schema) Layout {
	if len(s.TableGroups) > 0 {
		return LayoutGrouped
	}
	return LayoutFlat
}

// itemLevel is the heading level of tables and enums.
func (l Layout) itemLevel() int {
	if l == LayoutGrouped {
		return 4
	}
	return 3
}

// Generator renders documentation. It holds configuration only, so one
// Generator may serve concurrent calls as long as inputs are not mutated.
type Generator struct {
	opts *options
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Generator{opts: o}
}

// Generate converts a Database into Markdown documentation bytes.
func Generate(db *schema.Database, opts ...Option) ([]byte, error) {
	return New(opts...).Generate(db)
}

// GenerateString is a convenience wrapper that returns the documentation as a string.
func GenerateString(db *schema.Database, opts ...Option) (string, error) {
	return New(opts...).GenerateString(db)
}

// Generate renders db and returns the Markdown text.
func (g *Generator) Generate(db *schema.Database) ([]byte, error) {
	text, err := g.GenerateString(db)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// GenerateString renders db and returns the Markdown text as a string.
func (g *Generator) GenerateString(db *schema.Database) (string, error) {
	nodes, err := g.Nodes(db)
	if err != nil {
		return "", err
	}

	text, err := markdown.Render(nodes)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return text, nil
}

// Nodes walks db and returns the document nodes without rendering them.
// It fails with a *StructuralError before emitting anything if a ref does
// not have exactly two endpoints.
func (g *Generator) Nodes(db *schema.Database) ([]markdown.Node, error) {
	if err := validateRefs(db); err != nil {
		return nil, err
	}

	w := &walk{
		opts:        g.opts,
		lookup:      schema.NewLookup(db),
		schemaCount: len(db.Schemas),
		grouped:     make(map[schema.TableKey]string),
	}

	out := markdown.NewCollector()

	title := db.Name
	if title == "" {
		title = fallbackTitle
	}
	out.Append(markdown.Heading{Level: 1, Text: title + titleSuffix})
	out.AppendOptionalText(db.Note)

	for i := range db.Schemas {
		section, err := w.schema(&db.Schemas[i])
		if err != nil {
			return nil, err
		}
		out.Extend(section)
	}

	if g.opts.source != nil {
		out.Append(markdown.Heading{Level: 2, Text: sourceHeading})
		out.AppendCodeBlock(*g.opts.source, "dbml")
	}

	return out.Nodes(), nil
}

func validateRefs(db *schema.Database) error {
	for _, s := range db.Schemas {
		for _, ref := range s.Refs {
			if len(ref.Endpoints) != 2 {
				return &StructuralError{
					Subject: refLabel(ref),
					Reason:  fmt.Sprintf("expected 2 endpoints, got %d", len(ref.Endpoints)),
				}
			}
		}
	}
	return nil
}

// walk is the state of one generation pass.
type walk struct {
	opts        *options
	lookup      *schema.Lookup
	schemaCount int
	// grouped maps a table to the group that already rendered it.
	grouped map[schema.TableKey]string
}

func (w *walk) schema(s *schema.Schema) (*markdown.Collector, error) {
	out := markdown.NewCollector()
	schemaName := schema.NormalizeSchemaName(s.Name)

	if w.schemaCount > 1 {
		out.Append(markdown.Heading{Level: 2, Text: schemaName})
		out.AppendOptionalText(s.Note)
	}

	layout := LayoutFor(s)

	if len(s.Enums) > 0 {
		if layout == LayoutGrouped {
			out.Append(markdown.Heading{Level: 3, Text: enumsHeading})
		}
		for _, e := range s.Enums {
			out.Extend(w.enum(e, layout.itemLevel()))
		}
	}

	if layout == LayoutFlat {
		for i := range s.Tables {
			section, err := w.table(tableKey(schemaName, &s.Tables[i]), &s.Tables[i], layout.itemLevel())
			if err != nil {
				return nil, err
			}
			out.Extend(section)
		}
		return out, nil
	}

	for _, group := range s.TableGroups {
		out.Append(markdown.Heading{Level: 3, Text: group.Name})
		out.AppendOptionalText(group.Note)

		for _, member := range group.Tables {
			key := schema.TableKey{Schema: schema.NormalizeSchemaName(member.Schema), Table: member.Table}
			t, err := w.claim(schemaName, group.Name, key)
			if err != nil {
				return nil, err
			}

			section, err := w.table(key, t, layout.itemLevel())
			if err != nil {
				return nil, err
			}
			out.Extend(section)
		}
	}

	out.Append(markdown.Heading{Level: 3, Text: defaultGroupHeading})
	for i := range s.Tables {
		key := tableKey(schemaName, &s.Tables[i])
		if _, ok := w.grouped[key]; ok {
			continue
		}
		section, err := w.table(key, &s.Tables[i], layout.itemLevel())
		if err != nil {
			return nil, err
		}
		out.Extend(section)
	}

	return out, nil
}

// claim records key as rendered by group. A table may belong to one group
// only, and only to a group of its own schema.
func (w *walk) claim(schemaName, group string, key schema.TableKey) (*schema.Table, error) {
	subject := "table group " + group

	if key.Schema != schemaName {
		return nil, &StructuralError{
			Subject: subject,
			Reason:  fmt.Sprintf("table %s is outside schema %s", key, schemaName),
		}
	}

	t, ok := w.lookup.Table(key)
	if !ok {
		return nil, &StructuralError{Subject: subject, Reason: fmt.Sprintf("unknown table %s", key)}
	}

	if prev, dup := w.grouped[key]; dup {
		return nil, &StructuralError{
			Subject: subject,
			Reason:  fmt.Sprintf("table %s already belongs to table group %s", key, prev),
		}
	}
	w.grouped[key] = group

	return t, nil
}

func (w *walk) enum(e schema.Enum, level int) *markdown.Collector {
	out := markdown.NewCollector()
	out.Append(markdown.Heading{Level: level, Text: e.Name})

	rows := make([][]string, 0, len(e.Values))
	for _, v := range e.Values {
		rows = append(rows, []string{v.Name, optional(v.Note)})
	}
	out.Append(markdown.Table{Columns: enumColumns, Rows: rows})
	out.AppendOptionalText(e.Note)

	return out
}

func (w *walk) table(key schema.TableKey, t *schema.Table, level int) (*markdown.Collector, error) {
	out := markdown.NewCollector()

	title := t.Name
	if t.Alias != nil {
		title = fmt.Sprintf("%s (%s)", t.Name, *t.Alias)
	}
	out.Append(markdown.Heading{Level: level, Text: title})
	out.AppendOptionalText(t.Note)

	rows := make([][]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		rows = append(rows, []string{
			w.marker(key, f),
			f.Name,
			f.Type.String(),
			flag(f.Unique),
			flag(f.NotNull),
			optional(f.Default),
			flag(f.Increment),
			optional(f.Note),
		})
	}
	out.Append(markdown.Table{Columns: fieldColumns, Rows: rows})

	var indexes []string
	for _, idx := range t.Indexes {
		if idx.PrimaryKey {
			continue
		}
		indexes = append(indexes, indexEntry(idx))
	}
	if len(indexes) > 0 {
		out.Append(markdown.Heading{Level: 5, Text: indicesHeading})
		out.Append(markdown.OrderedList{Items: indexes})
	}

	refs, err := w.references(key)
	if err != nil {
		return nil, err
	}
	if len(refs) > 0 {
		out.Append(markdown.Heading{Level: 5, Text: referencesHeading})
		for _, line := range refs {
			out.Append(markdown.Text(line))
		}
	}

	return out, nil
}

func (w *walk) marker(key schema.TableKey, f schema.Field) string {
	if f.PrimaryKey {
		return w.opts.primaryKeyGlyph
	}
	if w.lookup.IsLinked(schema.FieldKey{Schema: key.Schema, Table: key.Table, Field: f.Name}) {
		return w.opts.linkGlyph
	}
	return ""
}

// references returns one relation line per ref touching key, written from
// the point of view of key's endpoint.
func (w *walk) references(key schema.TableKey) ([]string, error) {
	var lines []string

	for _, ref := range w.lookup.Refs() {
		if len(ref.Endpoints) != 2 {
			return nil, &StructuralError{
				Subject: refLabel(ref),
				Reason:  fmt.Sprintf("expected 2 endpoints, got %d", len(ref.Endpoints)),
			}
		}

		matched := -1
		for i, ep := range ref.Endpoints {
			if ep.TableKey() != key {
				continue
			}
			if matched >= 0 {
				return nil, &StructuralError{
					Subject: refLabel(ref),
					Reason:  fmt.Sprintf("both endpoints match table %s", key),
				}
			}
			matched = i
		}
		if matched < 0 {
			continue
		}

		this, other := ref.Endpoints[matched], ref.Endpoints[1-matched]
		lines = append(lines, fmt.Sprintf("%s  %s -- %s  %s",
			endpointIdentifier(this), this.Relation, other.Relation, endpointIdentifier(other)))
	}

	return lines, nil
}

func indexEntry(idx schema.Index) string {
	var tokens []string
	if idx.Unique {
		tokens = append(tokens, "UNIQUE")
	}
	if idx.Type != "" {
		tokens = append(tokens, idx.Type)
	}
	tokens = append(tokens, "INDEX")

	columns := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		if col.Expression {
			columns = append(columns, "`"+col.Value+"`")
		} else {
			columns = append(columns, col.Value)
		}
	}

	return strings.Join(tokens, " ") + " (" + strings.Join(columns, ", ") + ")"
}

// endpointIdentifier returns [schema.]table.field, or [schema.]table[f1,f2]
// for composite keys.
func endpointIdentifier(ep schema.Endpoint) string {
	name := GetQualifiedTableName(ep.Table, ep.Schema)
	if len(ep.Fields) == 1 {
		return name + "." + ep.Fields[0]
	}
	return name + "[" + strings.Join(ep.Fields, ",") + "]"
}

func tableKey(schemaName string, t *schema.Table) schema.TableKey {
	if t.Schema != "" {
		return schema.TableKey{Schema: t.Schema, Table: t.Name}
	}
	return schema.TableKey{Schema: schemaName, Table: t.Name}
}

func optional(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func flag(set bool) string {
	if set {
		return "true"
	}
	return ""
}
