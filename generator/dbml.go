package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lucasefe/dbmldoc/schema"
)

var (
	plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	plainDefault    = regexp.MustCompile(`^(-?[0-9]+(\.[0-9]+)?|true|false|null)$`)
)

// GenerateDBML converts a Database into DBML source. It is used for
// databases that were introspected rather than parsed, so the documentation
// can still carry a source block. Output keeps the order of the input.
func GenerateDBML(db *schema.Database) ([]byte, error) {
	var builder strings.Builder

	if db.Name != "" || db.DatabaseType != "" || db.Note != nil {
		generateProject(&builder, db)
		builder.WriteString("\n")
	}

	for _, s := range db.Schemas {
		for _, e := range s.Enums {
			generateEnum(&builder, e, s.Name)
			builder.WriteString("\n")
		}
	}

	for _, s := range db.Schemas {
		for _, table := range s.Tables {
			generateTable(&builder, table, s.Name)
			builder.WriteString("\n")
		}
	}

	for _, s := range db.Schemas {
		for _, ref := range s.Refs {
			if err := generateReference(&builder, ref); err != nil {
				return nil, err
			}
		}
	}

	for _, s := range db.Schemas {
		for _, group := range s.TableGroups {
			builder.WriteString("\n")
			generateTableGroup(&builder, group, s.Name)
		}
	}

	return []byte(builder.String()), nil
}

// GenerateDBMLString is a convenience wrapper that returns the DBML as a string.
func GenerateDBMLString(db *schema.Database) (string, error) {
	result, err := GenerateDBML(db)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func generateProject(builder *strings.Builder, db *schema.Database) {
	name := db.Name
	if name == "" {
		name = fallbackTitle
	}
	builder.WriteString(fmt.Sprintf("Project %s {\n", quoteIdentifier(name)))
	if db.DatabaseType != "" {
		builder.WriteString(fmt.Sprintf("  database_type: %s\n", quoteString(db.DatabaseType)))
	}
	if db.Note != nil {
		builder.WriteString(fmt.Sprintf("  Note: %s\n", quoteString(*db.Note)))
	}
	builder.WriteString("}\n")
}

func generateEnum(builder *strings.Builder, e schema.Enum, schemaName string) {
	owner := e.Schema
	if owner == "" {
		owner = schemaName
	}
	builder.WriteString(fmt.Sprintf("Enum %s {\n", qualifiedIdentifier(owner, e.Name)))
	for _, v := range e.Values {
		builder.WriteString("  " + quoteIdentifier(v.Name))
		if v.Note != nil {
			builder.WriteString(fmt.Sprintf(" [note: %s]", quoteString(*v.Note)))
		}
		builder.WriteString("\n")
	}
	if e.Note != nil {
		builder.WriteString(fmt.Sprintf("  Note: %s\n", quoteString(*e.Note)))
	}
	builder.WriteString("}\n")
}

func generateTable(builder *strings.Builder, table schema.Table, schemaName string) {
	owner := table.Schema
	if owner == "" {
		owner = schemaName
	}
	header := qualifiedIdentifier(owner, table.Name)
	if table.Alias != nil {
		header += " as " + quoteIdentifier(*table.Alias)
	}
	builder.WriteString(fmt.Sprintf("Table %s {\n", header))

	for _, field := range table.Fields {
		generateField(builder, field)
	}

	if len(table.Indexes) > 0 {
		builder.WriteString("\n")
		generateIndexes(builder, table.Indexes)
	}

	if table.Note != nil {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("  Note: %s\n", quoteString(*table.Note)))
	}

	builder.WriteString("}\n")
}

func generateField(builder *strings.Builder, field schema.Field) {
	typeName := quoteType(field.Type.Name)
	if field.Type.Schema != "" {
		typeName = quoteIdentifier(field.Type.Schema) + "." + typeName
	}
	builder.WriteString(fmt.Sprintf("  %s %s", quoteIdentifier(field.Name), typeName))

	var attributes []string

	if field.PrimaryKey {
		attributes = append(attributes, "pk")
	}

	if field.Unique {
		attributes = append(attributes, "unique")
	}

	if field.NotNull && !field.PrimaryKey {
		attributes = append(attributes, "not null")
	}

	if field.Increment {
		attributes = append(attributes, "increment")
	}

	if field.Default != nil {
		defaultVal := *field.Default
		if plainDefault.MatchString(defaultVal) {
			attributes = append(attributes, fmt.Sprintf("default: %s", defaultVal))
		} else {
			attributes = append(attributes, fmt.Sprintf("default: `%s`", defaultVal))
		}
	}

	if field.Note != nil {
		attributes = append(attributes, fmt.Sprintf("note: %s", quoteString(*field.Note)))
	}

	if len(attributes) > 0 {
		builder.WriteString(fmt.Sprintf(" [%s]", strings.Join(attributes, ", ")))
	}

	builder.WriteString("\n")
}

func generateIndexes(builder *strings.Builder, indexes []schema.Index) {
	builder.WriteString("  indexes {\n")
	for _, index := range indexes {
		columns := make([]string, 0, len(index.Columns))
		for _, col := range index.Columns {
			if col.Expression {
				columns = append(columns, "`"+col.Value+"`")
			} else {
				columns = append(columns, quoteIdentifier(col.Value))
			}
		}

		var entry string
		if len(columns) == 1 {
			entry = columns[0]
		} else {
			entry = fmt.Sprintf("(%s)", strings.Join(columns, ", "))
		}

		var attributes []string
		if index.PrimaryKey {
			attributes = append(attributes, "pk")
		}
		if index.Unique {
			attributes = append(attributes, "unique")
		}
		if index.Type != "" {
			attributes = append(attributes, fmt.Sprintf("type: %s", index.Type))
		}
		if index.Name != "" {
			attributes = append(attributes, fmt.Sprintf("name: %s", quoteString(index.Name)))
		}
		if index.Note != nil {
			attributes = append(attributes, fmt.Sprintf("note: %s", quoteString(*index.Note)))
		}

		if len(attributes) > 0 {
			builder.WriteString(fmt.Sprintf("    %s [%s]\n", entry, strings.Join(attributes, ", ")))
		} else {
			builder.WriteString(fmt.Sprintf("    %s\n", entry))
		}
	}
	builder.WriteString("  }\n")
}

func generateReference(builder *strings.Builder, ref schema.Ref) error {
	if len(ref.Endpoints) != 2 {
		return &StructuralError{
			Subject: refLabel(ref),
			Reason:  fmt.Sprintf("expected 2 endpoints, got %d", len(ref.Endpoints)),
		}
	}

	from, to := ref.Endpoints[0], ref.Endpoints[1]

	builder.WriteString("Ref")
	if ref.Name != "" {
		builder.WriteString(" " + quoteIdentifier(ref.Name))
	}
	builder.WriteString(fmt.Sprintf(": %s %s %s", endpointReference(from), relationOperator(from.Relation, to.Relation), endpointReference(to)))

	var refAttributes []string
	if ref.OnDelete != "" && !strings.EqualFold(ref.OnDelete, "NO ACTION") {
		refAttributes = append(refAttributes, fmt.Sprintf("delete: %s", strings.ToLower(ref.OnDelete)))
	}
	if ref.OnUpdate != "" && !strings.EqualFold(ref.OnUpdate, "NO ACTION") {
		refAttributes = append(refAttributes, fmt.Sprintf("update: %s", strings.ToLower(ref.OnUpdate)))
	}

	if len(refAttributes) > 0 {
		builder.WriteString(fmt.Sprintf(" [%s]", strings.Join(refAttributes, ", ")))
	}

	builder.WriteString("\n")
	return nil
}

func generateTableGroup(builder *strings.Builder, group schema.TableGroup, schemaName string) {
	owner := group.Schema
	if owner == "" {
		owner = schemaName
	}
	builder.WriteString(fmt.Sprintf("TableGroup %s {\n", qualifiedIdentifier(owner, group.Name)))
	for _, member := range group.Tables {
		builder.WriteString("  " + qualifiedIdentifier(member.Schema, member.Table) + "\n")
	}
	if group.Note != nil {
		builder.WriteString(fmt.Sprintf("  Note: %s\n", quoteString(*group.Note)))
	}
	builder.WriteString("}\n")
}

func endpointReference(ep schema.Endpoint) string {
	table := qualifiedIdentifier(ep.Schema, ep.Table)
	if len(ep.Fields) == 1 {
		return fmt.Sprintf("%s.%s", table, quoteIdentifier(ep.Fields[0]))
	}

	fields := make([]string, 0, len(ep.Fields))
	for _, f := range ep.Fields {
		fields = append(fields, quoteIdentifier(f))
	}
	return fmt.Sprintf("%s.(%s)", table, strings.Join(fields, ", "))
}

// relationOperator maps a pair of cardinality markers to a DBML operator.
func relationOperator(from, to string) string {
	switch {
	case from == "*" && to == "*":
		return "<>"
	case from == "*":
		return ">"
	case to == "*":
		return "<"
	default:
		return "-"
	}
}

// GetQualifiedTableName returns a table name with schema prefix if not "public".
// For the public schema, returns just the table name.
func GetQualifiedTableName(tableName, schemaName string) string {
	if schemaName != "" && schemaName != schema.DefaultSchemaName {
		return fmt.Sprintf("%s.%s", schemaName, tableName)
	}
	return tableName
}

func qualifiedIdentifier(schemaName, name string) string {
	if schemaName != "" && schemaName != schema.DefaultSchemaName {
		return quoteIdentifier(schemaName) + "." + quoteIdentifier(name)
	}
	return quoteIdentifier(name)
}

func quoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// quoteType leaves sized and array types such as varchar(255) or int[] alone.
func quoteType(name string) string {
	if !strings.ContainsAny(name, " \t\"") {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

func quoteString(value string) string {
	if strings.Contains(value, "\n") {
		return "'''" + strings.ReplaceAll(value, "'''", `\'''`) + "'''"
	}
	value = strings.ReplaceAll(value, `\`, `\\`)
	return "'" + strings.ReplaceAll(value, "'", `\'`) + "'"
}
