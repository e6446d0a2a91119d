package introspect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lucasefe/dbmldoc/schema"
)

// Column is the type information information_schema.columns reports for
// one column.
type Column struct {
	// Schema is the schema of the table that owns the column.
	Schema string
	// DataType is the SQL data type, e.g. "integer" or "USER-DEFINED".
	DataType string
	// UDTName is the underlying type name, e.g. "int4", "_text" or an enum name.
	UDTName string
	// UDTSchema is the schema the underlying type lives in.
	UDTSchema        string
	CharMaxLength    sql.NullInt64
	NumericPrecision sql.NullInt64
	NumericScale     sql.NullInt64
}

// TypeMapper converts a column type to the field type used in the schema
// model. Implement this interface to customize type mapping behavior.
type TypeMapper interface {
	MapType(col Column) schema.FieldType
}

// PostgreSQLTypeMapper provides PostgreSQL to DBML type conversion.
// It supports custom type overrides via the CustomMappings field.
type PostgreSQLTypeMapper struct {
	// CustomMappings overrides the built-in mapping. Keys are PostgreSQL
	// type or udt names (case-insensitive), values are DBML types.
	CustomMappings map[string]string
}

// NewPostgreSQLTypeMapper creates a new TypeMapper with optional custom mappings.
//
// Example:
//
//	mapper := introspect.NewPostgreSQLTypeMapper(map[string]string{
//	    "citext": "varchar",
//	    "ltree":  "text",
//	})
func NewPostgreSQLTypeMapper(customMappings map[string]string) *PostgreSQLTypeMapper {
	return &PostgreSQLTypeMapper{CustomMappings: customMappings}
}

// MapType implements TypeMapper. Custom mappings win over MapPostgreSQLType
// and always produce an unqualified type.
func (m *PostgreSQLTypeMapper) MapType(col Column) schema.FieldType {
	for _, name := range []string{col.DataType, col.UDTName} {
		if mapped, ok := m.CustomMappings[strings.ToLower(name)]; ok {
			return schema.FieldType{Name: mapped}
		}
	}
	return MapPostgreSQLType(col)
}

// DefaultTypeMappings maps PostgreSQL type names, both the SQL spelling and
// the udt spelling, to DBML types.
var DefaultTypeMappings = map[string]string{
	"integer":                     "int",
	"int4":                        "int",
	"bigint":                      "bigint",
	"int8":                        "bigint",
	"smallint":                    "smallint",
	"int2":                        "smallint",
	"boolean":                     "boolean",
	"bool":                        "boolean",
	"text":                        "text",
	"character varying":           "varchar",
	"varchar":                     "varchar",
	"character":                   "char",
	"char":                        "char",
	"bpchar":                      "char",
	"numeric":                     "decimal",
	"decimal":                     "decimal",
	"real":                        "float",
	"float4":                      "float",
	"double precision":            "double",
	"float8":                      "double",
	"timestamp without time zone": "timestamp",
	"timestamp":                   "timestamp",
	"timestamp with time zone":    "timestamptz",
	"timestamptz":                 "timestamptz",
	"date":                        "date",
	"time without time zone":      "time",
	"time":                        "time",
	"time with time zone":         "timetz",
	"timetz":                      "timetz",
	"uuid":                        "uuid",
	"json":                        "json",
	"jsonb":                       "jsonb",
	"bytea":                       "binary",
}

// MapPostgreSQLType converts a PostgreSQL column type to a field type.
// Enums and other user-defined types keep their name, and carry their
// schema when it differs from the column's own schema. Arrays map their
// element type and append "[]". Unknown types pass through unchanged.
func MapPostgreSQLType(col Column) schema.FieldType {
	switch strings.ToLower(col.DataType) {
	case "user-defined":
		fieldType := schema.FieldType{Name: NormalizeCustomType(col.UDTName)}
		if col.UDTSchema != "" && col.UDTSchema != col.Schema && !isSystemSchema(col.UDTSchema) {
			fieldType.Schema = col.UDTSchema
		}
		return fieldType
	case "array":
		return schema.FieldType{Name: NormalizeArrayType(col.UDTName)}
	}

	return schema.FieldType{Name: withModifiers(NormalizeCustomType(col.DataType), col)}
}

// withModifiers appends the length or precision the column declares.
func withModifiers(name string, col Column) string {
	switch name {
	case "varchar", "char":
		if col.CharMaxLength.Valid {
			return fmt.Sprintf("%s(%d)", name, col.CharMaxLength.Int64)
		}
	case "decimal":
		if col.NumericPrecision.Valid && col.NumericScale.Valid {
			return fmt.Sprintf("decimal(%d,%d)", col.NumericPrecision.Int64, col.NumericScale.Int64)
		}
	}
	return name
}

// NormalizeArrayType converts a PostgreSQL array udt name such as "_int4"
// to a DBML array type such as "int[]".
func NormalizeArrayType(udtName string) string {
	return NormalizeCustomType(strings.TrimPrefix(udtName, "_")) + "[]"
}

// NormalizeCustomType translates built-in type names; any other name, such
// as an enum, is kept so it matches the enum documentation.
func NormalizeCustomType(typeName string) string {
	if mapped, ok := DefaultTypeMappings[strings.ToLower(strings.TrimSpace(typeName))]; ok {
		return mapped
	}
	return NormalizeTypeName(typeName)
}

// NormalizeTypeName trims a type name. An empty name becomes "text".
func NormalizeTypeName(typeName string) string {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return "text"
	}
	return typeName
}
