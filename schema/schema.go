// Package schema defines the data structures for representing a parsed DBML
// schema collection. Values are read-only once built: the parser and the
// introspector produce them, the generator only reads them.
package schema

// DefaultSchemaName is the schema assumed when none is given.
const DefaultSchemaName = "public"

// Database is the top-level container returned by the parser and the introspector.
type Database struct {
	// Name is the project name, empty when the source declares none.
	Name string
	// Note is the project-level note, or nil if none.
	Note *string
	// DatabaseType is the declared database engine (e.g., "PostgreSQL").
	DatabaseType string
	// Schemas contains every schema in source order.
	Schemas []Schema
}

// Schema is one namespace of enums, tables, table groups and refs.
type Schema struct {
	// Name is the schema name (e.g., "public").
	Name string
	// Note is the schema note, or nil if none.
	Note *string
	// Enums contains the enums declared in this schema.
	Enums []Enum
	// Tables contains the tables declared in this schema, in source order.
	Tables []Table
	// TableGroups contains the table groups declared in this schema.
	TableGroups []TableGroup
	// Refs contains the relationships whose first endpoint lives in this schema.
	Refs []Ref
}

// Enum is a named set of values.
type Enum struct {
	Name   string
	Schema string
	Note   *string
	Values []EnumValue
}

// EnumValue is one value of an Enum.
type EnumValue struct {
	Name string
	Note *string
}

// Table represents a database table with its fields and indexes.
type Table struct {
	// Name is the table name without schema qualification.
	Name string
	// Schema is the name of the schema owning this table.
	Schema string
	// Alias is the short name declared with "as", or nil if none.
	Alias *string
	// Note is the table note, or nil if none.
	Note *string
	// Fields contains all fields in declaration order.
	Fields []Field
	// Indexes contains all indexes, including primary-key indexes.
	Indexes []Index
}

// Key returns the identifier of the table.
func (t Table) Key() TableKey {
	return TableKey{Schema: NormalizeSchemaName(t.Schema), Table: t.Name}
}

// Field represents a table column.
type Field struct {
	// Name is the field name.
	Name string
	// Type is the declared type.
	Type FieldType
	// PrimaryKey indicates whether the field is (part of) the primary key.
	PrimaryKey bool
	// Unique indicates a unique constraint on this field alone.
	Unique bool
	// NotNull indicates the field rejects NULL values.
	NotNull bool
	// Increment indicates an auto-increment field.
	Increment bool
	// Default is the raw default value, or nil if none.
	Default *string
	// Note is the field note, or nil if none.
	Note *string
}

// FieldType is a type name with the optional schema owning a user-defined type.
type FieldType struct {
	Name   string
	Schema string
}

// String returns the type name, qualified when it names a schema.
func (t FieldType) String() string {
	if t.Schema != "" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

// Index represents an index on one or more columns or expressions.
type Index struct {
	// Name is the index name, empty when not declared.
	Name string
	// Columns lists the indexed entries in order.
	Columns []IndexColumn
	// Unique indicates whether this is a unique index.
	Unique bool
	// PrimaryKey indicates a (composite) primary-key index.
	PrimaryKey bool
	// Type is the index method (e.g., "btree", "hash"), empty when not declared.
	Type string
	// Note is the index note, or nil if none.
	Note *string
}

// IndexColumn is either a column name or a raw expression.
type IndexColumn struct {
	Value      string
	Expression bool
}

// Endpoint is one side of a Ref.
type Endpoint struct {
	// Schema is the schema of the table, empty meaning "public".
	Schema string
	// Table is the table name.
	Table string
	// Fields lists the key fields; more than one for composite keys.
	Fields []string
	// Relation is the cardinality marker: "1" or "*".
	Relation string
}

// TableKey returns the identifier of the endpoint's table.
func (e Endpoint) TableKey() TableKey {
	return TableKey{Schema: NormalizeSchemaName(e.Schema), Table: e.Table}
}

// Ref represents a relationship between two tables.
type Ref struct {
	// Name is the ref name, empty when not declared.
	Name string
	// Endpoints holds both sides of the relationship.
	Endpoints []Endpoint
	// OnDelete is the referential action on delete (e.g., "cascade").
	OnDelete string
	// OnUpdate is the referential action on update.
	OnUpdate string
}

// TableGroup is a named, non-overlapping collection of tables.
type TableGroup struct {
	Name   string
	Schema string
	Note   *string
	Tables []TableKey
}

// TableKey identifies a table by schema and name.
type TableKey struct {
	Schema string
	Table  string
}

// String returns "schema.table".
func (k TableKey) String() string {
	return k.Schema + "." + k.Table
}

// FieldKey identifies a field by schema, table and name.
type FieldKey struct {
	Schema string
	Table  string
	Field  string
}

// NormalizeSchemaName maps an empty schema name to DefaultSchemaName.
func NormalizeSchemaName(name string) string {
	if name == "" {
		return DefaultSchemaName
	}
	return name
}

// StringPtr returns a pointer to s. It is a convenience for optional notes.
func StringPtr(s string) *string {
	return &s
}
