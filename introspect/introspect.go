// Package introspect provides database introspection capabilities for PostgreSQL.
// It extracts schema information including enums, tables, columns, primary keys,
// foreign keys, indexes and comments, and returns it as a schema.Database that
// can be documented like a parsed DBML file.
//
// Basic usage:
//
//	db, err := introspect.Database(ctx, conn,
//	    introspect.WithSchemas("public", "auth"),
//	    introspect.WithExcludeTables("migrations"),
//	)
//
// With custom type mapping:
//
//	mapper := introspect.NewPostgreSQLTypeMapper(map[string]string{
//	    "citext": "varchar",
//	})
//	db, err := introspect.Database(ctx, conn, introspect.WithTypeMapper(mapper))
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lucasefe/dbmldoc/schema"

	_ "github.com/lib/pq"
)

// DatabaseType is reported as the database_type of introspected databases.
const DatabaseType = "PostgreSQL"

// Database introspects a PostgreSQL database and returns its schemas.
// Use options to customize which schemas and tables to include.
func Database(ctx context.Context, db *sql.DB, opts ...Option) (*schema.Database, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var name string
	if err := db.QueryRowContext(ctx, `SELECT current_database()`).Scan(&name); err != nil {
		return nil, fmt.Errorf("failed to get database name: %w", err)
	}

	var schemaNames []string
	if o.includeAllSchemas {
		schemas, err := getAllSchemas(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to get schemas: %w", err)
		}
		schemaNames = schemas
	} else {
		schemaNames = o.schemas
	}

	result, err := introspectSchemas(ctx, db, schemaNames, o.typeMapper)
	if err != nil {
		return nil, err
	}
	result.Name = name
	result.DatabaseType = DatabaseType

	if len(o.excludeTables) > 0 {
		result = schema.FilterTables(result, o.excludeTables)
	}

	return result, nil
}

// FromConnectionString connects to a PostgreSQL database and introspects it.
// This is a convenience function that handles connection management.
func FromConnectionString(ctx context.Context, connStr string, opts ...Option) (*schema.Database, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return Database(ctx, db, opts...)
}

func introspectSchemas(ctx context.Context, db *sql.DB, schemaNames []string, mapper TypeMapper) (*schema.Database, error) {
	if len(schemaNames) == 0 {
		schemaNames = []string{schema.DefaultSchemaName}
	}
	if mapper == nil {
		mapper = NewPostgreSQLTypeMapper(nil)
	}

	result := &schema.Database{}

	for _, schemaName := range schemaNames {
		s := schema.Schema{Name: schemaName}

		note, err := getSchemaNote(ctx, db, schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to get comment for schema %s: %w", schemaName, err)
		}
		s.Note = note

		enums, err := getEnums(ctx, db, schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to get enums for schema %s: %w", schemaName, err)
		}
		s.Enums = enums

		tables, err := getTables(ctx, db, schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to get tables for schema %s: %w", schemaName, err)
		}

		for _, table := range tables {
			qualified := schemaName + "." + table.Name

			fields, err := getColumns(ctx, db, schemaName, table.Name, mapper)
			if err != nil {
				return nil, fmt.Errorf("failed to get columns for table %s: %w", qualified, err)
			}
			table.Fields = fields

			primaryKeys, err := getPrimaryKeys(ctx, db, schemaName, table.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to get primary keys for table %s: %w", qualified, err)
			}
			markPrimaryKeys(&table, primaryKeys)

			indexes, err := getIndexes(ctx, db, schemaName, table.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to get indexes for table %s: %w", qualified, err)
			}
			table.Indexes = indexes
			markUniqueFields(&table)

			refs, err := getForeignKeys(ctx, db, schemaName, table.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", qualified, err)
			}
			for i := range refs {
				if isUniqueKey(&table, refs[i].Endpoints[0].Fields) {
					refs[i].Endpoints[0].Relation = "1"
				}
			}
			s.Refs = append(s.Refs, refs...)

			s.Tables = append(s.Tables, table)
		}

		result.Schemas = append(result.Schemas, s)
	}

	return result, nil
}

// markPrimaryKeys flags primary-key fields. A composite primary key is also
// recorded as a pk index so that the key stays visible as a unit.
func markPrimaryKeys(table *schema.Table, primaryKeys []string) {
	for i := range table.Fields {
		for _, pk := range primaryKeys {
			if table.Fields[i].Name == pk {
				table.Fields[i].PrimaryKey = true
				table.Fields[i].NotNull = true
				break
			}
		}
	}

	if len(primaryKeys) > 1 {
		index := schema.Index{PrimaryKey: true}
		for _, pk := range primaryKeys {
			index.Columns = append(index.Columns, schema.IndexColumn{Value: pk})
		}
		table.Indexes = append([]schema.Index{index}, table.Indexes...)
	}
}

// markUniqueFields flags fields covered by a single-column unique index.
func markUniqueFields(table *schema.Table) {
	for _, index := range table.Indexes {
		if !index.Unique || index.PrimaryKey || len(index.Columns) != 1 || index.Columns[0].Expression {
			continue
		}
		for i := range table.Fields {
			if table.Fields[i].Name == index.Columns[0].Value {
				table.Fields[i].Unique = true
			}
		}
	}
}

// isUniqueKey reports whether columns are the table's whole primary key or
// a single unique field.
func isUniqueKey(table *schema.Table, columns []string) bool {
	var primaryKeys []string
	for _, f := range table.Fields {
		if f.PrimaryKey {
			primaryKeys = append(primaryKeys, f.Name)
		}
	}
	if len(primaryKeys) > 0 && strings.Join(primaryKeys, ",") == strings.Join(columns, ",") {
		return true
	}
	if len(columns) != 1 {
		return false
	}
	for _, f := range table.Fields {
		if f.Name == columns[0] && f.Unique {
			return true
		}
	}
	return false
}

func getAllSchemas(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
			AND schema_name NOT LIKE 'pg_temp_%'
			AND schema_name NOT LIKE 'pg_toast_temp_%'
		ORDER BY schema_name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var schemaName string
		if err := rows.Scan(&schemaName); err != nil {
			return nil, err
		}
		schemas = append(schemas, schemaName)
	}

	return schemas, rows.Err()
}

func getSchemaNote(ctx context.Context, db *sql.DB, schemaName string) (*string, error) {
	query := `
		SELECT obj_description(n.oid, 'pg_namespace')
		FROM pg_namespace n
		WHERE n.nspname = $1
	`

	var note sql.NullString
	err := db.QueryRowContext(ctx, query, schemaName).Scan(&note)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return nullableString(note), nil
}

func getEnums(ctx context.Context, db *sql.DB, schemaName string) ([]schema.Enum, error) {
	query := `
		SELECT t.typname, e.enumlabel, obj_description(t.oid, 'pg_type')
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := db.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []schema.Enum
	for rows.Next() {
		var typeName, label string
		var note sql.NullString
		if err := rows.Scan(&typeName, &label, &note); err != nil {
			return nil, err
		}

		if len(enums) == 0 || enums[len(enums)-1].Name != typeName {
			enums = append(enums, schema.Enum{Name: typeName, Schema: schemaName, Note: nullableString(note)})
		}
		last := &enums[len(enums)-1]
		last.Values = append(last.Values, schema.EnumValue{Name: label})
	}

	return enums, rows.Err()
}

func getTables(ctx context.Context, db *sql.DB, schemaName string) ([]schema.Table, error) {
	query := `
		SELECT c.relname, obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'p') AND NOT c.relispartition
		ORDER BY c.relname
	`

	rows, err := db.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var tableName string
		var note sql.NullString
		if err := rows.Scan(&tableName, &note); err != nil {
			return nil, err
		}
		tables = append(tables, schema.Table{
			Name:   tableName,
			Schema: schemaName,
			Note:   nullableString(note),
		})
	}

	return tables, rows.Err()
}

func getColumns(ctx context.Context, db *sql.DB, schemaName, tableName string, mapper TypeMapper) ([]schema.Field, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_nullable,
			c.column_default,
			COALESCE(c.udt_name, c.data_type) as udt_name,
			c.udt_schema,
			c.is_identity,
			col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []schema.Field
	for rows.Next() {
		var field schema.Field
		var dataType string
		var charMaxLength, numericPrecision, numericScale sql.NullInt64
		var isNullable string
		var columnDefault sql.NullString
		var udtName, udtSchema string
		var isIdentity string
		var note sql.NullString

		err := rows.Scan(
			&field.Name,
			&dataType,
			&charMaxLength,
			&numericPrecision,
			&numericScale,
			&isNullable,
			&columnDefault,
			&udtName,
			&udtSchema,
			&isIdentity,
			&note,
		)
		if err != nil {
			return nil, err
		}

		field.Type = mapper.MapType(Column{
			Schema:           schemaName,
			DataType:         dataType,
			UDTName:          udtName,
			UDTSchema:        udtSchema,
			CharMaxLength:    charMaxLength,
			NumericPrecision: numericPrecision,
			NumericScale:     numericScale,
		})
		field.NotNull = isNullable == "NO"
		field.Note = nullableString(note)

		switch {
		case isIdentity == "YES":
			field.Increment = true
		case columnDefault.Valid && strings.HasPrefix(columnDefault.String, "nextval("):
			field.Increment = true
		case columnDefault.Valid:
			field.Default = &columnDefault.String
		}

		fields = append(fields, field)
	}

	return fields, rows.Err()
}

func getPrimaryKeys(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND kcu.table_schema = $1
			AND kcu.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var primaryKeys []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return nil, err
		}
		primaryKeys = append(primaryKeys, columnName)
	}

	return primaryKeys, rows.Err()
}

func getIndexes(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.indexname,
			array_agg(a.attname ORDER BY array_position(idx.indkey::int[], a.attnum)) as columns,
			idx.indisunique,
			am.amname
		FROM pg_indexes i
		JOIN pg_class c ON c.relname = i.tablename
		JOIN pg_namespace n ON n.oid = c.relnamespace AND n.nspname = i.schemaname
		JOIN pg_class ic ON ic.relname = i.indexname AND ic.relnamespace = n.oid
		JOIN pg_index idx ON idx.indexrelid = ic.oid AND idx.indrelid = c.oid
		JOIN pg_am am ON am.oid = ic.relam
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(idx.indkey)
		WHERE n.nspname = $1 AND i.tablename = $2
			AND NOT idx.indisprimary
		GROUP BY i.indexname, idx.indisunique, am.amname
		ORDER BY i.indexname
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var index schema.Index
		var columnsArray string
		var method string

		err := rows.Scan(&index.Name, &columnsArray, &index.Unique, &method)
		if err != nil {
			return nil, err
		}

		columnsArray = strings.Trim(columnsArray, "{}")
		for _, column := range strings.Split(columnsArray, ",") {
			index.Columns = append(index.Columns, schema.IndexColumn{Value: strings.Trim(column, `"`)})
		}
		if method != "btree" {
			index.Type = method
		}

		indexes = append(indexes, index)
	}

	return indexes, rows.Err()
}

// getForeignKeys returns one ref per foreign key constraint of the table.
// Composite keys keep their column order.
func getForeignKeys(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]schema.Ref, error) {
	query := `
		SELECT
			rc.constraint_name,
			kcu1.column_name,
			kcu2.table_schema AS foreign_table_schema,
			kcu2.table_name AS foreign_table_name,
			kcu2.column_name AS foreign_column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu1
			ON kcu1.constraint_name = rc.constraint_name
			AND kcu1.table_schema = rc.constraint_schema
		JOIN information_schema.key_column_usage kcu2
			ON kcu2.constraint_name = rc.unique_constraint_name
			AND kcu2.table_schema = rc.unique_constraint_schema
			AND kcu2.ordinal_position = kcu1.position_in_unique_constraint
		WHERE kcu1.table_schema = $1 AND kcu1.table_name = $2
		ORDER BY rc.constraint_name, kcu1.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []schema.Ref
	for rows.Next() {
		var constraintName, fromColumn, toSchema, toTable, toColumn, onDelete, onUpdate string

		err := rows.Scan(
			&constraintName,
			&fromColumn,
			&toSchema,
			&toTable,
			&toColumn,
			&onDelete,
			&onUpdate,
		)
		if err != nil {
			return nil, err
		}

		if len(refs) == 0 || refs[len(refs)-1].Name != constraintName {
			refs = append(refs, schema.Ref{
				Name: constraintName,
				Endpoints: []schema.Endpoint{
					{Schema: schemaName, Table: tableName, Relation: "*"},
					{Schema: toSchema, Table: toTable, Relation: "1"},
				},
				OnDelete: onDelete,
				OnUpdate: onUpdate,
			})
		}

		last := &refs[len(refs)-1]
		last.Endpoints[0].Fields = append(last.Endpoints[0].Fields, fromColumn)
		last.Endpoints[1].Fields = append(last.Endpoints[1].Fields, toColumn)
	}

	return refs, rows.Err()
}

func isSystemSchema(name string) bool {
	return name == "pg_catalog" || name == "information_schema"
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}
