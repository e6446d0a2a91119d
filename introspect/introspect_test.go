package introspect

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/dbmldoc/schema"
)

var columnNames = []string{
	"column_name", "data_type", "character_maximum_length", "numeric_precision", "numeric_scale",
	"is_nullable", "column_default", "udt_name", "udt_schema", "is_identity", "col_description",
}

func expectShopSchema(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM pg_namespace n`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"obj_description"}).AddRow("Main schema"))

	mock.ExpectQuery(`FROM pg_type t`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"typname", "enumlabel", "obj_description"}).
			AddRow("order_status", "created", nil).
			AddRow("order_status", "shipped", nil))

	mock.ExpectQuery(`FROM pg_class c`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"relname", "obj_description"}).
			AddRow("orders", "Customer orders").
			AddRow("users", nil))

	// orders
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows(columnNames).
			AddRow("id", "integer", nil, 32, 0, "NO", "nextval('orders_id_seq'::regclass)", "int4", "pg_catalog", "NO", nil).
			AddRow("user_id", "integer", nil, 32, 0, "NO", nil, "int4", "pg_catalog", "NO", "buyer").
			AddRow("status", "USER-DEFINED", nil, nil, nil, "NO", "'created'::order_status", "order_status", "public", "NO", nil))
	mock.ExpectQuery(`PRIMARY KEY`).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	mock.ExpectQuery(`FROM pg_indexes i`).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"indexname", "columns", "indisunique", "amname"}).
			AddRow("orders_status_idx", "{status,user_id}", false, "hash"))
	mock.ExpectQuery(`FROM information_schema.referential_constraints rc`).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "column_name", "foreign_table_schema", "foreign_table_name",
			"foreign_column_name", "delete_rule", "update_rule",
		}).AddRow("orders_user_id_fkey", "user_id", "public", "users", "id", "CASCADE", "NO ACTION"))

	// users
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows(columnNames).
			AddRow("id", "bigint", nil, 64, 0, "NO", nil, "int8", "pg_catalog", "YES", nil).
			AddRow("email", "character varying", 255, nil, nil, "NO", nil, "varchar", "pg_catalog", "NO", nil))
	mock.ExpectQuery(`PRIMARY KEY`).
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	mock.ExpectQuery(`FROM pg_indexes i`).
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"indexname", "columns", "indisunique", "amname"}).
			AddRow("users_email_key", "{email}", true, "btree"))
	mock.ExpectQuery(`FROM information_schema.referential_constraints rc`).
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "column_name", "foreign_table_schema", "foreign_table_name",
			"foreign_column_name", "delete_rule", "update_rule",
		}))
}

func TestDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("shop"))
	expectShopSchema(mock)

	result, err := Database(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "shop", result.Name)
	assert.Equal(t, DatabaseType, result.DatabaseType)

	require.Len(t, result.Schemas, 1)
	s := result.Schemas[0]
	assert.Equal(t, "public", s.Name)
	require.NotNil(t, s.Note)
	assert.Equal(t, "Main schema", *s.Note)

	assert.Equal(t, []schema.Enum{{
		Name:   "order_status",
		Schema: "public",
		Values: []schema.EnumValue{{Name: "created"}, {Name: "shipped"}},
	}}, s.Enums)

	require.Len(t, s.Tables, 2)
	orders := s.Tables[0]
	assert.Equal(t, "orders", orders.Name)
	require.NotNil(t, orders.Note)
	assert.Equal(t, "Customer orders", *orders.Note)
	assert.Equal(t, []schema.Field{
		{Name: "id", Type: schema.FieldType{Name: "int"}, PrimaryKey: true, NotNull: true, Increment: true},
		{Name: "user_id", Type: schema.FieldType{Name: "int"}, NotNull: true, Note: schema.StringPtr("buyer")},
		{Name: "status", Type: schema.FieldType{Name: "order_status"}, NotNull: true, Default: schema.StringPtr("'created'::order_status")},
	}, orders.Fields)
	assert.Equal(t, []schema.Index{{
		Name:    "orders_status_idx",
		Columns: []schema.IndexColumn{{Value: "status"}, {Value: "user_id"}},
		Type:    "hash",
	}}, orders.Indexes)

	users := s.Tables[1]
	assert.Equal(t, []schema.Field{
		{Name: "id", Type: schema.FieldType{Name: "bigint"}, PrimaryKey: true, NotNull: true, Increment: true},
		{Name: "email", Type: schema.FieldType{Name: "varchar(255)"}, NotNull: true, Unique: true},
	}, users.Fields)

	assert.Equal(t, []schema.Ref{{
		Name: "orders_user_id_fkey",
		Endpoints: []schema.Endpoint{
			{Schema: "public", Table: "orders", Fields: []string{"user_id"}, Relation: "*"},
			{Schema: "public", Table: "users", Fields: []string{"id"}, Relation: "1"},
		},
		OnDelete: "CASCADE",
		OnUpdate: "NO ACTION",
	}}, s.Refs)
}

func TestDatabaseExcludeTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("shop"))
	expectShopSchema(mock)

	result, err := Database(context.Background(), db, WithExcludeTables("users"))
	require.NoError(t, err)

	require.Len(t, result.Schemas[0].Tables, 1)
	assert.Equal(t, "orders", result.Schemas[0].Tables[0].Name)
	assert.Empty(t, result.Schemas[0].Refs)
}

func TestDatabaseAllSchemas(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("shop"))
	mock.ExpectQuery(`FROM information_schema.schemata`).
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).AddRow("public"))
	expectShopSchema(mock)

	result, err := Database(context.Background(), db, WithSchemas("ignored"), WithAllSchemas())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, result.Schemas, 1)
	assert.Equal(t, "public", result.Schemas[0].Name)
}

func TestDatabaseCompositeForeignKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("shop"))
	mock.ExpectQuery(`FROM pg_namespace n`).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"obj_description"}).AddRow(nil))
	mock.ExpectQuery(`FROM pg_type t`).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"typname", "enumlabel", "obj_description"}))
	mock.ExpectQuery(`FROM pg_class c`).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"relname", "obj_description"}).AddRow("lines", nil))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("sales", "lines").
		WillReturnRows(sqlmock.NewRows(columnNames).
			AddRow("order_id", "integer", nil, 32, 0, "NO", nil, "int4", "pg_catalog", "NO", nil).
			AddRow("line_no", "integer", nil, 32, 0, "NO", nil, "int4", "pg_catalog", "NO", nil).
			AddRow("kind", "USER-DEFINED", nil, nil, nil, "YES", nil, "line_kind", "catalog", "NO", nil))
	mock.ExpectQuery(`PRIMARY KEY`).
		WithArgs("sales", "lines").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("order_id").AddRow("line_no"))
	mock.ExpectQuery(`FROM pg_indexes i`).
		WithArgs("sales", "lines").
		WillReturnRows(sqlmock.NewRows([]string{"indexname", "columns", "indisunique", "amname"}))
	mock.ExpectQuery(`FROM information_schema.referential_constraints rc`).
		WithArgs("sales", "lines").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "column_name", "foreign_table_schema", "foreign_table_name",
			"foreign_column_name", "delete_rule", "update_rule",
		}).
			AddRow("lines_order_fkey", "order_id", "sales", "order_lines", "order_id", "NO ACTION", "NO ACTION").
			AddRow("lines_order_fkey", "line_no", "sales", "order_lines", "line_no", "NO ACTION", "NO ACTION"))

	result, err := Database(context.Background(), db, WithSchemas("sales"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	lines := result.Schemas[0].Tables[0]
	assert.Equal(t, schema.FieldType{Name: "line_kind", Schema: "catalog"}, lines.Fields[2].Type)
	assert.False(t, lines.Fields[2].NotNull)

	require.Len(t, lines.Indexes, 1)
	assert.True(t, lines.Indexes[0].PrimaryKey)
	assert.Equal(t, []schema.IndexColumn{{Value: "order_id"}, {Value: "line_no"}}, lines.Indexes[0].Columns)

	require.Len(t, result.Schemas[0].Refs, 1)
	ref := result.Schemas[0].Refs[0]
	assert.Equal(t, []string{"order_id", "line_no"}, ref.Endpoints[0].Fields)
	assert.Equal(t, []string{"order_id", "line_no"}, ref.Endpoints[1].Fields)
	assert.Equal(t, "1", ref.Endpoints[0].Relation, "a foreign key covering the whole primary key is one-to-one")
}

func TestDatabaseQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("shop"))
	mock.ExpectQuery(`FROM pg_namespace n`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"obj_description"}).AddRow(nil))
	mock.ExpectQuery(`FROM pg_type t`).
		WithArgs("public").
		WillReturnError(boom)

	_, err = Database(context.Background(), db)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to get enums for schema public")
}
