package schema

import "testing"

func testDatabase() *Database {
	return &Database{
		Name: "shop",
		Schemas: []Schema{
			{
				Name: "public",
				Tables: []Table{
					{Name: "users", Schema: "public", Fields: []Field{{Name: "id", PrimaryKey: true}}},
					{Name: "orders", Schema: "public", Fields: []Field{{Name: "id"}, {Name: "user_id"}}},
					{Name: "migrations", Schema: "public"},
				},
				TableGroups: []TableGroup{
					{Name: "core", Schema: "public", Tables: []TableKey{
						{Schema: "public", Table: "users"},
						{Schema: "public", Table: "migrations"},
					}},
				},
				Refs: []Ref{
					{Endpoints: []Endpoint{
						{Table: "orders", Fields: []string{"user_id"}, Relation: "*"},
						{Table: "users", Fields: []string{"id"}, Relation: "1"},
					}},
				},
			},
			{
				Name:   "audit",
				Tables: []Table{{Name: "migrations", Schema: "audit"}},
			},
		},
	}
}

func TestFilterTables(t *testing.T) {
	db := testDatabase()

	filtered := FilterTables(db, []string{"migrations", "users"})

	if len(filtered.Schemas) != 2 {
		t.Fatalf("Expected 2 schemas after filtering, got %d", len(filtered.Schemas))
	}

	public := filtered.Schemas[0]
	if len(public.Tables) != 1 || public.Tables[0].Name != "orders" {
		t.Errorf("Unexpected tables in filtered result: %+v", public.Tables)
	}

	if len(public.TableGroups) != 1 || len(public.TableGroups[0].Tables) != 0 {
		t.Errorf("Expected group memberships of excluded tables to be dropped: %+v", public.TableGroups)
	}

	if len(public.Refs) != 0 {
		t.Errorf("Expected refs touching excluded tables to be dropped, got %d", len(public.Refs))
	}

	if len(filtered.Schemas[1].Tables) != 0 {
		t.Errorf("Expected audit.migrations to be excluded by bare name")
	}
}

func TestFilterTablesQualifiedName(t *testing.T) {
	db := testDatabase()

	filtered := FilterTables(db, []string{"audit.migrations"})

	if len(filtered.Schemas[0].Tables) != 3 {
		t.Errorf("Expected public tables untouched, got %d", len(filtered.Schemas[0].Tables))
	}

	if len(filtered.Schemas[1].Tables) != 0 {
		t.Errorf("Expected audit.migrations to be excluded")
	}
}

func TestFilterTablesEmpty(t *testing.T) {
	db := testDatabase()

	// Filter with empty exclude list
	filtered := FilterTables(db, []string{})

	if len(filtered.Schemas[0].Tables) != 3 {
		t.Errorf("Expected 3 tables when exclude list is empty, got %d", len(filtered.Schemas[0].Tables))
	}

	if len(filtered.Schemas[0].Refs) != 1 {
		t.Errorf("Expected ref to survive, got %d", len(filtered.Schemas[0].Refs))
	}
}

func TestFilterTablesOriginalUnmodified(t *testing.T) {
	db := testDatabase()

	FilterTables(db, []string{"migrations", "users"})

	// Original should still have 3 tables and 2 group members
	if len(db.Schemas[0].Tables) != 3 {
		t.Errorf("Original schema was modified, expected 3 tables, got %d", len(db.Schemas[0].Tables))
	}
	if len(db.Schemas[0].TableGroups[0].Tables) != 2 {
		t.Errorf("Original group was modified, expected 2 members, got %d", len(db.Schemas[0].TableGroups[0].Tables))
	}
}

func TestLookup(t *testing.T) {
	l := NewLookup(testDatabase())

	if _, ok := l.Table(TableKey{Schema: "public", Table: "orders"}); !ok {
		t.Errorf("Expected public.orders to be indexed")
	}
	if _, ok := l.Table(TableKey{Schema: "audit", Table: "migrations"}); !ok {
		t.Errorf("Expected audit.migrations to be indexed")
	}
	if _, ok := l.Table(TableKey{Schema: "audit", Table: "users"}); ok {
		t.Errorf("Did not expect audit.users to be indexed")
	}

	tests := []struct {
		key  FieldKey
		want bool
	}{
		{FieldKey{Schema: "public", Table: "orders", Field: "user_id"}, true},
		{FieldKey{Schema: "", Table: "users", Field: "id"}, true},
		{FieldKey{Schema: "public", Table: "orders", Field: "id"}, false},
		{FieldKey{Schema: "audit", Table: "users", Field: "id"}, false},
	}

	for _, tt := range tests {
		if got := l.IsLinked(tt.key); got != tt.want {
			t.Errorf("IsLinked(%+v) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if len(l.Refs()) != 1 {
		t.Errorf("Expected 1 ref, got %d", len(l.Refs()))
	}
}

func TestFieldTypeString(t *testing.T) {
	tests := []struct {
		typ      FieldType
		expected string
	}{
		{FieldType{Name: "int"}, "int"},
		{FieldType{Name: "status", Schema: "billing"}, "billing.status"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.expected {
			t.Errorf("FieldType.String() = %s, want %s", got, tt.expected)
		}
	}
}

func TestNormalizeSchemaName(t *testing.T) {
	if got := NormalizeSchemaName(""); got != DefaultSchemaName {
		t.Errorf("NormalizeSchemaName(\"\") = %s, want %s", got, DefaultSchemaName)
	}
	if got := NormalizeSchemaName("auth"); got != "auth" {
		t.Errorf("NormalizeSchemaName(auth) = %s, want auth", got)
	}
}
