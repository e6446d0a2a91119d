package schema

// Lookup indexes a Database by identifier so that fields, tables and refs can
// be cross-referenced without back-pointers. Build one per pass; it never
// modifies the Database it was built from.
type Lookup struct {
	tables map[TableKey]*Table
	linked map[FieldKey]bool
	refs   []Ref
}

// NewLookup indexes every table and every ref endpoint field of db.
func NewLookup(db *Database) *Lookup {
	l := &Lookup{
		tables: make(map[TableKey]*Table),
		linked: make(map[FieldKey]bool),
	}

	for i := range db.Schemas {
		s := &db.Schemas[i]
		for j := range s.Tables {
			t := &s.Tables[j]
			key := TableKey{Schema: NormalizeSchemaName(t.Schema), Table: t.Name}
			if t.Schema == "" {
				key.Schema = NormalizeSchemaName(s.Name)
			}
			l.tables[key] = t
		}

		for _, ref := range s.Refs {
			l.refs = append(l.refs, ref)
			for _, ep := range ref.Endpoints {
				for _, field := range ep.Fields {
					l.linked[FieldKey{
						Schema: NormalizeSchemaName(ep.Schema),
						Table:  ep.Table,
						Field:  field,
					}] = true
				}
			}
		}
	}

	return l
}

// Table returns the table identified by key.
func (l *Lookup) Table(key TableKey) (*Table, bool) {
	t, ok := l.tables[key]
	return t, ok
}

// IsLinked reports whether the field is named by any ref endpoint.
func (l *Lookup) IsLinked(key FieldKey) bool {
	key.Schema = NormalizeSchemaName(key.Schema)
	return l.linked[key]
}

// Refs returns every ref of the database, schema by schema in source order.
func (l *Lookup) Refs() []Ref {
	return l.refs
}
