package schema

// FilterTables removes tables from the database that match the exclude list.
// Entries match either the bare table name or "schema.table". Table group
// memberships and refs touching an excluded table are dropped as well.
// It returns a new Database; the original is not modified.
func FilterTables(db *Database, excludeTables []string) *Database {
	excludeMap := make(map[string]bool)
	for _, table := range excludeTables {
		excludeMap[table] = true
	}

	excluded := func(key TableKey) bool {
		return excludeMap[key.Table] || excludeMap[key.String()]
	}

	filtered := &Database{
		Name:         db.Name,
		Note:         db.Note,
		DatabaseType: db.DatabaseType,
		Schemas:      make([]Schema, 0, len(db.Schemas)),
	}

	for _, s := range db.Schemas {
		out := Schema{
			Name:   s.Name,
			Note:   s.Note,
			Enums:  s.Enums,
			Tables: make([]Table, 0, len(s.Tables)),
		}

		for _, table := range s.Tables {
			key := table.Key()
			if table.Schema == "" {
				key.Schema = NormalizeSchemaName(s.Name)
			}
			if !excluded(key) {
				out.Tables = append(out.Tables, table)
			}
		}

		for _, group := range s.TableGroups {
			members := make([]TableKey, 0, len(group.Tables))
			for _, member := range group.Tables {
				if !excluded(member) {
					members = append(members, member)
				}
			}
			group.Tables = members
			out.TableGroups = append(out.TableGroups, group)
		}

		for _, ref := range s.Refs {
			keep := true
			for _, ep := range ref.Endpoints {
				if excluded(ep.TableKey()) {
					keep = false
					break
				}
			}
			if keep {
				out.Refs = append(out.Refs, ref)
			}
		}

		filtered.Schemas = append(filtered.Schemas, out)
	}

	return filtered
}
