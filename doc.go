// Package dbmldoc generates Markdown documentation from DBML (Database
// Markup Language) files and from live PostgreSQL databases.
//
// The documentation lists every schema, enum and table with a field table,
// the table's indexes and the relationships it takes part in. Table groups
// become sections of their own.
//
// # Basic Usage
//
// Generate documentation from a DBML file:
//
//	import "github.com/lucasefe/dbmldoc"
//
//	doc, err := dbmldoc.GenerateFromFile("shop.dbml", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(doc)
//
// Or from a database connection string:
//
//	doc, err := dbmldoc.GenerateFromConnectionString(ctx, connStr, &dbmldoc.Config{
//	    Schemas:       []string{"public", "auth"},
//	    ExcludeTables: []string{"migrations", "schema_versions"},
//	})
//
// # Previews
//
// A DBML file foo.dbml is documented in foo.dbml-DBMLDoc.md (see
// PreviewFileName). Watcher keeps these files current while the DBML
// changes, and GenerateDir converts a whole directory at once.
//
// # Subpackages
//
// For advanced use cases, consider using the subpackages directly:
//
//   - github.com/lucasefe/dbmldoc/schema - Data structures for representing database schemas
//   - github.com/lucasefe/dbmldoc/parser - DBML parsing
//   - github.com/lucasefe/dbmldoc/introspect - Database introspection with functional options
//   - github.com/lucasefe/dbmldoc/generator - Documentation and DBML generation
//   - github.com/lucasefe/dbmldoc/markdown - Document nodes and the Markdown renderer
//   - github.com/lucasefe/dbmldoc/config - YAML configuration files
package dbmldoc
