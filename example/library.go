//go:build ignore

// This file demonstrates the dbmldoc subpackages used as a library.
// Run with: go run library.go [connection_string]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/lucasefe/dbmldoc"
	"github.com/lucasefe/dbmldoc/generator"
	"github.com/lucasefe/dbmldoc/introspect"
	"github.com/lucasefe/dbmldoc/markdown"
	"github.com/lucasefe/dbmldoc/parser"
	"github.com/lucasefe/dbmldoc/schema"
)

const source = `Table users {
  id int [pk]
  email varchar [unique]
}

Table sessions {
  id int [pk]
  user_id int [ref: > users.id]
}
`

func main() {
	fmt.Println("=== Example 1: Facade ===")
	facade()

	fmt.Println("\n=== Example 2: Parser and Generator ===")
	parserAndGenerator()

	fmt.Println("\n=== Example 3: Markdown Nodes ===")
	markdownNodes()

	if len(os.Args) > 1 {
		fmt.Println("\n=== Example 4: Introspection ===")
		introspection(os.Args[1])
	}
}

// facade shows the simplest way to document DBML
func facade() {
	content, err := dbmldoc.Generate(source, &dbmldoc.Config{Title: "Auth"})
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	printPreview("Facade output", content)
}

// parserAndGenerator parses DBML, trims the schema and renders it with custom glyphs
func parserAndGenerator() {
	db, err := parser.Parse(source)
	if err != nil {
		log.Printf("Error parsing: %v", err)
		return
	}

	for _, s := range db.Schemas {
		for _, table := range s.Tables {
			fmt.Printf("  - %s (%d fields)\n", table.Key(), len(table.Fields))
		}
	}

	db = schema.FilterTables(db, []string{"sessions"})

	output, err := generator.Generate(db,
		generator.WithPrimaryKeyGlyph("PK"),
		generator.WithLinkGlyph("FK"),
	)
	if err != nil {
		log.Printf("Error generating: %v", err)
		return
	}

	printPreview("Generated with custom glyphs", string(output))
}

// markdownNodes inspects the node sequence before rendering it
func markdownNodes() {
	db, err := parser.Parse(source)
	if err != nil {
		log.Printf("Error parsing: %v", err)
		return
	}

	nodes, err := generator.New().Nodes(db)
	if err != nil {
		log.Printf("Error walking schema: %v", err)
		return
	}

	for _, node := range nodes {
		if heading, ok := node.(markdown.Heading); ok {
			fmt.Printf("  %d: %s\n", heading.Level, heading.Text)
		}
	}

	text, err := markdown.Render(nodes)
	if err != nil {
		log.Printf("Error rendering: %v", err)
		return
	}
	fmt.Printf("Rendered %d bytes\n", len(text))
}

// introspection documents a live database and prints its DBML
func introspection(connStr string) {
	ctx := context.Background()

	db, err := introspect.FromConnectionString(ctx, connStr,
		introspect.WithSchemas("public"),
		introspect.WithExcludeTables("schema_migrations"),
		introspect.WithTypeMappings(map[string]string{
			"citext": "varchar",
		}),
	)
	if err != nil {
		log.Printf("Error introspecting: %v", err)
		return
	}

	dbml, err := generator.GenerateDBMLString(db)
	if err != nil {
		log.Printf("Error generating DBML: %v", err)
		return
	}
	printPreview("Introspected DBML", dbml)

	content, err := dbmldoc.GenerateFromConnectionString(ctx, connStr, &dbmldoc.Config{IncludeSource: true})
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	printPreview("Introspected documentation", content)
}

// printPreview prints the start of the generated text
func printPreview(title, content string) {
	fmt.Printf("\n%s:\n", title)
	fmt.Println("---")
	if len(content) > 300 {
		fmt.Printf("%s...\n", content[:300])
	} else {
		fmt.Print(content)
	}
	fmt.Println("---")
}
