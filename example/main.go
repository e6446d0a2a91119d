package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lucasefe/dbmldoc"
)

const sampleSource = `Project Blog {
  database_type: 'PostgreSQL'
  Note: 'Posts and their authors'
}

Enum post_status {
  draft
  published [note: 'Visible to readers']
}

Table authors {
  id int [pk, increment]
  name varchar [not null]
}

Table posts {
  id int [pk, increment]
  author_id int [ref: > authors.id]
  status post_status [default: 'draft']
  title varchar

  indexes {
    (author_id, status)
  }
}

TableGroup content {
  posts
}
`

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println("Usage: go run main.go [input.dbml]")
		fmt.Println("Without an input file a built-in blog schema is documented.")
		os.Exit(0)
	}

	source := sampleSource
	outputFile := "blog.dbml" + dbmldoc.PreviewSuffix
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to read DBML file: %v", err)
		}
		source = string(data)
		outputFile = dbmldoc.PreviewFileName(os.Args[1])
	}

	fmt.Printf("Generating documentation...\n")

	content, err := dbmldoc.Generate(source, dbmldoc.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to generate documentation: %v", err)
	}

	if err := dbmldoc.WriteToFile(outputFile, content); err != nil {
		log.Fatalf("Failed to write documentation: %v", err)
	}

	fmt.Printf("Successfully generated documentation: %s\n", outputFile)
	fmt.Printf("Generated %d bytes of Markdown\n", len(content))

	fmt.Println("\nDocumentation preview:")
	fmt.Println("----------------------")
	if len(content) > 500 {
		fmt.Printf("%s...\n", content[:500])
	} else {
		fmt.Println(content)
	}
}
