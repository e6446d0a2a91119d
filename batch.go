package dbmldoc

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BatchResult describes the documentation of one DBML file.
type BatchResult struct {
	// Source is the DBML file.
	Source string
	// Output is the Markdown file that was written.
	Output string
	// Err is the parse or generation error. The output then holds the
	// error document.
	Err error
}

// GenerateDir documents every *.dbml file below dir using at most workers
// goroutines. Each result is written next to its source, or under outDir
// with the same relative path when outDir is set.
//
// A file that fails to parse gets the error document and a result with Err
// set; it does not stop the batch. Read and write failures do, and are
// returned. Results are in lexical order of the source paths. A nil log
// selects the standard logrus logger.
func GenerateDir(ctx context.Context, dir, outDir string, cfg *Config, workers int, log logrus.FieldLogger) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	sources, err := findSources(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	results := make([]BatchResult, len(sources))
	for i, source := range sources {
		output, err := outputPath(dir, outDir, source)
		if err != nil {
			return nil, err
		}
		results[i] = BatchResult{Source: source, Output: output}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i := range results {
		i := i
		source, output := results[i].Source, results[i].Output

		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", source, err)
			}

			entry := log.WithFields(logrus.Fields{"source": source, "output": output})

			content, genErr := Generate(string(data), cfg)
			if genErr != nil {
				results[i].Err = genErr
				content = ErrorDocument(source, genErr)
				entry.WithError(genErr).Warn("documentation failed")
			}

			if err := WriteToFile(output, content); err != nil {
				return err
			}
			if genErr == nil {
				entry.Info("documentation written")
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// findSources returns the *.dbml files below dir in lexical order.
func findSources(dir string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".dbml") {
			sources = append(sources, path)
		}
		return nil
	})
	return sources, err
}

func outputPath(dir, outDir, source string) (string, error) {
	if outDir == "" {
		return PreviewFileName(source), nil
	}
	rel, err := filepath.Rel(dir, source)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", source, err)
	}
	return PreviewFileName(filepath.Join(outDir, rel)), nil
}
