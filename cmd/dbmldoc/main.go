package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lucasefe/dbmldoc"
	"github.com/lucasefe/dbmldoc/config"
	"github.com/lucasefe/dbmldoc/generator"
	"github.com/lucasefe/dbmldoc/introspect"
)

const version = "1.0.0"

// app holds the state of one invocation.
type app struct {
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	lookupEnv func(string) (string, bool)

	configPath    string
	logLevel      string
	title         string
	includeSource bool
	excludeTables []string

	settings *config.File
	log      *logrus.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, lookupEnv: lookupEnv}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbmldoc",
		Short: "Generate Markdown documentation from DBML",
		Long: `dbmldoc turns DBML schema files, or live PostgreSQL databases, into
Markdown documentation with one section per table, enum and table group.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: dbmldoc.yaml in the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.title, "title", "", "Document title, replacing the database name")
	flags.BoolVar(&a.includeSource, "source", true, "Append the DBML source to the document")
	flags.StringSliceVar(&a.excludeTables, "exclude-tables", nil, "Comma-separated tables to leave out")

	root.AddCommand(
		a.generateCmd(),
		a.introspectCmd(),
		a.batchCmd(),
		a.watchCmd(),
		a.versionCmd(),
	)

	return root
}

// setup resolves settings from the config file, the environment and flags,
// in increasing order of precedence.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.settings, err = config.Load(a.configPath)
	} else {
		a.settings, err = config.LoadFromDir(".")
	}
	if err != nil {
		return err
	}

	if err := a.settings.ApplyEnv(a.lookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.settings.LogLevel = a.logLevel
	}
	if flags.Changed("title") {
		a.settings.Title = a.title
	}
	if flags.Changed("source") {
		a.settings.IncludeSource = a.includeSource
	}
	if flags.Changed("exclude-tables") {
		a.settings.ExcludeTables = a.excludeTables
	}

	a.log = setupLogger(a.settings.LogLevel, a.stderr)
	return nil
}

func setupLogger(logLevel string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func (a *app) generateCmd() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "generate [input] [output]",
		Short: "Generate documentation from a DBML file",
		Long: `Generate reads DBML from input, or stdin when input is omitted or "-",
and writes Markdown to output, or stdout when output is omitted.
With --preview the document is written next to input as <input>-DBMLDoc.md,
and a file that does not parse gets an error notice instead.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := "-", ""
			if len(args) > 0 {
				input = args[0]
			}
			if len(args) > 1 {
				output = args[1]
			}

			if preview {
				if input == "-" {
					return errors.New("--preview requires an input file")
				}
				if output != "" {
					return errors.New("--preview cannot be combined with an output file")
				}
				output = dbmldoc.PreviewFileName(input)
			}

			source, err := a.readInput(input)
			if err != nil {
				return err
			}

			content, err := dbmldoc.Generate(source, &a.settings.Config)
			if err != nil {
				if preview {
					if writeErr := dbmldoc.WriteToFile(output, dbmldoc.ErrorDocument(input, err)); writeErr != nil {
						return writeErr
					}
				}
				return err
			}

			return a.writeOutput(output, content)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Write <input>-DBMLDoc.md next to the input file")
	return cmd
}

func (a *app) introspectCmd() *cobra.Command {
	var (
		url        string
		format     string
		schemas    []string
		allSchemas bool
	)

	cmd := &cobra.Command{
		Use:   "introspect [output]",
		Short: "Generate documentation from a live PostgreSQL database",
		Long: fmt.Sprintf(`Introspect connects to PostgreSQL and documents its schemas.
The connection URL comes from --url, the %s environment variable or the
database_url config key. Use --format dbml to print the schema as DBML.`, config.EnvDatabaseURL),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("url") {
				a.settings.DatabaseURL = url
			}
			if a.settings.DatabaseURL == "" {
				return fmt.Errorf("database URL is required: use --url or %s", config.EnvDatabaseURL)
			}
			if cmd.Flags().Changed("schemas") {
				a.settings.Schemas = schemas
			}
			if cmd.Flags().Changed("all-schemas") {
				a.settings.IncludeAllSchemas = allSchemas
			}

			var output string
			if len(args) > 0 {
				output = args[0]
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var content string
			var err error
			switch format {
			case "markdown":
				content, err = dbmldoc.GenerateFromConnectionString(ctx, a.settings.DatabaseURL, &a.settings.Config)
			case "dbml":
				content, err = a.introspectDBML(ctx)
			default:
				return fmt.Errorf("invalid format: %s (must be 'markdown' or 'dbml')", format)
			}
			if err != nil {
				return err
			}

			return a.writeOutput(output, content)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "PostgreSQL connection URL")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown or dbml")
	cmd.Flags().StringSliceVarP(&schemas, "schemas", "s", nil, "Comma-separated schemas to include (default: public)")
	cmd.Flags().BoolVarP(&allSchemas, "all-schemas", "a", false, "Include all non-system schemas")
	return cmd
}

func (a *app) introspectDBML(ctx context.Context) (string, error) {
	opts := []introspect.Option{introspect.WithExcludeTables(a.settings.ExcludeTables...)}
	if len(a.settings.Schemas) > 0 {
		opts = append(opts, introspect.WithSchemas(a.settings.Schemas...))
	}
	if a.settings.IncludeAllSchemas {
		opts = append(opts, introspect.WithAllSchemas())
	}

	db, err := introspect.FromConnectionString(ctx, a.settings.DatabaseURL, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to introspect database: %w", err)
	}
	if a.settings.Title != "" {
		db.Name = a.settings.Title
	}

	return generator.GenerateDBMLString(db)
}

func (a *app) batchCmd() *cobra.Command {
	var (
		outDir  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Generate documentation for every DBML file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				a.settings.Workers = workers
			}

			results, err := dbmldoc.GenerateDir(cmd.Context(), args[0], outDir, &a.settings.Config, a.settings.Workers, a.log)
			if err != nil {
				return err
			}

			failed := 0
			for _, result := range results {
				if result.Err != nil {
					failed++
				}
			}
			a.log.WithFields(logrus.Fields{"files": len(results), "failed": failed}).Info("batch finished")

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be documented", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for the documents (default: next to each source)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files processed in parallel (default: number of CPUs)")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <files...>",
		Short: "Regenerate <file>-DBMLDoc.md whenever a DBML file changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watcher, err := dbmldoc.NewWatcher(&a.settings.Config, a.settings.CacheSize, a.log)
			if err != nil {
				return err
			}
			defer watcher.Close()

			for _, path := range args {
				if err := watcher.Add(path); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a.log.WithField("files", len(args)).Info("watching for changes")
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "dbmldoc version %s\n", version)
		},
	}
}

func (a *app) readInput(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", input, err)
	}
	return string(data), nil
}

func (a *app) writeOutput(output, content string) error {
	if output == "" {
		_, err := io.WriteString(a.stdout, content)
		return err
	}

	if err := dbmldoc.WriteToFile(output, content); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"output": output, "bytes": len(content)}).Info("documentation written")
	return nil
}
