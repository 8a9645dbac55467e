package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/synthledger/internal/config"
	"github.com/cleared-dev/synthledger/internal/engine"
	"github.com/cleared-dev/synthledger/internal/importer"
)

// headSize is how much of a file Detect gets to look at.
const headSize = 1024

type extractOptions struct {
	dir           string
	configPath    string
	source        string
	markProcessed bool
	verbose       bool
}

func newExtractCommand() *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Synthesize ledger entries from statement files",
		Long: "Synthesize ledger entries from statement files. Without arguments every\n" +
			"CSV in the project's import directory is processed. A file that fails is\n" +
			"reported and skipped; the others are still written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(opts.dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			opts.dir = absDir
			if opts.configPath == "" {
				opts.configPath = filepath.Join(absDir, config.FileName)
			}

			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
				Prefix: "synthledger",
				Level:  level,
			})

			return runExtract(cmd.OutOrStdout(), logger, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default <dir>/"+config.FileName+")")
	cmd.Flags().StringVar(&opts.source, "source", "", "source to use for every file (default: detect per file)")
	cmd.Flags().BoolVar(&opts.markProcessed, "mark-processed", false, "move successfully extracted import files to import/processed")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log chain grouping details")

	return cmd
}

// inputFile is a file to extract. Scanned files live in the import directory
// and may be marked processed.
type inputFile struct {
	name    string
	path    string
	scanned bool
}

func runExtract(out io.Writer, logger *log.Logger, opts extractOptions, args []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	var fixed *config.Source
	if opts.source != "" {
		src, ok := cfg.Source(opts.source)
		if !ok {
			return fmt.Errorf("unknown source %q (configured: %v)", opts.source, cfg.Names())
		}
		fixed = src
	}

	files, err := inputFiles(opts.dir, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("nothing to extract", "dir", filepath.Join(opts.dir, "import"))
		return nil
	}

	registry := importer.DefaultRegistry()
	var docs []fileDocument
	failed := 0
	for _, f := range files {
		src := fixed
		if src == nil {
			if src, err = detectSource(cfg, registry, f.path); err != nil {
				logger.Error("skipping file", "file", f.name, "err", err)
				failed++
				continue
			}
		}

		doc, err := extractFile(logger, registry, src, f)
		if err != nil {
			logger.Error("extraction failed", "file", f.name, "source", src.Name, "err", err)
			failed++
			continue
		}
		docs = append(docs, doc)
		logger.Info("extracted", "file", f.name, "source", src.Name,
			"entries", len(doc.Entries), "warnings", len(doc.Warnings))

		if opts.markProcessed && f.scanned {
			if err := importer.MarkProcessed(opts.dir, f.name); err != nil {
				logger.Error("marking processed", "file", f.name, "err", err)
			}
		}
	}

	if len(docs) > 0 {
		if err := writeDocuments(out, docs); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func inputFiles(dir string, args []string) ([]inputFile, error) {
	if len(args) > 0 {
		files := make([]inputFile, len(args))
		for i, a := range args {
			files[i] = inputFile{name: filepath.Base(a), path: a}
		}
		return files, nil
	}

	scanned, err := importer.Scan(dir)
	if err != nil {
		return nil, err
	}
	files := make([]inputFile, len(scanned))
	for i, s := range scanned {
		files[i] = inputFile{name: s.Name, path: s.Path, scanned: true}
	}
	return files, nil
}

// detectSource picks the first configured source whose format recognizes the file.
func detectSource(cfg *config.Config, registry *importer.Registry, path string) (*config.Source, error) {
	head, err := importer.ReadHead(path, headSize)
	if err != nil {
		return nil, err
	}
	p := registry.Detect(filepath.Base(path), head)
	if p == nil {
		return nil, fmt.Errorf("no parser recognizes %s; use --source", filepath.Base(path))
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Format == p.Format() {
			return &cfg.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("%s looks like %s but no source uses that format", filepath.Base(path), p.Format())
}

func extractFile(logger *log.Logger, registry *importer.Registry, src *config.Source, f inputFile) (fileDocument, error) {
	parser := parserFor(registry, src)
	if parser == nil {
		return fileDocument{}, fmt.Errorf("unknown format %q (available: %v)", src.Format, registry.Formats())
	}

	file, err := os.Open(f.path)
	if err != nil {
		return fileDocument{}, fmt.Errorf("opening %s: %w", f.name, err)
	}
	defer file.Close()

	rows, err := parser.Parse(file)
	if err != nil {
		return fileDocument{}, fmt.Errorf("parsing %s: %w", f.name, err)
	}

	result, err := engine.New(&src.Rules, logger.With("file", f.name)).Extract(rows)
	if err != nil {
		return fileDocument{}, err
	}
	return newFileDocument(f.name, src.Name, result), nil
}

// parserFor returns the parser of a source's format. OV-chipkaart exports
// carry no currency column, so they take the source's home currency.
func parserFor(registry *importer.Registry, src *config.Source) importer.Parser {
	p := registry.Get(src.Format)
	if _, ok := p.(*importer.OVChipkaartParser); ok {
		return &importer.OVChipkaartParser{Currency: src.Rules.Currency}
	}
	return p
}

func writeDocuments(out io.Writer, docs []fileDocument) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("writing entries: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writing entries: %w", err)
	}
	return nil
}
