package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fileforge"
	"fileforge/internal/config"
	"fileforge/internal/packager"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI holds the flags shared by every subcommand.
type CLI struct {
	configFile string
	output     string
	dir        string
	quiet      bool

	engine *fileforge.Engine
}

func newRootCommand() *cobra.Command {
	cli := &CLI{}

	root := &cobra.Command{
		Use:           "fileforge",
		Short:         "Compress, convert and package images and PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cli.engine != nil {
				return cli.engine.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cli.configFile, "config", "", "configuration file (yaml)")
	flags.StringVarP(&cli.output, "output", "o", "", "write results into this ZIP archive")
	flags.StringVarP(&cli.dir, "dir", "d", "", "write results as loose files into this directory")
	flags.BoolVarP(&cli.quiet, "quiet", "q", false, "suppress progress output")

	root.AddCommand(
		newCompressCommand(cli),
		newConvertCommand(cli),
		newOptimizeCommand(cli),
		newComposeCommand(cli),
		newSplitCommand(cli),
		newExtractCommand(cli),
		newIconsCommand(cli),
		newPlatformsCommand(cli),
	)
	return root
}

func (cli *CLI) init() error {
	v := viper.New()
	if cli.configFile != "" {
		v.SetConfigFile(cli.configFile)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	engine, err := fileforge.New(fileforge.WithConfig(cfg))
	if err != nil {
		return err
	}
	cli.engine = engine
	return nil
}

// readInputs loads each path and labels it with its detected media type.
func readInputs(paths []string) ([]fileforge.InputFile, error) {
	files := make([]fileforge.InputFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, fileforge.InputFile{
			Name:     filepath.Base(path),
			MimeType: mimetype.Detect(data).String(),
			Data:     data,
		})
	}
	return files, nil
}

func (cli *CLI) runOptions(operation string) fileforge.RunOptions {
	opts := fileforge.RunOptions{
		Package:     cli.dir == "",
		ArchiveName: cli.archivePath(operation),
	}
	if !cli.quiet {
		opts.Progress = func(p fileforge.Progress) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Completed, p.Total, p.CurrentFile)
		}
	}
	return opts
}

func (cli *CLI) archivePath(operation string) string {
	if cli.output != "" {
		return filepath.Base(cli.output)
	}
	return operation + ".zip"
}

// finish writes the manifest's outputs and reports failures. It returns an
// error when nothing succeeded.
func (cli *CLI) finish(operation string, m *fileforge.BatchManifest) error {
	for _, r := range m.Results {
		switch r.Status {
		case fileforge.StatusSuccess:
			if len(r.Warnings) > 0 && !cli.quiet {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.OutputName, r.Warnings)
			}
		default:
			fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", r.SourceName, r.Status, r.Error)
		}
	}

	if cli.dir != "" {
		if err := writeLoose(cli.dir, m.Successful()); err != nil {
			return err
		}
	} else if m.Archive != nil {
		path := cli.output
		if path == "" {
			path = cli.archivePath(operation)
		}
		if err := os.WriteFile(path, m.Archive, 0o644); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
		if !cli.quiet {
			fmt.Fprintf(os.Stderr, "Wrote %s (%d files)\n", path, len(m.ArchiveFiles))
		}
	}

	fmt.Printf("%d succeeded, %d failed, %d cancelled; %d -> %d bytes\n",
		m.Succeeded, m.Failed, m.Cancelled, m.BytesIn(), m.BytesOut())
	if m.Outcome() == fileforge.OutcomeAllFailed || m.Outcome() == fileforge.OutcomeCancelled {
		return fmt.Errorf("%s", m.Outcome())
	}
	return nil
}

// writeLoose writes Success results under dir, renaming duplicates the way
// archives do.
func writeLoose(dir string, results []fileforge.JobResult) error {
	names := packager.EntryNames(results)
	next := 0
	for _, r := range results {
		if r.Status != fileforge.StatusSuccess {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(names[next]))
		next++
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(path, r.Output, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
