package main

import (
	"fmt"
	"strconv"
	"strings"

	"fileforge"

	"github.com/spf13/cobra"
)

func newCompressCommand(cli *CLI) *cobra.Command {
	var platform string
	var maxBytes int64

	cmd := &cobra.Command{
		Use:   "compress [files...]",
		Short: "Fit files under a size limit",
		Long:  "Compress images and PDFs so each one fits a platform's attachment limit or an explicit byte budget",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			opts := cli.runOptions("compressed")

			var m *fileforge.BatchManifest
			if maxBytes > 0 {
				m, err = cli.engine.Run(cmd.Context(), &fileforge.CompressForLimit{TargetMaxBytes: maxBytes, Files: files}, opts)
			} else {
				m, err = cli.engine.CompressForPlatform(cmd.Context(), platform, files, opts)
			}
			if err != nil {
				return err
			}
			return cli.finish("compressed", m)
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", "custom", "destination platform (see 'platforms')")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "explicit size limit in bytes, overrides --platform")
	return cmd
}

func newConvertCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "convert [format] [files...]",
		Short: "Convert files to jpeg, png, webp or pdf",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(args[0])
			if err != nil {
				return err
			}
			files, err := readInputs(args[1:])
			if err != nil {
				return err
			}
			m, err := cli.engine.Run(cmd.Context(), &fileforge.ConvertFormat{TargetFormat: format, Files: files}, cli.runOptions("converted"))
			if err != nil {
				return err
			}
			return cli.finish("converted", m)
		},
	}
}

func newOptimizeCommand(cli *CLI) *cobra.Command {
	var maxWidth int
	var preset, format string

	cmd := &cobra.Command{
		Use:   "optimize [files...]",
		Short: "Resize and re-encode images for the web",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			req := &fileforge.OptimizeForWeb{Files: files, MaxWidth: maxWidth, Preset: fileforge.QualityPreset(preset)}
			if format != "" {
				if req.Format, err = parseFormat(format); err != nil {
					return err
				}
			}
			m, err := cli.engine.Run(cmd.Context(), req, cli.runOptions("optimized"))
			if err != nil {
				return err
			}
			return cli.finish("optimized", m)
		},
	}
	cmd.Flags().IntVar(&maxWidth, "max-width", 1920, "maximum output width in pixels")
	cmd.Flags().StringVar(&preset, "preset", string(fileforge.PresetBalanced), "quality preset: speed, balanced or quality")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (defaults to webp)")
	return cmd
}

func newComposeCommand(cli *CLI) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "compose [files...]",
		Short: "Merge images and PDFs into one PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			m, err := cli.engine.Run(cmd.Context(), &fileforge.PdfCompose{Files: files, OutputName: name}, cli.runOptions("composed"))
			if err != nil {
				return err
			}
			return cli.finish("composed", m)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the merged PDF")
	return cmd
}

func newSplitCommand(cli *CLI) *cobra.Command {
	var pages string

	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Copy selected pages of a PDF into a new PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			selection, err := parsePages(pages)
			if err != nil {
				return err
			}
			m, err := cli.engine.Run(cmd.Context(), &fileforge.PdfSplit{File: files[0], PageSelection: selection}, cli.runOptions("split"))
			if err != nil {
				return err
			}
			return cli.finish("split", m)
		},
	}
	cmd.Flags().StringVar(&pages, "pages", "", "pages to keep, e.g. 1-3,7")
	return cmd
}

func newExtractCommand(cli *CLI) *cobra.Command {
	var pages, format string

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Render PDF pages to images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			selection, err := parsePages(pages)
			if err != nil {
				return err
			}
			target, err := parseFormat(format)
			if err != nil {
				return err
			}
			req := &fileforge.PdfExtractImages{File: files[0], PageSelection: selection, Format: target}
			m, err := cli.engine.Run(cmd.Context(), req, cli.runOptions("pages"))
			if err != nil {
				return err
			}
			return cli.finish("pages", m)
		},
	}
	cmd.Flags().StringVar(&pages, "pages", "", "pages to render, e.g. 1-3,7 (default all)")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "image format")
	return cmd
}

func newIconsCommand(cli *CLI) *cobra.Command {
	var platforms []string
	var sizes []int
	var appName string

	cmd := &cobra.Command{
		Use:   "icons [file]",
		Short: "Generate an app icon set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			req := &fileforge.GenerateIconSet{File: files[0], Sizes: sizes, AppName: appName}
			for _, p := range platforms {
				req.Platforms = append(req.Platforms, fileforge.Platform(p))
			}
			m, err := cli.engine.Run(cmd.Context(), req, cli.runOptions("icons"))
			if err != nil {
				return err
			}
			return cli.finish("icons", m)
		},
	}
	cmd.Flags().StringSliceVar(&platforms, "platform", []string{string(fileforge.PlatformWeb)}, "target platforms: web, ios, android")
	cmd.Flags().IntSliceVar(&sizes, "size", nil, "icon sizes in pixels (default per platform)")
	cmd.Flags().StringVar(&appName, "app-name", "", "name used in the web manifest")
	return cmd
}

func newPlatformsCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List known attachment limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range cli.engine.Platforms() {
				fmt.Printf("%-12s %d\n", p.Name, p.MaxBytes)
			}
			return nil
		},
	}
}

func parseFormat(s string) (fileforge.Format, error) {
	f, ok := fileforge.ParseFormat(s)
	if !ok {
		return "", fmt.Errorf("unknown format %q", s)
	}
	return f, nil
}

// parsePages turns "1-3,7" into [1 2 3 7]. An empty selection means every
// page.
func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		if first > last {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
