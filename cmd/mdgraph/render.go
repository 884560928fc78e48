package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mdgraph"
	workspace "github.com/aretw0/mdgraph/pkg/adapters/loam"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/aretw0/mdgraph/pkg/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a diagram document with Graphviz",
	Long: `Parses a diagram document and renders it through the Graphviz "dot" binary.
The result is written to <output>.<format>; use "-o -" to write to stdout.

With --dir every markdown document of a directory is rendered next to its source,
honoring the output, format and rankdir keys of its frontmatter.
With --watch the command keeps running and re-renders documents as they change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("output", "o", "", "Output path without extension; a directory with --dir (default from config)")
	renderCmd.Flags().StringP("format", "f", "", "Output format: svg, png, pdf or dot (default from config)")
	renderCmd.Flags().String("dir", "", "Render every markdown document in a directory")
	renderCmd.Flags().Bool("watch", false, "Re-render when documents change")
	renderCmd.Flags().Bool("no-cache", false, "Bypass the render cache")
	renderCmd.Flags().String("image-dir", "", "Directory caching downloaded node images")
	renderCmd.Flags().Bool("fail-empty", false, "Fail when a document declares no nodes")
	addLayoutFlags(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format := strings.ToLower(stringFlag(cmd, "format", cfg.Output.Format))
	if !render.SupportedFormat(format) {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	watch, _ := cmd.Flags().GetBool("watch")
	renderer, release := newRenderer(ctx, noCache, nil)
	defer release()

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return renderDir(ctx, cmd, dir, format, renderer, watch)
	}

	path, err := inputPath(cmd, args)
	if err != nil {
		return err
	}
	output := stringFlag(cmd, "output", cfg.Output.Path)
	eng := newEngine(cmd, filepath.Dir(path), renderer, cfg.Layout)

	if err := renderFile(ctx, cmd, eng, path, format, output); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchFile(ctx, cmd, eng, path, format, output)
}

func renderFile(ctx context.Context, cmd *cobra.Command, eng *mdgraph.Engine, path, format, output string) error {
	d, err := eng.Load(path)
	if err != nil {
		return err
	}
	if err := checkEmpty(cmd, d); err != nil {
		return err
	}
	data, err := eng.Render(ctx, d, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, output, format, data)
}

// checkEmpty rejects a diagram without nodes when --fail-empty is set.
func checkEmpty(cmd *cobra.Command, d *domain.Diagram) error {
	if failEmpty, _ := cmd.Flags().GetBool("fail-empty"); failEmpty && d.Len() == 0 {
		return domain.ErrEmptyDiagram
	}
	return nil
}

// renderDir renders each document of a loam workspace. Failures are collected so one
// broken document does not stop the batch.
func renderDir(ctx context.Context, cmd *cobra.Command, dir, format string, renderer render.Renderer, watch bool) error {
	ws, err := workspace.Open(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInputNotFound, err)
	}
	outDir := stringFlag(cmd, "output", dir)

	docs, err := ws.List(ctx)
	if err != nil {
		return err
	}
	logger.Info("rendering workspace", "dir", dir, "documents", len(docs))

	var errs []error
	for _, doc := range docs {
		if err := renderDocument(ctx, cmd, dir, outDir, doc, format, renderer); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.ID, err))
		}
	}
	if !watch {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		logger.Error("render failed", "err", err)
	}

	return watchWorkspace(ctx, ws, func(id string) error {
		doc, err := ws.Get(ctx, id)
		if err != nil {
			return err
		}
		if doc.Meta.Skip {
			return nil
		}
		return renderDocument(ctx, cmd, dir, outDir, doc, format, renderer)
	})
}

// renderDocument renders one workspace document. Frontmatter values apply unless the
// matching flag was given explicitly.
func renderDocument(ctx context.Context, cmd *cobra.Command, dir, outDir string, doc workspace.Document, format string, renderer render.Renderer) error {
	if doc.Meta.Format != "" && !cmd.Flags().Changed("format") {
		format = strings.ToLower(doc.Meta.Format)
		if !render.SupportedFormat(format) {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
		}
	}

	layout := cfg.Layout
	if doc.Meta.RankDir != "" {
		layout.RankDir = strings.ToUpper(doc.Meta.RankDir)
	}
	docDir := filepath.Dir(filepath.FromSlash(doc.ID))
	eng := newEngine(cmd, filepath.Join(dir, docDir), renderer, layout)

	d, err := eng.Parse(doc.Body)
	if err != nil {
		return err
	}
	if err := checkEmpty(cmd, d); err != nil {
		return err
	}
	data, err := eng.Render(ctx, d, format)
	if err != nil {
		return err
	}

	name := filepath.FromSlash(doc.ID)
	if doc.Meta.Output != "" {
		name = filepath.Join(docDir, doc.Meta.Output)
	}
	return writeOutput(cmd, filepath.Join(outDir, name), format, data)
}

// watchFile re-renders a single document whenever it changes on disk.
func watchFile(ctx context.Context, cmd *cobra.Command, eng *mdgraph.Engine, path, format, output string) error {
	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return fmt.Errorf("--watch needs a .md document, got %s", path)
	}
	ws, err := workspace.Open(filepath.Dir(path))
	if err != nil {
		return err
	}
	want := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return watchWorkspace(ctx, ws, func(id string) error {
		if id != want {
			return nil
		}
		return renderFile(ctx, cmd, eng, path, format, output)
	})
}

func watchWorkspace(ctx context.Context, ws *workspace.Workspace, onChange func(id string) error) error {
	events, err := ws.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("watching for changes, press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			logger.Debug("document changed", "id", id)
			if err := onChange(id); err != nil {
				logger.Error("re-render failed", "id", id, "err", err)
			}
		}
	}
}

// inputPath returns the document argument, asking for it on an interactive terminal.
func inputPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%w: no diagram file given", domain.ErrInputNotFound)
	}
	return promptPath(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func promptPath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Diagram file: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	path := strings.TrimSpace(line)
	if path == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", fmt.Errorf("%w: no diagram file given", domain.ErrInputNotFound)
	}
	return path, nil
}

// writeOutput writes data to <output>.<format>, or to stdout when output is "-".
func writeOutput(cmd *cobra.Command, output, format string, data []byte) error {
	if output == "-" {
		if isBinary(format) && isTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("refusing to write %s output to a terminal, use -o", format)
		}
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	target := outputPath(output, format)
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("diagram written", "path", target, "bytes", len(data))
	fmt.Fprintf(cmd.OutOrStdout(), "Diagram written to %s\n", target)
	return nil
}

// outputPath appends the format extension unless output already carries it.
func outputPath(output, format string) string {
	if strings.EqualFold(filepath.Ext(output), "."+format) {
		return output
	}
	return output + "." + format
}

func isBinary(format string) bool {
	return format == render.FormatPNG || format == render.FormatPDF
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
