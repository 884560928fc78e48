package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mdgraph/internal/presentation/graph"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export a diagram document as Mermaid or DOT source",
	Long: `Converts a diagram document into text without calling Graphviz.
Mermaid output can highlight nodes with --highlight key1,key2.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := inputPath(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		highlight, _ := cmd.Flags().GetString("highlight")
		output, _ := cmd.Flags().GetString("output")

		eng := newEngine(cmd, filepath.Dir(path), nil, cfg.Layout)
		d, err := eng.Load(path)
		if err != nil {
			return err
		}

		var text string
		switch strings.ToLower(format) {
		case "mermaid":
			text = graph.GenerateMermaid(d, graph.MermaidOptions{
				Direction: eng.Layout().RankDir,
				Highlight: splitKeys(highlight),
			})
		case "dot":
			text = eng.DOT(d)
		default:
			return fmt.Errorf("%w: %s (want mermaid or dot)", domain.ErrUnsupportedFormat, format)
		}

		if output == "" || output == "-" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		}
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("diagram exported", "path", output, "format", format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "mermaid", "Export format: mermaid or dot")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().String("highlight", "", "Comma-separated node keys to highlight (mermaid only)")
	addLayoutFlags(exportCmd)
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
