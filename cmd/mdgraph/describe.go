package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/mdgraph"
	"github.com/aretw0/mdgraph/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print a readable summary of a diagram document",
	Long:  `Lists nodes, relations and findings of a document as formatted Markdown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := inputPath(cmd, args)
		if err != nil {
			return err
		}
		text, err := mdgraph.ReadDocument(path)
		if err != nil {
			return err
		}

		eng := newEngine(cmd, filepath.Dir(path), nil, cfg.Layout)
		d, findings := eng.Validate(text)
		summary := tui.Summary(filepath.Base(path), d, findings)

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			_, err := fmt.Fprint(cmd.OutOrStdout(), summary)
			return err
		}

		style, _ := cmd.Flags().GetString("style")
		if !isTerminal(cmd.OutOrStdout()) && !cmd.Flags().Changed("style") {
			style = "notty"
		}
		renderMarkdown, err := tui.NewRenderer(style, terminalWidth())
		if err != nil {
			return err
		}
		rendered, err := renderMarkdown(summary)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().String("style", "", "glamour style: dark, light, notty (default detects the terminal)")
	describeCmd.Flags().Bool("raw", false, "Print the Markdown source without formatting")
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
