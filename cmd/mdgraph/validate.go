package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aretw0/mdgraph"
	"github.com/aretw0/mdgraph/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a diagram document for problems",
	Long: `Reports parse diagnostics (malformed options, unclosed sections, duplicate keys)
and graph problems such as relations pointing to undeclared nodes.
With --strict warnings fail the command too.`,
	Args: cobra.MaximumNArgs(1),
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

		out := cmd.OutOrStdout()
		for _, f := range findings {
			fmt.Fprintln(out, f.String())
		}

		strict, _ := cmd.Flags().GetBool("strict")
		if strict && len(findings) > 0 {
			return fmt.Errorf("validation failed: %d findings", len(findings))
		}
		if err := validator.Check(findings); err != nil {
			return errors.New("validation failed")
		}
		fmt.Fprintf(out, "Diagram is valid! ✅ (%d nodes, %d relations)\n", d.Len(), len(d.Relations()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as failures")
}
