package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/ontology"
	"github.com/dshills/railcheck/internal/render"
)

func newOntologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ontology",
		Short: "Inspect ontology documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Report schema problems in an ontology document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ontology.LoadFile(args[0])
			if err != nil {
				return err
			}
			issues := ontology.ValidateDocument(doc)
			if len(issues) == 0 {
				if _, err := ontology.Parse(doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
				return nil
			}
			b, err := render.RenderJSON(issues)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return errors.Newf("%s: %d schema issue(s)", args[0], len(issues))
		},
	})
	return cmd
}
