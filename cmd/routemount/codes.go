package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/routemount/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `Without arguments, list every error code routemount reports. With a
code, print its category, description and suggested fix.

Examples:
  routemount errors
  routemount errors E202`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tCATEGORY\tMESSAGE")
				for _, code := range errors.GetAllCodes() {
					t, _ := errors.GetTemplate(code)
					fmt.Fprintf(tw, "%s\t%s\t%s\n", code, t.Category, t.Message)
				}
				return tw.Flush()
			}

			code := strings.ToUpper(args[0])
			t, ok := errors.GetTemplate(code)
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Run 'routemount errors' to list codes")
			}

			fmt.Fprintf(w, "%s: %s\n", code, t.Message)
			fmt.Fprintf(w, "  Category: %s\n", t.Category)
			if t.Detail != "" {
				fmt.Fprintf(w, "  %s\n", t.Detail)
			}
			if t.Suggestion != "" {
				fmt.Fprintf(w, "  Hint: %s\n", t.Suggestion)
			}
			return nil
		},
	}
}
