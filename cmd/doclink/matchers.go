package main

import (
	"fmt"

	"github.com/dgallion1/doclink/internal/autolink"
	"github.com/spf13/cobra"
)

func newMatchersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchers",
		Short: "Inspect link matchers",
	}
	cmd.AddCommand(newMatchersCheckCmd())
	return cmd
}

func newMatchersCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE [TEXT...]",
		Short: "Validate a matcher file and try it on sample text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchers, err := autolink.LoadMatchersFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d matchers\n", args[0], len(matchers))
			for _, text := range args[1:] {
				res := autolink.FindFirstMatch(text, matchers)
				if res == nil {
					fmt.Fprintf(out, "%q: no match\n", text)
					continue
				}
				fmt.Fprintf(out, "%q: %q -> %s\n", text, res.Text, res.URL)
			}
			return nil
		},
	}
}

