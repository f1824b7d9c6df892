package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/parser"
	"github.com/dgallion1/doclink/internal/pipeline"
	"github.com/dgallion1/doclink/internal/render"
	"github.com/spf13/cobra"
)

func newLinkifyCmd(root *rootOptions) *cobra.Command {
	var (
		format    string
		output    string
		as        string
		sanitize  bool
		events    bool
		maxPasses int
	)
	cmd := &cobra.Command{
		Use:   "linkify FILE",
		Short: "Link the URLs of one document",
		Long: `Parse FILE, link every URL and e-mail address in it and write the result.

Use "-" to read from stdin; --as then names the input type (default .txt).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			matchers, err := root.matchers()
			if err != nil {
				return err
			}

			name, data, err := readInput(cmd.InOrStdin(), args[0], as)
			if err != nil {
				return err
			}
			p, err := parser.ForFile(name, parser.Options{PDFFallbackPdftotext: true})
			if err != nil {
				return err
			}
			tree, err := p.Parse(bytes.NewReader(data), name)
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}

			w := pipeline.NewWorker(pipeline.Options{
				Linkify: linkify.Options{Matchers: matchers, MaxPasses: maxPasses},
				Render:  render.Options{Sanitize: sanitize},
			}, nil, nil, root.log)
			out, evs, err := w.Linkify(tree, f)
			if err != nil {
				return err
			}
			root.log.Info("linked document", "file", name, "events", len(evs))

			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			} else if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}

			if events {
				enc := json.NewEncoder(cmd.ErrOrStderr())
				for _, ev := range evs {
					if err := enc.Encode(ev); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html, markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&as, "as", ".txt", "Input type when reading stdin, as a file extension")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "Sanitize HTML output")
	cmd.Flags().BoolVar(&events, "events", false, "Print link events to stderr as JSON lines")
	cmd.Flags().IntVar(&maxPasses, "max-passes", 0, "Transform pass limit (0 selects the default)")
	return cmd
}

func readInput(stdin io.Reader, path, as string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		if filepath.Ext(as) == "" {
			as = "." + as
		}
		return "stdin" + as, data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	return filepath.Base(path), data, nil
}
