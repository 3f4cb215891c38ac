package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parallel-timeline/internal/timeline"
)

// errInvalid is returned by validate when the document has issues. The
// issues themselves are already printed.
var errInvalid = errors.New("timeline has validation issues")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timelinectl",
		Short:         "Work with parallel timeline documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(), newInspectCmd(), newValidateCmd())
	return root
}

func newConvertCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a timeline between JSON, YAML and CSV",
		Long: `Convert a timeline document between formats.

Formats are taken from the file extensions (.json, .yaml/.yml, .csv) unless
--from or --to is given. Use "-" for stdin or stdout.

CSV carries one row per event and has no audio columns, so background audio is
lost when converting to CSV.

Examples:
  timelinectl convert timeline.csv timeline.json
  timelinectl convert timeline.json - --to yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inFormat, err := resolveFormat(args[0], from)
			if err != nil {
				return err
			}
			outFormat, err := resolveFormat(args[1], to)
			if err != nil {
				return err
			}

			doc, err := readDocument(cmd.InOrStdin(), args[0], inFormat)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), args[1], doc, outFormat)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input format (json, yaml, csv)")
	cmd.Flags().StringVar(&to, "to", "", "Output format (json, yaml, csv)")
	return cmd
}

// inspectReport is the --json output of inspect.
type inspectReport struct {
	Eras        int                   `json:"eras"`
	Pages       []timeline.Page       `json:"pages"`
	DrawerCards []timeline.DrawerCard `json:"drawerCards"`
	AppTracks   []string              `json:"appTracks"`
}

func newInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the page sequence and drawer cards of a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := timeline.LoadFile(args[0])
			if err != nil {
				return err
			}
			tl := timeline.New(doc)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(inspectReport{
					Eras:        len(tl.Eras),
					Pages:       tl.Pages,
					DrawerCards: tl.DrawerCards,
					AppTracks:   tl.AppTracks.URLs(),
				})
			}

			fmt.Fprintf(out, "%d eras, %d pages, %d app tracks\n\n", len(tl.Eras), tl.PageCount(), len(tl.AppTracks))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PAGE\tERA\tKIND\tTITLE\tMAIN\tCOMPARATIVE")
			for i, p := range tl.Pages {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
					i, p.EraTitle.Headline, p.Kind, p.Title.Headline, len(p.MainEvents), len(p.ComparativeEvents))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ERA\tLABEL\tFIRST PAGE\tTRACKS")
			for _, c := range tl.DrawerCards {
				era, _ := tl.Era(c.EraID)
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", c.EraID, c.Label, c.FirstPageIndex, len(era.BackgroundAudios))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a timeline for broken images and unknown positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := timeline.LoadFile(args[0])
			if err != nil {
				return err
			}
			issues := timeline.Validate(doc)
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())
			}
			return fmt.Errorf("%w: %d found", errInvalid, len(issues))
		},
	}
}

func resolveFormat(path, flag string) (timeline.Format, error) {
	if flag != "" {
		switch f := timeline.Format(flag); f {
		case timeline.FormatJSON, timeline.FormatYAML, timeline.FormatCSV:
			return f, nil
		default:
			return "", fmt.Errorf("%w: %q", timeline.ErrUnsupportedFormat, flag)
		}
	}
	if path == "-" {
		return timeline.FormatJSON, nil
	}
	return timeline.FormatFromPath(path)
}

func readDocument(stdin io.Reader, path string, format timeline.Format) (timeline.Document, error) {
	if path == "-" {
		return timeline.Decode(stdin, format)
	}
	f, err := os.Open(path)
	if err != nil {
		return timeline.Document{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return timeline.Decode(f, format)
}

func writeDocument(stdout io.Writer, path string, doc timeline.Document, format timeline.Format) error {
	if path == "-" {
		return timeline.Encode(stdout, doc, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := timeline.Encode(f, doc, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
