package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/reftext"
)

// fmtCommand creates the fmt command.
func (c *CLI) fmtCommand() *cobra.Command {
	var (
		indent string
		output string
	)

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Re-encode a reftext document",
		Long: `Deserialize a document and serialize it again.

The output uses canonical reference paths: every shared array or object is
written in full at the first place a depth-first walk reaches it.`,
		Example: `  reftext fmt doc.rt
  reftext fmt --indent "  " doc.rt -o pretty.rt
  cat doc.rt | reftext fmt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := decode(ctx, name, data)
			if err != nil {
				return err
			}
			text, err := encode(ctx, v, c.indentFlag(cmd, indent))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, text)
		},
	}

	cmd.Flags().StringVarP(&indent, "indent", "i", "", "indentation per nesting level (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate reftext documents",
		Long: `Deserialize each document and report where the first error occurs.

Exits non-zero if any document is invalid.`,
		Example: `  reftext check a.rt b.rt
  reftext check < doc.rt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				args = []string{"-"}
			}

			failed := 0
			for _, arg := range args {
				name, data, err := readInput(cmd, []string{arg})
				if err == nil {
					_, err = decode(ctx, name, data)
				}
				if err != nil {
					failed++
					printError(cmd.ErrOrStderr(), "%s", describeError(name, err))
					continue
				}
				if !quiet {
					printSuccess(cmd.ErrOrStderr(), "%s", name)
				}
			}

			if failed > 0 {
				return errors.New(errors.ErrCodeMalformed, "%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report invalid documents")
	return cmd
}

// describeError formats an error for the check report, naming the location
// of deserialization errors.
func describeError(name string, err error) string {
	var de *reftext.DeserializeError
	if errors.As(err, &de) {
		loc := de.Location
		return fmt.Sprintf("%s:%d: %s %s", name, loc.Line, de.Err.Message,
			StyleDim.Render(fmt.Sprintf("(%s, offset %d)", de.Code(), loc.Offset)))
	}
	return fmt.Sprintf("%s: %s", name, errors.UserMessage(err))
}

// fromJSONCommand creates the from-json command.
func (c *CLI) fromJSONCommand() *cobra.Command {
	var (
		indent string
		output string
	)

	cmd := &cobra.Command{
		Use:   "from-json [file]",
		Short: "Convert plain JSON to reftext",
		Long: `Read plain JSON and write it as reftext. Object key order is preserved.

JSON has no sharing, so the output never contains reference paths.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := reftext.FromJSON(data)
			if err != nil {
				return err
			}
			text, err := encode(ctx, v, c.indentFlag(cmd, indent))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, text)
		},
	}

	cmd.Flags().StringVarP(&indent, "indent", "i", "", "indentation per nesting level (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// toJSONCommand creates the to-json command.
func (c *CLI) toJSONCommand() *cobra.Command {
	var (
		indent string
		output string
	)

	cmd := &cobra.Command{
		Use:   "to-json [file]",
		Short: "Convert reftext to plain JSON",
		Long: `Read a reftext document and write it as plain JSON.

Shared values are written out once per reference. Documents with cycles
cannot be converted. Bigints and dates become strings; undefined, NaN and
infinities become null.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := decode(ctx, name, data)
			if err != nil {
				return err
			}
			out, err := reftext.ToJSON(v, c.indentFlag(cmd, indent))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}

	cmd.Flags().StringVarP(&indent, "indent", "i", "", "indentation per nesting level (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
