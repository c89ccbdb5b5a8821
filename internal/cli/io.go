package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/observability"
	"github.com/matzehuels/reftext/pkg/reftext"
)

// stdinName labels input read from stdin in messages.
const stdinName = "<stdin>"

// readInput reads the document named by args[0]. No argument or "-" reads
// stdin.
func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return stdinName, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return stdinName, data, nil
	}
	return readFile(args[0])
}

func readFile(path string) (string, []byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return path, nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return path, nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return path, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return path, data, nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-". Text written to stdout gets a trailing newline.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		w := cmd.OutOrStdout()
		if _, err := w.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(w, "\n")
			return err
		}
		return nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	printFile(cmd.ErrOrStderr(), path)
	return nil
}

// decode deserializes text and reports the call to the codec hooks.
func decode(ctx context.Context, name string, data []byte) (any, error) {
	prog := newProgress(loggerFromContext(ctx))
	start := time.Now()
	v, err := reftext.Deserialize(string(data))
	observability.Codec().OnDeserialize(ctx, len(data), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	prog.done("Deserialized " + name)
	return v, nil
}

// encode serializes v and reports the call to the codec hooks.
func encode(ctx context.Context, v any, indent string) ([]byte, error) {
	start := time.Now()
	text, ok, err := reftext.SerializeWithOptions(v, reftext.EncodeOptions{Indent: indent})
	if err == nil && !ok {
		err = errors.New(errors.ErrCodeInvalidInput, "value of type %T has no text form", v)
	}
	observability.Codec().OnSerialize(ctx, len(text), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// indentFlag returns the --indent value when given, otherwise the config
// default.
func (c *CLI) indentFlag(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("indent") {
		return flag
	}
	return c.config.Indent
}
