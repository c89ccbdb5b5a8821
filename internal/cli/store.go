package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// storeCommand creates the document store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep documents in the configured store",
		Long: `Put, get and remove documents in the store selected by the config file
(file, redis, mongo or none). Documents keep their shared and cyclic
structure; identical documents share one id.`,
	}

	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeRmCommand())

	return cmd
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Store a document and print its id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if id != "" {
				v, err := decode(ctx, name, data)
				if err != nil {
					return err
				}
				if err := s.Save(ctx, id, v); err != nil {
					return err
				}
			} else {
				id, err = s.PutText(ctx, string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "store under this id, replacing any previous document")
	return cmd
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var (
		output string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if raw {
				text, err := s.GetText(ctx, args[0])
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, []byte(text))
			}

			v, err := s.Get(ctx, args[0])
			if err != nil {
				return err
			}
			text, err := encode(ctx, v, c.config.Indent)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, text)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored text without decoding it")
	return cmd
}

// storeRmCommand creates the "store rm" subcommand.
func (c *CLI) storeRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove stored documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, id := range args {
				if err := s.Delete(ctx, id); err != nil {
					return err
				}
			}
			printSuccess(cmd.ErrOrStderr(), "Removed %d documents", len(args))
			return nil
		},
	}
}
