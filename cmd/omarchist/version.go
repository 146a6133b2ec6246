package main

import (
	"fmt"

	"github.com/omarchist/omarchist/internal/infrastructure/output"
	"github.com/omarchist/omarchist/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd(opts *globalOptions) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of omarchist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}

			// Structured formats only; the version command never needs the container.
			if format := opts.viper.GetString("output"); format != "" && format != "table" {
				f, err := output.NewFormatterFactory().Create(format, cmd.OutOrStdout(), output.Options{})
				if err != nil {
					return err
				}
				return f.Format(info)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "omarchist version %s\n", info.Full())
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
