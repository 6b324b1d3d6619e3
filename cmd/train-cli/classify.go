package main

import (
	"github.com/BearBump/TrainBox/internal/trainkind"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>...",
		Short: "Classify category text, most authoritative first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), trainkind.Classify(args...))
		},
	}
}
