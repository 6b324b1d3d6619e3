package main

import (
	"strings"

	trainsapi "github.com/BearBump/TrainBox/internal/api/trains_api"
	"github.com/BearBump/TrainBox/internal/models"
	"github.com/BearBump/TrainBox/internal/services/trains"
	"github.com/BearBump/TrainBox/internal/timeparse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLookupCmd(root *rootOpts) *cobra.Command {
	var origin, technicalID, at string

	cmd := &cobra.Command{
		Use:   "lookup <train-number>",
		Short: "Resolve a train number and print its live status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			hints := models.LookupHints{OriginCode: origin, TechnicalID: technicalID}
			if at = strings.TrimSpace(at); at != "" {
				ms, ok := timeparse.ParseString(at)
				if !ok {
					return errors.Errorf("--at: unrecognized timestamp %q", at)
				}
				hints.EpochMs = &ms
			}

			svc := trains.New(root.newClient(cfg), nil, "")
			res, err := svc.Lookup(cmd.Context(), args[0], hints)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trainsapi.Render(res))
		},
	}
	cmd.Flags().StringVarP(&origin, "origin", "o", "", "Origin station code, e.g. S01700")
	cmd.Flags().StringVar(&technicalID, "technical-id", "", "Technical id from a previous choice list, e.g. 555-S01700")
	cmd.Flags().StringVar(&at, "at", "", "Approximate departure: epoch ms, YYYYMMDDHHMM or a date string")
	return cmd
}
