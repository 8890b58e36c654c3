package main

import (
	"github.com/spf13/cobra"
)

type joinOptions struct {
	room      string
	name      string
	password  string
	master    bool
	relayURL  string
	sheetPath string
}

func newJoinCmd(opts *rootOptions) *cobra.Command {
	j := &joinOptions{}

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join an existing room and chat from the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			return runTable(cmd.Context(), cfg, logger, j)
		},
	}

	cmd.Flags().StringVar(&j.room, "room", "", "room code (defaults to the last joined room)")
	cmd.Flags().StringVar(&j.name, "name", "", "player name (defaults to the last used name)")
	cmd.Flags().StringVar(&j.password, "password", "", "room password")
	cmd.Flags().BoolVar(&j.master, "master", false, "join as the table master")
	cmd.Flags().StringVar(&j.relayURL, "relay", "", "relay websocket URL (overrides config)")
	cmd.Flags().StringVar(&j.sheetPath, "sheet", "", "character sheet JSON to upload on join")

	return cmd
}
