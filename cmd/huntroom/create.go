package main

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/caravela-games/huntroom/internal/roomcode"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	j := &joinOptions{master: true}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and join it as the table master.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}

			j.room = roomcode.New()
			fmt.Printf("Sala criada: %s\n", j.room)

			// QR carries only the code; the password travels by word of mouth.
			if qr, err := qrcode.New("huntroom://join?room="+j.room, qrcode.Medium); err == nil {
				fmt.Print(qr.ToSmallString(false))
			}

			return runTable(cmd.Context(), cfg, logger, j)
		},
	}

	cmd.Flags().StringVar(&j.name, "name", "", "player name")
	cmd.Flags().StringVar(&j.password, "password", "", "room password")
	cmd.Flags().StringVar(&j.relayURL, "relay", "", "relay websocket URL (overrides config)")
	cmd.Flags().StringVar(&j.sheetPath, "sheet", "", "character sheet JSON to upload on join")

	return cmd
}
