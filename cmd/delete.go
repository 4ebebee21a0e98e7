package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a calendar event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			client, err := a.client()
			if err != nil {
				return err
			}

			if err := client.DeleteEvent(cmd.Context(), a.cfg.UserID, eventID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted event %s\n", eventID)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "event-id", "", "Id of the event to delete")
	_ = cmd.MarkFlagRequired("event-id")
	return cmd
}
