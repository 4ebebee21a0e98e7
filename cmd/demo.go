package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/graphcal/internal/calendar"
	"github.com/teemow/graphcal/internal/config"
)

func newDemoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Create the demo event from the config file",
		Long: `Create the event described by the [demo] section of the config file in
the configured user's calendar and print its id, web link and join URL.

Without a [demo] section a one-hour event tomorrow at 10:00 is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			req, err := demoRequest(a.cfg.Demo, time.Now())
			if err != nil {
				return err
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			result, err := client.CreateOrUpdateEvent(cmd.Context(), a.cfg.UserID, req)
			if err != nil {
				return err
			}

			if err := printResult(a.out, result, outputText); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Now you can find the event in the calendar of %s.\n", a.cfg.UserID)
			return nil
		},
	}
}

// demoRequest builds the demo event.
func demoRequest(demo config.DemoConfig, now time.Time) (calendar.EventRequest, error) {
	start, err := demo.StartTime(now)
	if err != nil {
		return calendar.EventRequest{}, err
	}

	duration := demo.Duration
	if duration <= 0 {
		duration = time.Hour
	}

	req := calendar.EventRequest{
		Subject: demo.Subject,
		Start:   start,
		End:     start.Add(duration),
	}
	if demo.Description != "" {
		description := demo.Description
		req.Content = &description
		req.BodyType = calendar.BodyText
	}
	if demo.OnlineMeeting {
		online := true
		req.OnlineMeeting = &online
	}

	req.Attendees = append(req.Attendees, calendar.AttendeesWithRole(calendar.RoleRequired, demo.Required...)...)
	req.Attendees = append(req.Attendees, calendar.AttendeesWithRole(calendar.RoleOptional, demo.Optional...)...)
	req.Attendees = append(req.Attendees, calendar.AttendeesWithRole(calendar.RoleResource, demo.Resource...)...)

	return req, nil
}
