package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/graphcal/internal/calendar"
	"github.com/teemow/graphcal/internal/ics"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputICS  = "ics"
)

// eventFlags are the flags shared by create and update.
type eventFlags struct {
	subject       string
	start         string
	end           string
	timezone      string
	allDay        bool
	body          string
	html          bool
	required      []string
	optional      []string
	resource      []string
	attendees     []string
	location      string
	onlineMeeting bool
	dryRun        bool
	output        string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.subject, "subject", "", "Event subject")
	flags.StringVar(&f.start, "start", "", "Start as RFC 3339, 2006-01-02T15:04 or 2006-01-02 (a bare date makes an all-day event)")
	flags.StringVar(&f.end, "end", "", "End in the same formats as --start (default: one hour or one day after start)")
	flags.StringVar(&f.timezone, "timezone", "", "IANA time zone for the event, e.g. Europe/Berlin (default: the zone of --start)")
	flags.BoolVar(&f.allDay, "all-day", false, "Create an all-day event")
	flags.StringVar(&f.body, "body", "", "Event body")
	flags.BoolVar(&f.html, "html", false, "Treat --body as HTML")
	flags.StringArrayVar(&f.required, "required", nil, "Required attendee email (repeatable)")
	flags.StringArrayVar(&f.optional, "optional", nil, "Optional attendee email (repeatable)")
	flags.StringArrayVar(&f.resource, "resource", nil, "Resource (room, equipment) email (repeatable)")
	flags.StringArrayVar(&f.attendees, "attendee", nil, "Attendee as email[:role], role one of required, optional, resource (repeatable)")
	flags.StringVar(&f.location, "location", "", "Email address of the room to book")
	flags.BoolVar(&f.onlineMeeting, "online-meeting", false, "Attach a Teams meeting (--online-meeting=false removes it)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Print the event instead of sending it")
	flags.StringVarP(&f.output, "output", "o", outputText, "Output format: text, json, or ics (ics requires --dry-run)")
}

// request turns the parsed flags into an event request.
func (f *eventFlags) request(cmd *cobra.Command) (calendar.EventRequest, error) {
	flags := cmd.Flags()

	loc := time.Local
	if f.timezone != "" {
		var err error
		if loc, err = time.LoadLocation(f.timezone); err != nil {
			return calendar.EventRequest{}, fmt.Errorf("invalid --timezone: %w", err)
		}
	}

	start, dateOnly, err := parseTime(f.start, loc, f.timezone != "")
	if err != nil {
		return calendar.EventRequest{}, fmt.Errorf("invalid --start: %w", err)
	}
	allDay := f.allDay || dateOnly
	if allDay {
		start = truncateToDate(start)
	}

	var end time.Time
	switch {
	case f.end != "":
		if end, _, err = parseTime(f.end, loc, f.timezone != ""); err != nil {
			return calendar.EventRequest{}, fmt.Errorf("invalid --end: %w", err)
		}
		if allDay {
			end = truncateToDate(end)
		}
	case allDay:
		end = start.AddDate(0, 0, 1)
	default:
		end = start.Add(time.Hour)
	}

	req := calendar.EventRequest{
		Subject: f.subject,
		Start:   start,
		End:     end,
		AllDay:  allDay,
	}

	if flags.Changed("body") {
		body := f.body
		req.Content = &body
		req.BodyType = calendar.BodyText
		if f.html {
			req.BodyType = calendar.BodyHTML
		}
	}
	if flags.Changed("online-meeting") {
		online := f.onlineMeeting
		req.OnlineMeeting = &online
	}
	if f.location != "" {
		location := f.location
		req.LocationID = &location
	}

	req.Attendees = append(req.Attendees, calendar.AttendeesWithRole(calendar.RoleRequired, f.required...)...)
	req.Attendees = append(req.Attendees, calendar.AttendeesWithRole(calendar.RoleOptional, f.optional...)...)
	req.Attendees = append(req.Attendees, calendar.AttendeesWithRole(calendar.RoleResource, f.resource...)...)
	for _, value := range f.attendees {
		attendee, err := parseAttendee(value)
		if err != nil {
			return calendar.EventRequest{}, fmt.Errorf("invalid --attendee: %w", err)
		}
		req.Attendees = append(req.Attendees, attendee)
	}

	return req, nil
}

// parseAttendee parses "email" or "email:role".
func parseAttendee(value string) (calendar.Attendee, error) {
	email, roleName, found := cutLast(value, ":")
	if !found {
		return calendar.Attendee{Email: value, Role: calendar.RoleRequired}, nil
	}
	role, err := calendar.ParseAttendeeRole(roleName)
	if err != nil {
		return calendar.Attendee{}, err
	}
	return calendar.Attendee{Email: email, Role: role}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}

func (f *eventFlags) validateOutput() error {
	switch f.output {
	case outputText, outputJSON:
		return nil
	case outputICS:
		if !f.dryRun {
			return fmt.Errorf("--output %s requires --dry-run", outputICS)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected %s, %s or %s)", f.output, outputText, outputJSON, outputICS)
	}
}

// parseTime accepts RFC 3339, a local date-time or a bare date. Local values
// are read in loc; with inZone set, RFC 3339 values are converted into loc.
func parseTime(value string, loc *time.Location, inZone bool) (t time.Time, dateOnly bool, err error) {
	if value == "" {
		return time.Time{}, false, fmt.Errorf("a value is required")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		if inZone {
			t = t.In(loc)
		}
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, loc); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as RFC 3339, 2006-01-02T15:04 or 2006-01-02", value)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// printDryRun writes the event payload that would be sent.
func printDryRun(w io.Writer, req calendar.EventRequest, output string) error {
	event, err := calendar.BuildEvent(req)
	if err != nil {
		return err
	}

	if output == outputICS {
		return ics.Render(w, event, uuid.NewString()+"@graphcal", time.Now())
	}

	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printResult reports a created or updated event.
func printResult(w io.Writer, result *calendar.EventResult, output string) error {
	if output == outputJSON {
		data, err := json.MarshalIndent(struct {
			ID      string `json:"id"`
			WebLink string `json:"webLink,omitempty"`
			JoinURL string `json:"joinUrl,omitempty"`
		}{result.ID, result.WebLink, result.JoinURL}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "Event ID: %s\n", result.ID)
	if result.WebLink != "" {
		fmt.Fprintf(w, "Web link: %s\n", result.WebLink)
	}
	if result.JoinURL != "" {
		fmt.Fprintf(w, "Join URL: %s\n", result.JoinURL)
	}
	return nil
}

// runEvent sends or prints the event described by flags. eventID is nil for
// create.
func runEvent(cmd *cobra.Command, opts *globalOptions, flags *eventFlags, eventID *string) error {
	if err := flags.validateOutput(); err != nil {
		return err
	}

	req, err := flags.request(cmd)
	if err != nil {
		return err
	}
	req.EventID = eventID

	if flags.dryRun {
		return printDryRun(cmd.OutOrStdout(), req, flags.output)
	}

	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())

	client, err := a.client()
	if err != nil {
		return err
	}

	result, err := client.CreateOrUpdateEvent(cmd.Context(), a.cfg.UserID, req)
	if err != nil {
		return err
	}
	return printResult(a.out, result, flags.output)
}

func newCreateCmd(opts *globalOptions) *cobra.Command {
	flags := &eventFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a calendar event",
		Example: `  graphcal create --subject "Planning" --start 2024-06-01T09:00 --timezone Europe/Berlin \
    --required jane@example.com --online-meeting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvent(cmd, opts, flags, nil)
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	flags := &eventFlags{}
	var eventID string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an existing calendar event",
		Long: `Update an existing event. Subject, start, end, body and attendees are
replaced with the given values; the online meeting setting is only changed
when --online-meeting is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvent(cmd, opts, flags, &eventID)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&eventID, "event-id", "", "Id of the event to update")
	_ = cmd.MarkFlagRequired("event-id")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
