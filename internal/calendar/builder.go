package calendar

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/teemow/graphcal/internal/graph"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	offsetLayout   = "-07:00"
)

// BuildEvent turns req into the Graph event payload. It performs no I/O.
// Every attendee email, including the location, must be a bare address.
func BuildEvent(req EventRequest) (*graph.Event, error) {
	if req.End.Before(req.Start) {
		return nil, &InputError{
			Reason: ReasonTimeRange,
			Detail: fmt.Sprintf("end %s is before start %s", req.End.Format(time.RFC3339), req.Start.Format(time.RFC3339)),
		}
	}

	attendees := make([]graph.Attendee, 0, len(req.Attendees)+1)
	for _, a := range req.Attendees {
		attendee, err := buildAttendee(a)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, attendee)
	}
	if req.LocationID != nil {
		attendee, err := buildAttendee(Attendee{Email: *req.LocationID, Role: RoleResource})
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, attendee)
	}

	event := &graph.Event{
		Subject:   req.Subject,
		Body:      buildBody(req.Content, req.BodyType),
		Start:     formatDateTime(req.Start, req.AllDay),
		End:       formatDateTime(req.End, req.AllDay),
		IsAllDay:  req.AllDay,
		Attendees: attendees,
	}

	if req.OnlineMeeting != nil {
		online := *req.OnlineMeeting
		event.IsOnlineMeeting = &online
		if online {
			event.OnlineMeetingProvider = graph.OnlineMeetingProviderTeams
		}
	}

	return event, nil
}

func buildBody(content *string, bodyType BodyType) *graph.ItemBody {
	body := &graph.ItemBody{}
	if content == nil {
		return body
	}

	body.Content = *content
	switch bodyType {
	case BodyHTML:
		body.ContentType = graph.ContentTypeHTML
	default:
		body.ContentType = graph.ContentTypeText
	}
	return body
}

func buildAttendee(a Attendee) (graph.Attendee, error) {
	role := a.Role
	if role == "" {
		role = RoleRequired
	}
	if !role.Valid() {
		return graph.Attendee{}, &InputError{Reason: ReasonAttendeeRole, Detail: fmt.Sprintf("unknown attendee role %q", a.Role)}
	}
	if err := ValidateEmail(a.Email); err != nil {
		return graph.Attendee{}, err
	}

	return graph.Attendee{
		Type:         string(role),
		EmailAddress: graph.EmailAddress{Address: a.Email},
	}, nil
}

// ValidateEmail checks that email is a single RFC 5322 addr-spec without a
// display name or angle brackets.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || strings.ContainsAny(email, "<>") || strings.TrimSpace(email) != email {
		return &InputError{Reason: ReasonAttendeeEmail, Detail: fmt.Sprintf("malformed email address %q", email)}
	}
	return nil
}

// formatDateTime renders t in its own location. All-day values carry only
// the date.
func formatDateTime(t time.Time, allDay bool) *graph.DateTimeTimeZone {
	layout := dateTimeLayout
	if allDay {
		layout = dateLayout
	}
	return &graph.DateTimeTimeZone{
		DateTime: t.Format(layout),
		TimeZone: timeZoneName(t),
	}
}

// timeZoneName returns the IANA name of t's location, or its UTC offset
// (e.g. "+02:00") when the location has no loadable name or the loaded zone
// disagrees with t's own offset at t.
func timeZoneName(t time.Time) string {
	name := t.Location().String()
	if name != "" && name != "Local" {
		if loc, err := time.LoadLocation(name); err == nil {
			_, want := t.Zone()
			if _, got := t.In(loc).Zone(); got == want {
				return name
			}
		}
	}
	return t.Format(offsetLayout)
}
