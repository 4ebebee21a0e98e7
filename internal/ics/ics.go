// Package ics renders Graph event payloads as iCalendar documents so that a
// dry run can show the event without contacting the server.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/teemow/graphcal/internal/graph"
)

// ProductID identifies graphcal as the producer of rendered calendars.
const ProductID = "-//graphcal//EN"

// Render writes event as a single VEVENT. uid and now fill UID and DTSTAMP,
// which a Graph payload does not carry.
func Render(w io.Writer, event *graph.Event, uid string, now time.Time) error {
	cal, err := ToCalendar(event, uid, now)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// ToCalendar converts event into an iCalendar object.
func ToCalendar(event *graph.Event, uid string, now time.Time) (*ical.Calendar, error) {
	if event.Start == nil || event.End == nil {
		return nil, fmt.Errorf("event has no start or end")
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	vevent := ical.NewComponent(ical.CompEvent)
	cal.Children = append(cal.Children, vevent)

	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

	if event.Subject != "" {
		vevent.Props.SetText(ical.PropSummary, event.Subject)
	}
	if event.Body != nil && event.Body.Content != "" {
		vevent.Props.SetText(ical.PropDescription, event.Body.Content)
		if event.Body.ContentType == graph.ContentTypeHTML {
			altDesc := ical.NewProp("X-ALT-DESC")
			altDesc.Params.Set("FMTTYPE", "text/html")
			altDesc.Value = event.Body.Content
			vevent.Props.Add(altDesc)
		}
	}

	for name, value := range map[string]*graph.DateTimeTimeZone{
		ical.PropDateTimeStart: event.Start,
		ical.PropDateTimeEnd:   event.End,
	} {
		if err := setDateTime(vevent, name, value, event.IsAllDay); err != nil {
			return nil, err
		}
	}

	for _, attendee := range event.Attendees {
		vevent.Props.Add(attendeeProp(attendee))
	}

	if event.IsOnlineMeeting != nil && *event.IsOnlineMeeting {
		vevent.Props.SetText("X-MICROSOFT-ONLINEMEETINGPROVIDER", event.OnlineMeetingProvider)
	}

	return cal, nil
}

func setDateTime(vevent *ical.Component, name string, value *graph.DateTimeTimeZone, allDay bool) error {
	if allDay {
		date, err := time.Parse("2006-01-02", value.DateTime)
		if err != nil {
			return fmt.Errorf("invalid %s date %q: %w", name, value.DateTime, err)
		}
		prop := ical.NewProp(name)
		prop.SetDate(date)
		vevent.Props.Set(prop)
		return nil
	}

	t, err := parseDateTime(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	vevent.Props.SetDateTime(name, t)
	return nil
}

// parseDateTime reads a wall-clock date-time in its zone. Times in a named
// zone keep it (TZID); offset-only times are converted to UTC.
func parseDateTime(value *graph.DateTimeTimeZone) (time.Time, error) {
	const layout = "2006-01-02T15:04"

	if strings.HasPrefix(value.TimeZone, "+") || strings.HasPrefix(value.TimeZone, "-") {
		t, err := time.Parse(layout+"-07:00", value.DateTime+value.TimeZone)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}

	loc, err := time.LoadLocation(value.TimeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown time zone %q: %w", value.TimeZone, err)
	}
	return time.ParseInLocation(layout, value.DateTime, loc)
}

func attendeeProp(attendee graph.Attendee) *ical.Prop {
	prop := ical.NewProp("ATTENDEE")
	prop.Value = "mailto:" + attendee.EmailAddress.Address
	if attendee.EmailAddress.Name != "" {
		prop.Params.Set("CN", attendee.EmailAddress.Name)
	}

	switch attendee.Type {
	case graph.AttendeeTypeOptional:
		prop.Params.Set("ROLE", "OPT-PARTICIPANT")
	case graph.AttendeeTypeResource:
		prop.Params.Set("CUTYPE", "RESOURCE")
		prop.Params.Set("ROLE", "NON-PARTICIPANT")
	default:
		prop.Params.Set("ROLE", "REQ-PARTICIPANT")
	}
	return prop
}
