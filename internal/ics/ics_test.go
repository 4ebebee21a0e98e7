package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/graphcal/internal/graph"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func decode(t *testing.T, data []byte) *ical.Component {
	t.Helper()

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)
	return events[0].Component
}

func TestRender_AllDay(t *testing.T) {
	event := &graph.Event{
		Subject:   "Offsite",
		Body:      &graph.ItemBody{},
		Start:     &graph.DateTimeTimeZone{DateTime: "2024-06-01", TimeZone: "UTC"},
		End:       &graph.DateTimeTimeZone{DateTime: "2024-06-02", TimeZone: "UTC"},
		IsAllDay:  true,
		Attendees: []graph.Attendee{},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, event, "uid-1@graphcal", testNow))

	out := buf.String()
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240601")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240602")
	assert.Contains(t, out, "PRODID:"+ProductID)

	vevent := decode(t, buf.Bytes())
	assert.Equal(t, "uid-1@graphcal", vevent.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "Offsite", vevent.Props.Get(ical.PropSummary).Value)
	assert.Nil(t, vevent.Props.Get(ical.PropDescription))
}

func TestRender_TimedWithOffset(t *testing.T) {
	event := &graph.Event{
		Subject: "Standup",
		Start:   &graph.DateTimeTimeZone{DateTime: "2024-06-01T09:00", TimeZone: "+02:00"},
		End:     &graph.DateTimeTimeZone{DateTime: "2024-06-01T09:15", TimeZone: "+02:00"},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, event, "uid-2", testNow))

	out := buf.String()
	assert.Contains(t, out, "DTSTART:20240601T070000Z")
	assert.Contains(t, out, "DTEND:20240601T071500Z")
	assert.Contains(t, out, "DTSTAMP:20240520T120000Z")
}

func TestRender_TimedWithNamedZone(t *testing.T) {
	event := &graph.Event{
		Subject: "Planning",
		Start:   &graph.DateTimeTimeZone{DateTime: "2024-06-01T09:00", TimeZone: "Europe/Berlin"},
		End:     &graph.DateTimeTimeZone{DateTime: "2024-06-01T10:00", TimeZone: "Europe/Berlin"},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, event, "uid-3", testNow))

	assert.Contains(t, buf.String(), "DTSTART;TZID=Europe/Berlin:20240601T090000")
}

func TestRender_AttendeesAndBody(t *testing.T) {
	online := true
	event := &graph.Event{
		Subject: "Review",
		Body:    &graph.ItemBody{ContentType: graph.ContentTypeHTML, Content: "<p>Agenda</p>"},
		Start:   &graph.DateTimeTimeZone{DateTime: "2024-06-01T09:00", TimeZone: "UTC"},
		End:     &graph.DateTimeTimeZone{DateTime: "2024-06-01T10:00", TimeZone: "UTC"},
		Attendees: []graph.Attendee{
			{Type: graph.AttendeeTypeRequired, EmailAddress: graph.EmailAddress{Address: "jane@example.com"}},
			{Type: graph.AttendeeTypeOptional, EmailAddress: graph.EmailAddress{Address: "joe@example.com", Name: "Joe"}},
			{Type: graph.AttendeeTypeResource, EmailAddress: graph.EmailAddress{Address: "room@example.com"}},
		},
		IsOnlineMeeting:       &online,
		OnlineMeetingProvider: graph.OnlineMeetingProviderTeams,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, event, "uid-4", testNow))

	vevent := decode(t, buf.Bytes())

	assert.Equal(t, "<p>Agenda</p>", vevent.Props.Get(ical.PropDescription).Value)
	assert.Equal(t, "text/html", vevent.Props.Get("X-ALT-DESC").Params.Get("FMTTYPE"))
	assert.Equal(t, graph.OnlineMeetingProviderTeams, vevent.Props.Get("X-MICROSOFT-ONLINEMEETINGPROVIDER").Value)

	attendees := vevent.Props.Values("ATTENDEE")
	require.Len(t, attendees, 3)

	byAddress := make(map[string]ical.Prop)
	for _, a := range attendees {
		byAddress[strings.ToLower(a.Value)] = a
	}
	assert.Equal(t, "REQ-PARTICIPANT", byAddress["mailto:jane@example.com"].Params.Get("ROLE"))
	assert.Equal(t, "OPT-PARTICIPANT", byAddress["mailto:joe@example.com"].Params.Get("ROLE"))
	assert.Equal(t, "Joe", byAddress["mailto:joe@example.com"].Params.Get("CN"))
	assert.Equal(t, "RESOURCE", byAddress["mailto:room@example.com"].Params.Get("CUTYPE"))
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, &graph.Event{Subject: "No times"}, "uid", testNow)
	assert.Error(t, err)

	err = Render(&buf, &graph.Event{
		Start: &graph.DateTimeTimeZone{DateTime: "2024-06-01T09:00", TimeZone: "Mars/Olympus_Mons"},
		End:   &graph.DateTimeTimeZone{DateTime: "2024-06-01T10:00", TimeZone: "UTC"},
	}, "uid", testNow)
	assert.ErrorContains(t, err, "unknown time zone")
}
