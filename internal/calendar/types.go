package calendar

import (
	"fmt"
	"strings"
	"time"
)

// AttendeeRole is the part an attendee plays in an event.
type AttendeeRole string

const (
	RoleRequired AttendeeRole = "required"
	RoleOptional AttendeeRole = "optional"

	// RoleResource marks a bookable room or piece of equipment.
	RoleResource AttendeeRole = "resource"
)

// Valid reports whether r is one of the known roles.
func (r AttendeeRole) Valid() bool {
	switch r {
	case RoleRequired, RoleOptional, RoleResource:
		return true
	}
	return false
}

// ParseAttendeeRole parses a role name case-insensitively.
func ParseAttendeeRole(s string) (AttendeeRole, error) {
	role := AttendeeRole(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", &InputError{Reason: ReasonAttendeeRole, Detail: fmt.Sprintf("unknown attendee role %q", s)}
	}
	return role, nil
}

// Attendee is an invitee of an event. An empty Role means RoleRequired.
type Attendee struct {
	Email string
	Role  AttendeeRole
}

// AttendeesWithRole tags every email with the same role.
func AttendeesWithRole(role AttendeeRole, emails ...string) []Attendee {
	attendees := make([]Attendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, Attendee{Email: email, Role: role})
	}
	return attendees
}

// BodyType is the content type of an event body.
type BodyType string

const (
	BodyText BodyType = "text"
	BodyHTML BodyType = "html"
)

// EventRequest describes an event to create or update.
type EventRequest struct {
	Subject string
	Start   time.Time
	End     time.Time

	// AllDay drops the time of day from Start and End
	AllDay bool

	// Content is the event body; nil leaves the body empty
	Content  *string
	BodyType BodyType

	// OnlineMeeting is tri-state: nil leaves the online meeting setting alone
	OnlineMeeting *bool

	Attendees []Attendee

	// LocationID is the email address of a room to book; it is added as a
	// resource attendee
	LocationID *string

	// EventID selects update when set and create when nil
	EventID *string
}

// EventResult is what the calendar reports back after a create or update.
type EventResult struct {
	ID      string
	WebLink string

	// JoinURL is empty unless the event has an online meeting
	JoinURL string
}
