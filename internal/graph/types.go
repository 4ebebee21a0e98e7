package graph

import "context"

// Attendee types understood by Graph.
const (
	AttendeeTypeRequired = "required"
	AttendeeTypeOptional = "optional"
	AttendeeTypeResource = "resource"
)

// Body content types understood by Graph.
const (
	ContentTypeText = "text"
	ContentTypeHTML = "html"
)

// OnlineMeetingProviderTeams is the provider requested for online meetings.
const OnlineMeetingProviderTeams = "teamsForBusiness"

// Event is the subset of the Graph event resource this client reads and writes.
type Event struct {
	ID            string            `json:"id,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
	Subject       string            `json:"subject,omitempty"`
	Body          *ItemBody         `json:"body,omitempty"`
	Start         *DateTimeTimeZone `json:"start,omitempty"`
	End           *DateTimeTimeZone `json:"end,omitempty"`
	IsAllDay      bool              `json:"isAllDay"`
	Attendees     []Attendee        `json:"attendees"`

	// IsOnlineMeeting is tri-state: nil leaves the remote value untouched.
	IsOnlineMeeting       *bool              `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider string             `json:"onlineMeetingProvider,omitempty"`
	OnlineMeeting         *OnlineMeetingInfo `json:"onlineMeeting,omitempty"`

	// WebLink is set by the server only.
	WebLink string `json:"webLink,omitempty"`
}

// ItemBody is the body of an event.
type ItemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

// DateTimeTimeZone is a wall-clock date or date-time plus the zone it is in.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Attendee is an event attendee.
type Attendee struct {
	Type         string       `json:"type"`
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress identifies an attendee or a bookable resource.
type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// OnlineMeetingInfo holds the details of the online meeting attached to an event.
type OnlineMeetingInfo struct {
	JoinURL string `json:"joinUrl,omitempty"`
}

// Gateway is the set of calendar operations the rest of the application needs.
// Implementations must be safe for concurrent use.
type Gateway interface {
	CreateEvent(ctx context.Context, userID string, event *Event) (*Event, error)
	UpdateEvent(ctx context.Context, userID, eventID string, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}
