// Package calendar creates, updates and deletes events in a Microsoft 365
// user's calendar.
//
// BuildEvent turns an EventRequest into the Graph payload without any I/O:
// attendee emails are validated, all-day events are formatted as plain dates
// and timed events as wall-clock date-times tagged with the timestamp's own
// time zone. Client sends the payload through a graph.Gateway that it builds
// lazily from client credentials, and maps failures to ErrInvalidInput,
// *NotFoundError and *InvalidStateError. Any other gateway error is returned
// unchanged.
//
// Example usage:
//
//	client := calendar.NewClient(tenantID, clientID, clientSecret,
//	    calendar.WithLogger(logger))
//
//	online := true
//	result, err := client.CreateOrUpdateEvent(ctx, "jane@example.com", calendar.EventRequest{
//	    Subject:       "Planning",
//	    Start:         start,
//	    End:           start.Add(time.Hour),
//	    OnlineMeeting: &online,
//	    Attendees:     calendar.AttendeesWithRole(calendar.RoleRequired, "joe@example.com"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.ID, result.JoinURL)
package calendar
