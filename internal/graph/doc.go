// Package graph is a minimal Microsoft Graph client for calendar events.
//
// It covers exactly three calls against a single user's default calendar:
//
//	POST   /users/{userId}/calendar/events
//	PATCH  /users/{userId}/calendar/events/{eventId}
//	DELETE /users/{userId}/calendar/events/{eventId}
//
// Authentication uses the OAuth 2.0 client-credentials flow against the Azure AD
// token endpoint of a tenant. Token acquisition and caching are handled by
// golang.org/x/oauth2; the HTTP client returned by NewClientCredentialsHTTPClient
// attaches a bearer token to every request.
//
// Example usage:
//
//	httpClient, err := graph.NewClientCredentialsHTTPClient(ctx, graph.Credentials{
//	    TenantID:     tenantID,
//	    ClientID:     clientID,
//	    ClientSecret: clientSecret,
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gw := graph.NewHTTPGateway(httpClient)
//	created, err := gw.CreateEvent(ctx, "user@example.com", event)
package graph
