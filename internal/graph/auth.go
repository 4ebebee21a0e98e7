package graph

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"

	"github.com/teemow/graphcal/internal/instrumentation"
)

const (
	// DefaultBaseURL is the Graph v1.0 service root.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultScope requests every application permission granted to the app.
	DefaultScope = "https://graph.microsoft.com/.default"
)

// Credentials identifies an Azure AD application using a client secret.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// TokenURL overrides the tenant's token endpoint (tests, sovereign clouds)
	TokenURL string

	// Scopes defaults to DefaultScope
	Scopes []string
}

// Validate checks that every required credential is present.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.TenantID) == "" && c.TokenURL == "" {
		missing = append(missing, "tenant id")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return errors.New("missing graph credentials: " + strings.Join(missing, ", "))
	}
	return nil
}

func (c Credentials) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return microsoft.AzureADEndpoint(c.TenantID).TokenURL
}

func (c Credentials) scopes() []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	return []string{DefaultScope}
}

// NewClientCredentialsHTTPClient returns an HTTP client that authenticates every
// request with an app-only access token. Tokens are fetched on first use and
// reused until they expire. metrics may be nil.
func NewClientCredentialsHTTPClient(ctx context.Context, creds Credentials, metrics *instrumentation.Metrics) (*http.Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	conf := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.tokenURL(),
		Scopes:       creds.scopes(),
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// The token source outlives the call that created it.
	ctx = context.WithoutCancel(ctx)

	ts := oauth2.ReuseTokenSource(nil, &recordingTokenSource{
		ctx:     ctx,
		conf:    conf,
		metrics: metrics,
	})
	return oauth2.NewClient(ctx, ts), nil
}

// recordingTokenSource fetches a fresh token on every call and counts the
// fetch. It is the only source under the ReuseTokenSource, so every call is a
// request to the token endpoint.
type recordingTokenSource struct {
	ctx     context.Context
	conf    *clientcredentials.Config
	metrics *instrumentation.Metrics
}

// Token implements oauth2.TokenSource.
func (r *recordingTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.conf.Token(r.ctx)
	result := instrumentation.TokenResultSuccess
	if err != nil {
		result = instrumentation.TokenResultFailure
	}
	r.metrics.RecordTokenRequest(r.ctx, result)
	return token, err
}
