package oauth

import (
	"context"
	"net/http"
	"time"

	"flightdeck-service/pkg/logger"

	"golang.org/x/oauth2/clientcredentials"
)

// ParserAuth builds the HTTP client used against the criteria parser
// service, handling token acquisition and refresh.
type ParserAuth struct {
	config *clientcredentials.Config
	logger logger.Logger
}

// NewParserAuth creates an auth handler for the parser service. Empty
// credentials mean the service is unauthenticated.
func NewParserAuth(clientID, clientSecret, tokenURL string, logger logger.Logger) *ParserAuth {
	if clientID == "" || tokenURL == "" {
		return &ParserAuth{logger: logger}
	}
	return &ParserAuth{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		logger: logger,
	}
}

// Client returns an HTTP client carrying bearer tokens, or a plain one when
// no credentials are configured.
func (a *ParserAuth) Client(ctx context.Context) *http.Client {
	if a.config == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	a.logger.Info("Using client-credentials auth for criteria parser", "tokenURL", a.config.TokenURL)
	client := a.config.Client(ctx)
	client.Timeout = 30 * time.Second
	return client
}
