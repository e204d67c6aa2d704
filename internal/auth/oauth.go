package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUser is the portion of Google's OpenID userinfo response we care
// about. Google returns more; we only unmarshal what we use.
type GoogleUser struct {
	Subject string `json:"sub"`   // Google's stable subject identifier — never changes
	Email   string `json:"email"` // may be empty if the email scope is withheld
}

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization Code
// flow.
//
// FLOW:
//  1. We redirect the browser to Google's authorization endpoint.
//  2. The user approves; Google redirects back with a short-lived code.
//  3. We exchange the code for an access token (server-to-server, using the
//     client secret — the token never touches the browser).
//  4. We call the userinfo endpoint for the subject identifier and email.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// callbackURL must exactly match an authorized redirect URI configured in
// the Google Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			// Minimal profile scope: the subject comes with "openid"; we add
			// "email" so the account gets a readable username.
			Scopes:   []string{"openid", "email"},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization. The
// state is verified on callback — see StateTokens.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's Google identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// Client returns an *http.Client that attaches the bearer token.
	client := p.config.Client(ctx, token)

	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gUser.Subject == "" {
		return nil, fmt.Errorf("auth: Google returned an empty subject")
	}

	return &gUser, nil
}
