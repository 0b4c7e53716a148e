package google

import (
	"fmt"
	"strings"

	"github.com/router-for-me/oauthloop/internal/auth/pkce"
	"golang.org/x/oauth2"
)

// AuthorizationRequest carries the values placed in the authorization URL.
type AuthorizationRequest struct {
	ClientID      string
	RedirectURI   string
	Scopes        string // space-delimited
	CodeChallenge string
}

// BuildAuthURL assembles the authorization endpoint URL for req. An empty
// endpoint selects AuthURL. The scope string is sent as given.
//
// Parameters:
//   - endpoint: The provider authorization endpoint
//   - req: The client parameters and PKCE challenge
//
// Returns:
//   - string: The complete authorization URL
//   - error: An error if a required value is missing
func BuildAuthURL(endpoint string, req AuthorizationRequest) (string, error) {
	if strings.TrimSpace(req.ClientID) == "" {
		return "", fmt.Errorf("client id is required")
	}
	if req.CodeChallenge == "" {
		return "", fmt.Errorf("PKCE code challenge is required")
	}
	if endpoint == "" {
		endpoint = AuthURL
	}

	conf := &oauth2.Config{
		ClientID:    req.ClientID,
		RedirectURL: req.RedirectURI,
		Endpoint:    oauth2.Endpoint{AuthURL: endpoint},
	}
	if req.Scopes != "" {
		conf.Scopes = []string{req.Scopes}
	}

	return conf.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", req.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
	), nil
}
