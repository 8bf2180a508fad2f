package gmail

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// OAuthConfig builds the authorization config shared by the Gmail poller and
// the Google Docs importer, so one consent covers both.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmailapi.GmailModifyScope,
			docsapi.DocumentsReadonlyScope,
			driveapi.DriveMetadataReadonlyScope,
		},
	}
}

// ResolveAccount asks the API whose mailbox a freshly exchanged token grants
// access to. The returned address keys the token and processed-state files.
func ResolveAccount(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (string, error) {
	service, err := gmailapi.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, token)))
	if err != nil {
		return "", fmt.Errorf("build gmail client failed: %w", err)
	}
	profile, err := service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetch gmail profile failed: %w", err)
	}
	return profile.EmailAddress, nil
}

// authErrorMarkers are the substrings Google returns when a refresh token
// has been revoked or the credential is otherwise dead. Retrying these is
// pointless; the credential must be re-issued by the user.
var authErrorMarkers = []string{"invalid_grant", "invalid_credentials"}

func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	// Google spells these both as "invalid_grant" (oauth2) and
	// "Invalid Credentials" (API 401s).
	msg := strings.ReplaceAll(strings.ToLower(err.Error()), " ", "_")
	for _, marker := range authErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
