// README: Firebase Admin SDK verifier turning ID tokens into petcare callers.
package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	ErrMissingProjectID = errors.New("firebase project id is required")
	ErrNoSubject        = errors.New("token has no subject")
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UID string
	// Role is the "role" custom claim set through the Admin SDK; empty for customers.
	Role  string
	Email string
}

// CallerFromClaims builds a Caller from a verified token's uid and claims.
// Non-string claim values are ignored.
func CallerFromClaims(uid string, claims map[string]interface{}) (*Caller, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, ErrNoSubject
	}
	c := &Caller{UID: uid}
	if role, ok := claims["role"].(string); ok {
		c.Role = strings.ToLower(strings.TrimSpace(role))
	}
	if email, ok := claims["email"].(string); ok {
		c.Email = email
	}
	return c, nil
}

// TokenVerifier verifies a raw Firebase ID token and returns the caller it names.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Caller, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier uses credentialsFile when set, otherwise application-default
// credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrMissingProjectID
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Caller, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return CallerFromClaims(token.UID, token.Claims)
}
