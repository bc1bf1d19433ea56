// Package authenticator signs online accounts in and keeps their tokens.
package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

type AuthenticatorType string

const (
	ELY     AuthenticatorType = "ely"
	UNKNOWN AuthenticatorType = "unknown"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthUnavailable    = errors.New("authentication server unavailable")
)

type AuthenticatorResponse struct {
	UserUUID    string `json:"user_uuid"`
	Token       string `json:"token"`
	UserName    string `json:"username"`
	ClientToken string `json:"client_token"`
}

type Authenticator interface {
	GetType() AuthenticatorType
	AuthenticateWithCredentials(ctx context.Context, username, password string) (*AuthenticatorResponse, error)
}

// FindAuthenticatorFromURI builds an authenticator from a server uri such as
// ely://authserver.ely.by or an https base url of a Yggdrasil compatible server.
func FindAuthenticatorFromURI(uri string) (Authenticator, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	switch parsed.Scheme {
	case "ely":
		return NewElyAuthenticator("https://"+parsed.Host+parsed.Path, nil), nil
	case "http", "https":
		return NewElyAuthenticator(uri, nil), nil
	default:
		return nil, fmt.Errorf("invalid scheme: %s", parsed.Scheme)
	}
}
