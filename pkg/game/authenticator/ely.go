package authenticator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"limeal.fr/cobalt/pkg/utils"
)

////////////////////////////////////////////////////////////
// Constants & Types
////////////////////////////////////////////////////////////

const (
	DefaultElyAuthURL    = "https://authserver.ely.by"
	ElyAuthenticatePath  = "/auth/authenticate"
	elyFallbackErrorText = "authentication failed"
)

type ElyAuthenticationRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientToken string `json:"clientToken"`
	RequestUser bool   `json:"requestUser"`
}

type ElyProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ElyAuthenticationResponse struct {
	AccessToken     string     `json:"accessToken"`
	ClientToken     string     `json:"clientToken"`
	SelectedProfile ElyProfile `json:"selectedProfile"`
}

type ElyErrorResponse struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

////////////////////////////////////////////////////////////
// Authenticator
////////////////////////////////////////////////////////////

type ElyAuthenticator struct {
	baseURL string
	client  *resty.Client
}

func NewElyAuthenticator(baseURL string, client *resty.Client) *ElyAuthenticator {
	if baseURL == "" {
		baseURL = DefaultElyAuthURL
	}
	if client == nil {
		client = utils.NewMetaClient(2, 0)
	}
	return &ElyAuthenticator{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (a *ElyAuthenticator) GetType() AuthenticatorType {
	return ELY
}

func (a *ElyAuthenticator) AuthenticateWithCredentials(ctx context.Context, username, password string) (*AuthenticatorResponse, error) {
	body := ElyAuthenticationResponse{}
	failure := ElyErrorResponse{}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(ElyAuthenticationRequest{
			Username:    username,
			Password:    password,
			ClientToken: uuid.NewString(),
			RequestUser: true,
		}).
		SetResult(&body).
		SetError(&failure).
		Post(a.baseURL + ElyAuthenticatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		msg := failure.ErrorMessage
		if msg == "" {
			msg = elyFallbackErrorText
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	case resp.IsError():
		return nil, fmt.Errorf("%w: status %d", ErrAuthUnavailable, resp.StatusCode())
	case body.AccessToken == "":
		return nil, fmt.Errorf("%w: response carries no access token", ErrAuthUnavailable)
	}

	name := body.SelectedProfile.Name
	if name == "" {
		name = username
	}
	return &AuthenticatorResponse{
		UserUUID:    body.SelectedProfile.ID,
		Token:       body.AccessToken,
		UserName:    name,
		ClientToken: body.ClientToken,
	}, nil
}
