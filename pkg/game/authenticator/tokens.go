package authenticator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zalando/go-keyring"
)

// KeyringService names the launcher's entries in the OS credential store.
const KeyringService = "cobalt-launcher"

// TokenStore keeps account access tokens in the OS keyring, keyed by account id.
type TokenStore struct {
	Service string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{Service: KeyringService}
}

func tokenUser(accountID int) string {
	return "account-" + strconv.Itoa(accountID)
}

// Token returns the stored token, "" when the account has none.
func (s *TokenStore) Token(accountID int) (string, error) {
	secret, err := keyring.Get(s.Service, tokenUser(accountID))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return secret, nil
}

func (s *TokenStore) SetToken(accountID int, token string) error {
	if err := keyring.Set(s.Service, tokenUser(accountID), token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// DeleteToken forgets the token of an account. Missing entries are not an error.
func (s *TokenStore) DeleteToken(accountID int) error {
	err := keyring.Delete(s.Service, tokenUser(accountID))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
