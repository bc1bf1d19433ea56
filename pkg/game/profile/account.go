package profile

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Kind string

const (
	KindOffline Kind = "offline"
	KindEly     Kind = "ely"
)

// ParseKind accepts the kind names and the menu numbers 1 (offline) and 2 (ely).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "offline", "оффлайн":
		return KindOffline, nil
	case "2", "ely", "ely.by":
		return KindEly, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Account is one entry of launcher_profiles.json.
type Account struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Type      Kind   `json:"type"`
	CreatedAt string `json:"created_at"`
	Email     string `json:"email,omitempty"`

	// Extra holds keys this launcher does not model, such as the session
	// data of other launcher builds. They are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

type accountFields Account

var accountKeys = []string{"id", "username", "type", "created_at", "email"}

func (a *Account) UnmarshalJSON(data []byte) error {
	var fields accountFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range accountKeys {
		delete(raw, k)
	}

	*a = Account(fields)
	a.Extra = nil
	if len(raw) > 0 {
		a.Extra = raw
	}
	return nil
}

func (a Account) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(accountFields(a))
	if err != nil || len(a.Extra) == 0 {
		return data, err
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range a.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

func (a Account) String() string {
	return fmt.Sprintf("%d | %s (%s)", a.ID, a.Username, a.Type)
}
