package profile

// GameProfile is the identity handed to the game on its command line.
type GameProfile struct {
	Username string `json:"username"`
	UUID     string `json:"uuid"`
	UserType string `json:"userType"`
	Token    string `json:"token"`
}

// ElyStubToken is passed when an ely.by account has no stored access token.
const ElyStubToken = "ely_token"

// FromAccount builds the game identity of acc. Offline accounts carry no uuid
// or token; the installer derives the offline uuid from the name.
func FromAccount(acc Account, token string) GameProfile {
	p := GameProfile{Username: acc.Username, UserType: "legacy"}
	if acc.Type == KindEly {
		p.UserType = "mojang"
		p.Token = token
		if p.Token == "" {
			p.Token = ElyStubToken
		}
	}
	return p
}
