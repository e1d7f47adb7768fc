package duolingo

import (
	"encoding/json"
	"os"
)

// sessionFile is the on-disk shape of the token cache.
type sessionFile struct {
	JWTSession string `json:"jwt_session"`
}

// LoadSession reads a cached session token. A missing or unreadable file
// yields an empty token, which callers treat as "log in fresh".
func LoadSession(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return "", err
	}
	return sf.JWTSession, nil
}

// SaveSession overwrites the token cache after a fresh login. The cache is
// single-writer: a deployment must not run concurrent instances against the
// same path.
func SaveSession(path, token string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(sessionFile{JWTSession: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
