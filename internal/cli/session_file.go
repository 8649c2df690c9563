package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/session"
)

// sessionFile persists the credential between CLI invocations, the CLI
// analog of the browser's token storage. Expired tokens are discarded on
// load, never trusted.
type sessionFile struct {
	Token     string           `json:"token"`
	Principal domain.Principal `json:"principal"`
}

func loadSession(path string, sess *session.Context) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		_ = os.Remove(path)
		return
	}
	if session.IsExpired(f.Token) {
		_ = os.Remove(path)
		return
	}
	_ = sess.Login(f.Token, f.Principal)
}

func saveSession(path, token string, principal domain.Principal) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(sessionFile{Token: token, Principal: principal})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func clearSession(path string) {
	_ = os.Remove(path)
}
