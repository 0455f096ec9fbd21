package monarch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/monarch-reports/internal/common"
)

// DefaultSessionFile is used when no session path is configured.
const DefaultSessionFile = ".mm/mm_session.json"

// savedSession is the on-disk form of an authenticated session.
type savedSession struct {
	SavedAt time.Time `json:"saved_at"`
	Token   string    `json:"token"`
}

func loadSession(path string) (*savedSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrSessionNotFound
		}
		return nil, err
	}

	var state savedSession
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	if state.Token == "" {
		return nil, common.ErrSessionNotFound
	}

	return &state, nil
}

func saveSession(path string, state *savedSession) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Read/write for owner only
}
