package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// LogMailer records outgoing mail as JSON lines in a file instead of
// sending it.  It is used when no SendGrid key is configured.
type LogMailer struct {
	mu   sync.Mutex
	path string
}

// NewLogMailer appends to the file at path, creating parent directories.
func NewLogMailer(path string) *LogMailer {
	return &LogMailer{path: path}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create mail log dir: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open mail log: %w", err)
	}
	defer f.Close()

	logger := zerolog.New(f)
	logger.Info().Timestamp().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email")
	return nil
}
