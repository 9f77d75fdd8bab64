package store

import (
	"fmt"
	"os"
	"sync"
)

// SideLog is the append-only list of domains that produced no suggestion.
// Each Append writes one line and fsyncs; duplicates are kept.
type SideLog struct {
	mu   sync.Mutex
	path string
}

// OpenSideLog creates path if it is absent. Existing content is kept.
func OpenSideLog(path string) (*SideLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open side log %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("store: close side log %s: %w", path, err)
	}
	return &SideLog{path: path}, nil
}

// Append writes domain as a new line.
func (l *SideLog) Append(domain string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("store: open side log: %w", err)
	}
	if _, err := f.WriteString(domain + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("store: append side log: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("store: sync side log: %w", err)
	}
	return f.Close()
}

// Path returns the log location.
func (l *SideLog) Path() string {
	return l.path
}
