// Package notes keeps the user's free-form notes in a plain text file, one
// timestamped line per note.
package notes

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"limeal.fr/cobalt/pkg/utils"
)

const timeLayout = "2006-01-02 15:04"

var ErrEmptyNote = errors.New("note is empty")

type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Add appends "YYYY-MM-DD HH:MM: text" to the notes file.
func (s *Store) Add(text string) error {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ErrEmptyNote
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := utils.LockFile(s.path)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open notes: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s: %s\n", s.now().Format(timeLayout), text); err != nil {
		f.Close()
		return fmt.Errorf("write note: %w", err)
	}
	return f.Close()
}

// List returns every stored note line, oldest first. A missing file yields none.
func (s *Store) List() ([]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
