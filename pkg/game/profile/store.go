package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

var ErrAccountNotFound = errors.New("account not found")

// Store keeps accounts in a JSON array. Ids grow from a high-water mark kept
// in a sidecar file so deleted ids are never handed out again.
type Store struct {
	path    string
	seqPath string
	log     *logging.Logger
	mu      sync.Mutex
	now     func() time.Time
}

func NewStore(path, seqPath string, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Default()
	}
	return &Store{path: path, seqPath: seqPath, log: log, now: time.Now}
}

func (s *Store) List() ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) Get(id int) (Account, error) {
	accounts, err := s.List()
	if err != nil {
		return Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
}

// Add stores a new account and returns it with its assigned id.
func (s *Store) Add(username string, kind Kind, email string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Account{}, errors.New("username is required")
	}

	var acc Account
	err := s.update(func(accounts []Account) ([]Account, error) {
		next := s.readSeq()
		for _, a := range accounts {
			if a.ID > next {
				next = a.ID
			}
		}
		next++

		acc = Account{
			ID:        next,
			Username:  username,
			Type:      kind,
			CreatedAt: s.now().Format("2006-01-02T15:04:05.000000"),
			Email:     email,
		}
		if err := utils.WriteFileAtomic(s.seqPath, []byte(strconv.Itoa(next)), 0o644); err != nil {
			return nil, fmt.Errorf("save account sequence: %w", err)
		}
		return append(accounts, acc), nil
	})
	return acc, err
}

func (s *Store) Delete(id int) error {
	return s.update(func(accounts []Account) ([]Account, error) {
		kept := accounts[:0]
		found := false
		for _, a := range accounts {
			if a.ID == id {
				found = true
				continue
			}
			kept = append(kept, a)
		}
		if !found {
			return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
		}
		return kept, nil
	})
}

func (s *Store) update(fn func([]Account) ([]Account, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := utils.LockFile(s.path)
	if err != nil {
		return err
	}
	defer unlock()

	accounts, err := s.read()
	if err != nil {
		return err
	}
	accounts, err = fn(accounts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(accounts, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}
	return utils.WriteFileAtomic(s.path, data, 0o644)
}

// read treats a missing or corrupt file as empty.
func (s *Store) read() ([]Account, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}

	accounts := []Account{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		s.log.Warnf("accounts file %s is corrupt, starting empty: %v", s.path, err)
		return []Account{}, nil
	}
	return accounts, nil
}

func (s *Store) readSeq() int {
	data, err := os.ReadFile(s.seqPath)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return n
}
