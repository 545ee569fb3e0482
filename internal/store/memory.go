package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store backed by RWMutex-guarded maps. It is
// the default for development and testing; AshEmu's persistent deployments
// use SQLiteStore instead.
type MemoryStore struct {
	mu sync.RWMutex

	accounts     map[int64]*Account
	accountsByID map[string]int64 // lower-cased username -> account id
	nextAccount  int64

	characters  map[int64]*Character
	namesByChar map[string]int64 // lower-cased name -> character id
	nextChar    int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[int64]*Account),
		accountsByID: make(map[string]int64),
		characters:   make(map[int64]*Character),
		namesByChar:  make(map[string]int64),
	}
}

func (s *MemoryStore) GetAccount(_ context.Context, username string) (*Account, Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accountsByID[strings.ToLower(username)]
	if !ok {
		return nil, NotFound, nil
	}
	acc := *s.accounts[id]
	return &acc, OK, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, username string, salt [SaltSize]byte, verifier [VerifierSize]byte) (*Account, Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(username)
	if _, exists := s.accountsByID[key]; exists {
		return nil, AlreadyExists, nil
	}

	s.nextAccount++
	acc := &Account{
		ID:       s.nextAccount,
		Username: username,
		Salt:     salt,
		Verifier: verifier,
	}
	s.accounts[acc.ID] = acc
	s.accountsByID[key] = acc.ID

	out := *acc
	return &out, OK, nil
}

func (s *MemoryStore) UpdateSessionKey(_ context.Context, accountID int64, key [SessionKeySize]byte) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return NotFound, nil
	}
	acc.SessionKey = key
	acc.HasSessionKey = true
	return OK, nil
}

func (s *MemoryStore) GetCharacters(_ context.Context, accountID int64) ([]*Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Character
	for _, c := range s.characters {
		if c.AccountID == accountID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCharacter(_ context.Context, characterID int64) (*Character, Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.characters[characterID]
	if !ok {
		return nil, NotFound, nil
	}
	cc := *c
	return &cc, OK, nil
}

func (s *MemoryStore) CreateCharacter(_ context.Context, c *Character) (*Character, Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(c.Name)
	if _, exists := s.namesByChar[key]; exists {
		return nil, AlreadyExists, nil
	}

	s.nextChar++
	stored := *c
	stored.ID = s.nextChar
	s.characters[stored.ID] = &stored
	s.namesByChar[key] = stored.ID

	out := stored
	return &out, OK, nil
}

func (s *MemoryStore) DeleteCharacter(_ context.Context, characterID int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.characters[characterID]
	if !ok {
		return NotFound, nil
	}
	delete(s.characters, characterID)
	delete(s.namesByChar, strings.ToLower(c.Name))
	return OK, nil
}

func (s *MemoryStore) SetPosition(_ context.Context, characterID int64, mapID uint32, x, y, z, o float32) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.characters[characterID]
	if !ok {
		return NotFound, nil
	}
	c.Map = mapID
	c.X, c.Y, c.Z, c.O = x, y, z, o
	return OK, nil
}

func (s *MemoryStore) Close() error { return nil }
