package session

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

var (
	keyToken = []byte("session:token")
	keyEmail = []byte("session:email")
)

// Credentials is the persisted part of a session.
type Credentials struct {
	Token string
	Email string
}

// Store persists credentials between runs.
type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Delete() error
	Close() error
}

// LevelStore keeps credentials in a goleveldb database.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens (or creates) the database at path.
func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open session store %q: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

// NewMemoryStore returns a store backed by in-memory leveldb storage.
func NewMemoryStore() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Load() (Credentials, error) {
	token, err := s.get(keyToken)
	if err != nil {
		return Credentials{}, err
	}
	email, err := s.get(keyEmail)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: token, Email: email}, nil
}

func (s *LevelStore) Save(c Credentials) error {
	batch := new(leveldb.Batch)
	batch.Put(keyToken, []byte(c.Token))
	batch.Put(keyEmail, []byte(c.Email))
	return s.db.Write(batch, nil)
}

func (s *LevelStore) Delete() error {
	batch := new(leveldb.Batch)
	batch.Delete(keyToken)
	batch.Delete(keyEmail)
	return s.db.Write(batch, nil)
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

func (s *LevelStore) get(key []byte) (string, error) {
	b, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
