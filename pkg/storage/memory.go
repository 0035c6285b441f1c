package storage

import (
	"context"
	"sync"

	"github.com/boostmesh/boostmesh/pkg/errors"
)

type inMemoryStorage struct {
	sync.Mutex

	data map[string]any
	keys []string
}

// NewInMemoryStorage returns a mutex-guarded in-process store that lists
// values in insertion order.
func NewInMemoryStorage() Storage {
	return &inMemoryStorage{
		data: make(map[string]any),
	}
}

func (s *inMemoryStorage) Create(_ context.Context, key string, value any) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; ok {
		return errors.ErrEntityExists
	}

	s.data[key] = value
	s.keys = append(s.keys, key)

	return nil
}

func (s *inMemoryStorage) Get(_ context.Context, key string) (any, error) {
	if key == "" {
		return nil, errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if val, ok := s.data[key]; ok {
		return val, nil
	}

	return nil, errors.ErrNotFound
}

func (s *inMemoryStorage) List(_ context.Context) ([]any, error) {
	s.Lock()
	defer s.Unlock()

	result := make([]any, 0, len(s.keys))
	for _, k := range s.keys {
		result = append(result, s.data[k])
	}

	return result, nil
}

func (s *inMemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		return errors.ErrNotFound
	}

	delete(s.data, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)

			break
		}
	}

	return nil
}
