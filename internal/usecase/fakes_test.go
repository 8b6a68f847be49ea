package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User

	existsErr error
	createErr error
	getErr    error
	touchErr  error

	// skipExistsCheck makes ExistsByEmail report false to simulate a lost race.
	skipExistsCheck bool

	createCalls int
	touchCalls  int
	touchedAt   map[string]time.Time
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:     make(map[string]domain.User),
		touchedAt: make(map[string]time.Time),
	}
}

func (f *fakeUserRepository) Create(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return fmt.Errorf("insert user (usuarios_email_key): %w", repository.ErrDuplicate)
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, user := range f.users {
		if user.Email == email {
			copy := user
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.skipExistsCheck {
		return false, nil
	}
	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepository) TouchLastAccess(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchCalls++
	if f.touchErr != nil {
		return f.touchErr
	}
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastAccess = &at
	f.users[id] = user
	f.touchedAt[id] = at
	return nil
}

func (f *fakeUserRepository) seed(user domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

type fakeSessionRepository struct {
	mu        sync.Mutex
	records   map[string]domain.SessionRecord
	upsertErr error
	calls     int
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{records: make(map[string]domain.SessionRecord)}
}

func (f *fakeSessionRepository) Upsert(_ context.Context, record domain.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeSessionRepository) GetByID(_ context.Context, id string) (*domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

// fakeHasher is reversible on purpose so tests can assert the stored value differs from the input.
type fakeHasher struct {
	hashErr   error
	verifyErr error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + password, nil
}

func (f *fakeHasher) Verify(password, encoded string) (bool, error) {
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return encoded == "hashed:"+password, nil
}

type fakeEventPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	loggedIn   []domain.UserLoggedInEvent
	err        error
}

func (f *fakeEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, event)
	return f.err
}

func (f *fakeEventPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = append(f.loggedIn, event)
	return f.err
}

type fakeRateLimitStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	countErr error
}

func newFakeRateLimitStore() *fakeRateLimitStore {
	return &fakeRateLimitStore{attempts: make(map[string][]time.Time)}
}

func (f *fakeRateLimitStore) TrimWindow(_ context.Context, identifier string, window time.Duration, reference time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := reference.Add(-window)
	kept := f.attempts[identifier][:0]
	for _, at := range f.attempts[identifier] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	f.attempts[identifier] = kept
	return nil
}

func (f *fakeRateLimitStore) CountAttempts(_ context.Context, identifier string, _ time.Duration, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.attempts[identifier]), nil
}

func (f *fakeRateLimitStore) RecordAttempt(_ context.Context, identifier string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[identifier] = append(f.attempts[identifier], at)
	sort.Slice(f.attempts[identifier], func(i, j int) bool { return f.attempts[identifier][i].Before(f.attempts[identifier][j]) })
	return nil
}

func (f *fakeRateLimitStore) OldestAttempt(_ context.Context, identifier string, _ time.Duration, _ time.Time) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.attempts[identifier]) == 0 {
		return time.Time{}, false, nil
	}
	return f.attempts[identifier][0], true, nil
}

var errBoom = errors.New("boom")

// sequentialIDs returns deterministic session ids: sid-1, sid-2, ...
func sequentialIDs() func() (string, error) {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("sid-%d", n), nil
	}
}
