package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"carmarket/contexts/identity-access/account-service/domain/entities"
	domainerrors "carmarket/contexts/identity-access/account-service/domain/errors"
	"carmarket/contexts/identity-access/account-service/ports"
)

type userRecord struct {
	UserID       string
	MobileNumber string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

type sessionRecord struct {
	UserID    string
	CreatedAt time.Time
}

type Store struct {
	mu sync.RWMutex

	usersByID       map[string]userRecord
	userIDByMobile  map[string]string
	roleNamesByID   map[string][]string
	roles           map[string]struct{}
	sessionsByToken map[string]sessionRecord
	sequence        uint64
}

func NewStore() *Store {
	roles := make(map[string]struct{})
	for _, name := range ports.SeedRoles() {
		roles[name] = struct{}{}
	}
	return &Store{
		usersByID:       make(map[string]userRecord),
		userIDByMobile:  make(map[string]string),
		roleNamesByID:   make(map[string][]string),
		roles:           roles,
		sessionsByToken: make(map[string]sessionRecord),
		sequence:        1,
	}
}

func (s *Store) CreateUser(ctx context.Context, user entities.User) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mobile := strings.TrimSpace(user.MobileNumber)
	if _, taken := s.userIDByMobile[mobile]; taken {
		return entities.User{}, domainerrors.ErrMobileAlreadyTaken
	}
	record := userRecord{
		UserID:       user.UserID,
		MobileNumber: mobile,
		PasswordHash: user.PasswordHash,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt.UTC(),
	}
	s.usersByID[record.UserID] = record
	s.userIDByMobile[mobile] = record.UserID
	return s.toEntityLocked(record), nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.usersByID[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.toEntityLocked(record), nil
}

func (s *Store) GetUserByMobile(ctx context.Context, mobileNumber string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.userIDByMobile[strings.TrimSpace(mobileNumber)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.toEntityLocked(s.usersByID[userID]), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.User, 0, len(s.usersByID))
	for _, record := range s.usersByID {
		items = append(items, s.toEntityLocked(record))
	}
	sort.Slice(items, func(i int, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (s *Store) SetActive(ctx context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.usersByID[userID]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	record.Active = active
	s.usersByID[userID] = record
	return nil
}

func (s *Store) GrantRole(ctx context.Context, userID string, roleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[userID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	if _, ok := s.roles[roleName]; !ok {
		return domainerrors.ErrRoleNotFound
	}
	for _, held := range s.roleNamesByID[userID] {
		if held == roleName {
			return domainerrors.ErrRoleAlreadyGranted
		}
	}
	s.roleNamesByID[userID] = append(s.roleNamesByID[userID], roleName)
	return nil
}

func (s *Store) RolesOf(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.usersByID[userID]; !ok {
		return nil, domainerrors.ErrUserNotFound
	}
	return append([]string(nil), s.roleNamesByID[userID]...), nil
}

func (s *Store) EnsureRole(ctx context.Context, roleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[roleName] = struct{}{}
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessionsByToken[token]
	if !ok {
		return "", false, nil
	}
	return record.UserID, true, nil
}

func (s *Store) Put(ctx context.Context, token string, userID string, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionsByToken[token] = sessionRecord{UserID: userID, CreatedAt: createdAt.UTC()}
	return nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessionsByToken, token)
	return nil
}

func (s *Store) DeleteForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, record := range s.sessionsByToken {
		if record.UserID == userID {
			delete(s.sessionsByToken, token)
		}
	}
	return nil
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("acct_%d", n), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) toEntityLocked(record userRecord) entities.User {
	return entities.User{
		UserID:       record.UserID,
		MobileNumber: record.MobileNumber,
		PasswordHash: record.PasswordHash,
		Active:       record.Active,
		Roles:        append([]string(nil), s.roleNamesByID[record.UserID]...),
		CreatedAt:    record.CreatedAt,
	}
}

var _ ports.UserRepository = (*Store)(nil)
var _ ports.SessionStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
