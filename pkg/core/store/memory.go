package store

import (
	"context"
	"strings"
	"sync"

	"ballot-box/pkg/common/apperrors"
	"ballot-box/pkg/core/model"
)

// MemoryStore is an in-memory Store used by tests and local experiments.
// It mirrors the MySQL backend's behavior, including the case-insensitive
// uniqueness of usernames and candidate last names.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[uint]*model.User
	candidates map[uint]*model.Candidate
	nextUserID uint
	nextCandID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uint]*model.User),
		candidates: make(map[uint]*model.Candidate),
		nextUserID: 1,
		nextCandID: 1,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return apperrors.InvalidInput("username already exists")
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Case-insensitive, like the lookup under MySQL's utf8mb4 collation. The
	// CI unique index guarantees at most one match.
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return s.populatedUserLocked(user), nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (s *MemoryStore) UserByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return s.populatedUserLocked(user), nil
}

// populatedUserLocked copies the user and resolves its candidate reference.
func (s *MemoryStore) populatedUserLocked(user *model.User) *model.User {
	out := *user
	if user.CandidateID != nil {
		if candidate, ok := s.candidates[*user.CandidateID]; ok {
			copied := *candidate
			out.Candidate = &copied
		}
	}
	return &out
}

func (s *MemoryStore) CreateCandidateForUser(_ context.Context, candidate *model.Candidate, userID uint) error {
	if err := ValidateCandidate(candidate); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	for _, existing := range s.candidates {
		if strings.EqualFold(existing.LastName, candidate.LastName) {
			return apperrors.InvalidInput("candidate already exists")
		}
	}
	candidate.ID = s.nextCandID
	s.nextCandID++
	stored := *candidate
	s.candidates[candidate.ID] = &stored
	id := candidate.ID
	user.CandidateID = &id
	return nil
}

func (s *MemoryStore) CandidateByID(_ context.Context, id uint) (*model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, apperrors.NotFound("candidate not found")
	}
	copied := *candidate
	return &copied, nil
}

func (s *MemoryStore) UpdateCandidate(_ context.Context, id uint, update CandidateUpdate) (*model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, apperrors.NotFound("candidate not found")
	}
	updated := *candidate
	if update.Country != nil {
		updated.Country = *update.Country
	}
	if update.PoliticalOrientation != nil {
		updated.PoliticalOrientation = *update.PoliticalOrientation
	}
	if err := ValidateCandidate(&updated); err != nil {
		return nil, err
	}
	*candidate = updated
	copied := updated
	return &copied, nil
}

func (s *MemoryStore) VoteCandidate(_ context.Context, id uint) (*model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, apperrors.NotFound("candidate not found")
	}
	candidate.Votes++
	copied := *candidate
	return &copied, nil
}

func (s *MemoryStore) DeleteCandidateForUser(_ context.Context, candidateID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidateID]; !ok {
		return apperrors.NotFound("candidate not found")
	}
	delete(s.candidates, candidateID)
	// Mirror the SQL backend: the owning user's reference is cleared even
	// when the deleter is somebody else.
	for _, user := range s.users {
		if user.CandidateID != nil && *user.CandidateID == candidateID {
			user.CandidateID = nil
			user.Candidate = nil
		}
	}
	if user, ok := s.users[userID]; ok {
		user.CandidateID = nil
		user.Candidate = nil
	}
	return nil
}

func (s *MemoryStore) CountCandidates(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.candidates)), nil
}

func (s *MemoryStore) Candidates(_ context.Context, lastName string) ([]model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidates := make([]model.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		if lastName != "" && candidate.LastName != lastName {
			continue
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[uint]*model.User)
	s.candidates = make(map[uint]*model.Candidate)
	return nil
}

var _ Store = (*MemoryStore)(nil)
