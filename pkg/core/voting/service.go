package voting

import (
	"context"
	"unicode/utf8"

	"ballot-box/pkg/common/apperrors"
	"ballot-box/pkg/core/auth"
	"ballot-box/pkg/core/model"
	"ballot-box/pkg/core/store"
)

// Password policy bounds. The hash length differs from the password length,
// so this check belongs here and not in the store's schema rules.
const (
	passwordMinLen = 5
	passwordMaxLen = 15
)

// LoggedInUser is the login result: a signed session token plus the user with
// its candidate reference populated.
type LoggedInUser struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AddCandidateInput carries the fields of a new candidate.
type AddCandidateInput struct {
	LastName             string
	FirstName            string
	Country              string
	PoliticalOrientation string
}

// Service implements the voting platform's operations on top of the
// credential store and the token issuer. It owns every invariant worth
// protecting: the password policy, the one-candidate-per-user rule, vote
// monotonicity and the test-mode gate on resets.
type Service struct {
	store  store.Store
	tokens *auth.TokenIssuer
	env    string
}

func New(st store.Store, tokens *auth.TokenIssuer, env string) *Service {
	return &Service{store: st, tokens: tokens, env: env}
}

// Register validates the password policy, hashes the password and persists a
// new user without a candidate.
func (s *Service) Register(ctx context.Context, username, password, passwordConfirmation string) (*model.User, error) {
	// The policy bounds characters, not bytes.
	passwordLen := utf8.RuneCountInString(password)
	if passwordLen < passwordMinLen {
		return nil, apperrors.InvalidInput("password is too short")
	}
	if passwordLen > passwordMaxLen {
		return nil, apperrors.InvalidInput("password is too long")
	}
	if password != passwordConfirmation {
		return nil, apperrors.InvalidInput("password and password confirmation don't match")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("hashing password", err)
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a session token. The distinct
// wrong-username and wrong-password messages reproduce the source behavior;
// they leak account existence and are kept deliberately.
func (s *Service) Login(ctx context.Context, username, password string) (*LoggedInUser, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.InvalidInput("wrong username")
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.InvalidInput("wrong password")
	}

	token, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return nil, apperrors.Internal("issuing token", err)
	}

	return &LoggedInUser{Token: token, User: user}, nil
}

// ResolveToken verifies a bearer token and loads the user it identifies, with
// the candidate reference populated. Used once per request by the
// authorization middleware.
func (s *Service) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid token")
	}
	user, err := s.store.UserByID(ctx, claims.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthenticated("unknown user")
		}
		return nil, err
	}
	return user, nil
}

// AddCandidate creates a candidate owned by the current user. A user holds at
// most one candidate at a time.
func (s *Service) AddCandidate(ctx context.Context, input AddCandidateInput) (*model.Candidate, error) {
	currentUser := CurrentUser(ctx)
	if currentUser == nil {
		return nil, apperrors.Unauthenticated("user not authenticated")
	}
	if currentUser.CandidateID != nil {
		return nil, apperrors.Domain("user can not add more than 1 candidate")
	}

	candidate := &model.Candidate{
		LastName:             input.LastName,
		FirstName:            input.FirstName,
		Country:              input.Country,
		PoliticalOrientation: input.PoliticalOrientation,
		Votes:                0,
	}
	if err := s.store.CreateCandidateForUser(ctx, candidate, currentUser.ID); err != nil {
		return nil, err
	}
	return candidate, nil
}

// UpdateCandidate applies metadata changes to a candidate. An unknown id is
// not an error: the result is simply nil.
func (s *Service) UpdateCandidate(ctx context.Context, id uint, country, politicalOrientation *string) (*model.Candidate, error) {
	if CurrentUser(ctx) == nil {
		return nil, apperrors.Unauthenticated("user not authenticated")
	}

	update := store.CandidateUpdate{
		Country:              country,
		PoliticalOrientation: politicalOrientation,
	}
	candidate, err := s.store.UpdateCandidate(ctx, id, update)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return candidate, nil
}

// VoteCandidate increments a candidate's vote counter by exactly one. Voting
// is open: no identity required, repeated votes allowed.
func (s *Service) VoteCandidate(ctx context.Context, id uint) (*model.Candidate, error) {
	candidate, err := s.store.VoteCandidate(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Domain("candidate not found")
		}
		return nil, err
	}
	return candidate, nil
}

// DeleteCandidate removes a candidate by id and clears the current user's
// candidate reference. There is no ownership check: any authenticated user
// can delete any candidate, matching the source behavior.
func (s *Service) DeleteCandidate(ctx context.Context, id uint) (*model.User, error) {
	currentUser := CurrentUser(ctx)
	if currentUser == nil {
		return nil, apperrors.Unauthenticated("user not authenticated")
	}

	if err := s.store.DeleteCandidateForUser(ctx, id, currentUser.ID); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Domain("candidate not found")
		}
		return nil, err
	}
	return s.store.UserByID(ctx, currentUser.ID)
}

// CandidatesCount returns the number of stored candidates.
func (s *Service) CandidatesCount(ctx context.Context) (int64, error) {
	return s.store.CountCandidates(ctx)
}

// Candidates lists candidates, optionally filtered by exact last name.
func (s *Service) Candidates(ctx context.Context, lastName string) ([]model.Candidate, error) {
	return s.store.Candidates(ctx, lastName)
}

// LoggedInUser returns the identity resolved for this request, or nil.
func (s *Service) LoggedInUser(ctx context.Context) *model.User {
	return CurrentUser(ctx)
}

// Reset empties both collections. Hard-gated to the test environment.
func (s *Service) Reset(ctx context.Context) error {
	if s.env != "test" {
		return apperrors.Forbidden("reset is only available in test mode")
	}
	return s.store.Reset(ctx)
}
