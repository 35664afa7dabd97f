package store

import (
	"context"

	"ballot-box/pkg/core/model"
)

// CandidateUpdate carries the mutable metadata fields of a candidate.
// Nil means "leave untouched". Votes and names are deliberately absent:
// the vote counter only moves through VoteCandidate and identifying names
// are immutable after creation.
type CandidateUpdate struct {
	Country              *string
	PoliticalOrientation *string
}

// Store is the credential-store collaborator. All durable state lives behind
// it; implementations enforce the validation rules in validate.go before
// committing and translate their backend failures into apperrors kinds.
type Store interface {
	// CreateUser persists a new user. Fails with InvalidInput on
	// length/uniqueness violations.
	CreateUser(ctx context.Context, user *model.User) error

	// UserByUsername looks a user up by exact username. NotFound when absent.
	UserByUsername(ctx context.Context, username string) (*model.User, error)

	// UserByID loads a user with its candidate reference populated.
	UserByID(ctx context.Context, id uint) (*model.User, error)

	// CreateCandidateForUser persists candidate and sets the owning user's
	// reference to it. Both writes happen in one transaction: if the link
	// cannot be written the candidate insert is rolled back.
	CreateCandidateForUser(ctx context.Context, candidate *model.Candidate, userID uint) error

	// CandidateByID looks a candidate up by id. NotFound when absent.
	CandidateByID(ctx context.Context, id uint) (*model.Candidate, error)

	// UpdateCandidate applies the given metadata fields and returns the
	// updated candidate. NotFound when the id does not resolve.
	UpdateCandidate(ctx context.Context, id uint, update CandidateUpdate) (*model.Candidate, error)

	// VoteCandidate increments the candidate's vote counter by exactly one
	// using the backend's atomic update, then returns the updated candidate.
	// NotFound when the id does not resolve.
	VoteCandidate(ctx context.Context, id uint) (*model.Candidate, error)

	// DeleteCandidateForUser deletes the candidate and clears the given
	// user's candidate reference in one transaction. NotFound when the
	// candidate id does not resolve.
	DeleteCandidateForUser(ctx context.Context, candidateID, userID uint) error

	// CountCandidates returns the number of stored candidates.
	CountCandidates(ctx context.Context) (int64, error)

	// Candidates lists all candidates, optionally filtered by exact last name.
	Candidates(ctx context.Context, lastName string) ([]model.Candidate, error)

	// Reset deletes every user and candidate but keeps the table structure.
	Reset(ctx context.Context) error
}
