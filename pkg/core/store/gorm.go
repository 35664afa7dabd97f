package store

import (
	"context"

	"gorm.io/gorm"

	"ballot-box/pkg/common/apperrors"
	"ballot-box/pkg/core/model"
)

// GormStore implements Store on top of a GORM-managed MySQL database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperrors.FromStoreError(err, "username")
	}
	return nil
}

func (s *GormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Candidate").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, apperrors.FromStoreError(err, "user")
	}
	return &user, nil
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Candidate").
		First(&user, id).Error
	if err != nil {
		return nil, apperrors.FromStoreError(err, "user")
	}
	return &user, nil
}

func (s *GormStore) CreateCandidateForUser(ctx context.Context, candidate *model.Candidate, userID uint) error {
	if err := ValidateCandidate(candidate); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(candidate).Error; err != nil {
			return apperrors.FromStoreError(err, "candidate")
		}
		result := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("candidate_id", candidate.ID)
		if result.Error != nil {
			return apperrors.FromStoreError(result.Error, "user")
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("user not found")
		}
		return nil
	})
	return err
}

func (s *GormStore) CandidateByID(ctx context.Context, id uint) (*model.Candidate, error) {
	var candidate model.Candidate
	err := s.db.WithContext(ctx).First(&candidate, id).Error
	if err != nil {
		return nil, apperrors.FromStoreError(err, "candidate")
	}
	return &candidate, nil
}

func (s *GormStore) UpdateCandidate(ctx context.Context, id uint, update CandidateUpdate) (*model.Candidate, error) {
	var updated model.Candidate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return apperrors.FromStoreError(err, "candidate")
		}
		if update.Country != nil {
			updated.Country = *update.Country
		}
		if update.PoliticalOrientation != nil {
			updated.PoliticalOrientation = *update.PoliticalOrientation
		}
		if err := ValidateCandidate(&updated); err != nil {
			return err
		}
		// Only the metadata columns are written back. A full-row save would
		// overwrite votes committed by concurrent voters since the read above.
		err := tx.Model(&model.Candidate{}).
			Where("id = ?", id).
			Select("country", "political_orientation").
			Updates(model.Candidate{
				Country:              updated.Country,
				PoliticalOrientation: updated.PoliticalOrientation,
			}).Error
		if err != nil {
			return apperrors.FromStoreError(err, "candidate")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GormStore) VoteCandidate(ctx context.Context, id uint) (*model.Candidate, error) {
	// The increment is delegated to the database as a single UPDATE so
	// concurrent voters can not lose updates.
	result := s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", 1))
	if result.Error != nil {
		return nil, apperrors.FromStoreError(result.Error, "candidate")
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("candidate not found")
	}
	return s.CandidateByID(ctx, id)
}

func (s *GormStore) DeleteCandidateForUser(ctx context.Context, candidateID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Clear the reference before the delete so the foreign key on
		// users.candidate_id never blocks it. A missing candidate rolls
		// the whole transaction back.
		err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("candidate_id", nil).Error
		if err != nil {
			return apperrors.FromStoreError(err, "user")
		}
		result := tx.Delete(&model.Candidate{}, candidateID)
		if result.Error != nil {
			return apperrors.FromStoreError(result.Error, "candidate")
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("candidate not found")
		}
		return nil
	})
}

func (s *GormStore) CountCandidates(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Candidate{}).Count(&count).Error
	if err != nil {
		return 0, apperrors.FromStoreError(err, "candidate")
	}
	return count, nil
}

func (s *GormStore) Candidates(ctx context.Context, lastName string) ([]model.Candidate, error) {
	query := s.db.WithContext(ctx).Model(&model.Candidate{})
	if lastName != "" {
		query = query.Where("last_name = ?", lastName)
	}
	var candidates []model.Candidate
	if err := query.Find(&candidates).Error; err != nil {
		return nil, apperrors.FromStoreError(err, "candidate")
	}
	return candidates, nil
}

func (s *GormStore) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		// Clear the references first so the candidate deletes never race a
		// foreign key check.
		if err := session.Model(&model.User{}).Update("candidate_id", nil).Error; err != nil {
			return apperrors.FromStoreError(err, "user")
		}
		if err := session.Delete(&model.Candidate{}).Error; err != nil {
			return apperrors.FromStoreError(err, "candidate")
		}
		if err := session.Delete(&model.User{}).Error; err != nil {
			return apperrors.FromStoreError(err, "user")
		}
		return nil
	})
}

var _ Store = (*GormStore)(nil)
