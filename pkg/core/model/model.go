package model

import (
	"gorm.io/gorm"
)

// User owns at most one Candidate. The unique index on username is
// case-insensitive under MySQL's default utf8mb4 collation, so "Alice" and
// "alice" collide at the store level.
type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	CandidateID  *uint      `gorm:"index" json:"-"`
	Candidate    *Candidate `gorm:"foreignKey:CandidateID;constraint:OnDelete:SET NULL" json:"candidate,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Candidate is the entity being voted on. LastName shares the same
// case-insensitive uniqueness guarantee as User.Username.
type Candidate struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LastName             string `gorm:"type:varchar(100);uniqueIndex;not null" json:"lastName"`
	FirstName            string `gorm:"type:varchar(100);not null" json:"firstName"`
	Country              string `gorm:"type:varchar(100);not null" json:"country"`
	PoliticalOrientation string `gorm:"type:varchar(100);not null" json:"politicalOrientation"`
	Votes                int    `gorm:"not null;default:0" json:"votes"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// AutoMigrate creates or updates both tables. Candidate goes first so the
// users.candidate_id foreign key has something to point at.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Candidate{}, &User{})
}
