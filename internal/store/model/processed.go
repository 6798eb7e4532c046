package model

import (
	"time"
)

// Identity maps a stable remote path or commit reference to a surrogate key.
type Identity struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	Poller string `gorm:"uniqueIndex:poll_identities_poller_path;not null"`
	Path   string `gorm:"uniqueIndex:poll_identities_poller_path;not null"`
}

func (Identity) TableName() string {
	return "poll_identities"
}

// Processed is the append-only fact that an identity was seen at a given
// confidence level.
type Processed struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	IdentityID int64     `gorm:"uniqueIndex:poll_processed_fact;not null"`
	Identity   Identity  `gorm:"constraint:OnDelete:CASCADE;"`
	Author     string    `gorm:"uniqueIndex:poll_processed_fact;not null"`
	ChangedAt  time.Time `gorm:"uniqueIndex:poll_processed_fact;not null"`
	Confidence int       `gorm:"uniqueIndex:poll_processed_fact;not null"`
	Timestamp  time.Time `gorm:"autoCreateTime"`
}

func (Processed) TableName() string {
	return "poll_processed"
}
