package db_models

import "github.com/google/uuid"

// ReadProgress grants a user access to a purchased product and tracks how
// far they got.
type ReadProgress struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_read_progress_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_read_progress_user_product"`
	Progress  int       `gorm:"not null;default:0"` // percent, 0..100
}

func (ReadProgress) TableName() string {
	return "read_progress"
}
