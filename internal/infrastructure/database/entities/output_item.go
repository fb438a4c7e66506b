package entities

import (
	"time"

	"gorm.io/datatypes"
)

// OutputItem is one produced item of a completed response. Rows cascade away
// with their owning response.
type OutputItem struct {
	ID         uint           `gorm:"primaryKey"`
	PublicID   string         `gorm:"uniqueIndex;size:64"`
	ResponseID string         `gorm:"size:64;index;not null"`
	Response   *Response      `gorm:"foreignKey:ResponseID;references:PublicID;constraint:OnDelete:CASCADE"`
	ItemType   string         `gorm:"size:32"`
	Role       *string        `gorm:"size:32"`
	Content    datatypes.JSON `gorm:"type:jsonb"`
	Status     string         `gorm:"size:32"`
	CreatedAt  time.Time      `gorm:"index"`
}
