package entities

import (
	"time"

	"gorm.io/datatypes"
)

// InputItem is one stored request input element. ResponseID holds the owning
// response's public id; the FK cascades rows away on response deletion.
type InputItem struct {
	ID         uint           `gorm:"primaryKey"`
	PublicID   string         `gorm:"uniqueIndex;size:64"`
	ResponseID string         `gorm:"size:64;index;not null"`
	Response   *Response      `gorm:"foreignKey:ResponseID;references:PublicID;constraint:OnDelete:CASCADE"`
	ItemType   string         `gorm:"size:32"`
	Role       *string        `gorm:"size:32"`
	Content    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"index"`
}
