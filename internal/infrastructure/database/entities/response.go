package entities

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Response is the persisted response record. Items reference it by public id
// so the API-visible identifier is also the join key. The self-referential FK
// on PreviousResponseID guarantees parent links resolve at insert time and
// restricts deleting a response that later responses still point at.
type Response struct {
	ID                 uint      `gorm:"primaryKey"`
	PublicID           string    `gorm:"uniqueIndex;size:64"`
	Object             string    `gorm:"size:32"`
	Status             string    `gorm:"size:32"`
	Model              string    `gorm:"size:128"`
	PreviousResponseID *string   `gorm:"size:64;index"`
	Previous           *Response `gorm:"foreignKey:PreviousResponseID;references:PublicID"`
	Instructions       *string   `gorm:"type:text"`
	MaxOutputTokens    *int64
	Temperature        *float64
	TopP               *float64
	Store              bool
	Metadata           datatypes.JSON `gorm:"type:jsonb"`
	UserID             *string        `gorm:"size:64;index"`
	SafetyIdentifier   *string        `gorm:"size:128"`
	PromptCacheKey     *string        `gorm:"size:128"`
	UsageInputTokens   *int64
	UsageOutputTokens  *int64
	UsageTotalTokens   *int64
	Error              datatypes.JSON `gorm:"type:jsonb"`
	IncompleteDetails  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt          time.Time      `gorm:"index"`
	UpdatedAt          time.Time
}

// BeforeCreate ensures defaults.
func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.Object == "" {
		r.Object = "response"
	}
	return nil
}
