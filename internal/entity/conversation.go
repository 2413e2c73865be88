package entity

import (
	"fmt"
	"time"
)

// Conversation is a private thread between exactly two users. PairKey holds
// both participant ids in ascending order and is unique, so a pair can never
// own two conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PairKey   string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

type ConversationUser struct {
	ConversationID uint          `gorm:"primaryKey;autoIncrement:false" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID         uint          `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	User           *User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ConversationUser) TableName() string {
	return "conversation_user"
}

type Message struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	ConversationID uint          `gorm:"not null;index:idx_messages_conversation_created,priority:1" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	User           *User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Body           string        `gorm:"type:text;not null" json:"body"`
	ReadAt         *time.Time    `json:"read_at"`
	CreatedAt      time.Time     `gorm:"autoCreateTime;index:idx_messages_conversation_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}
