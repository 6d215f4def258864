package models

import "time"

const RevokedMessageText = "Tin nhắn đã được thu hồi"

type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"index;not null" json:"sender"`
	ReceiverID  uint      `gorm:"index;not null" json:"receiver"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageType string    `gorm:"size:10;not null;default:text" json:"message_type"` // text|image
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	IsRevoked   bool      `gorm:"not null;default:false" json:"is_revoked"`
	Timestamp   time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

// Redacted hides the body of revoked messages.
func (m ChatMessage) Redacted() ChatMessage {
	if m.IsRevoked {
		m.Message = RevokedMessageText
	}
	return m
}
