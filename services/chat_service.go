package services

import (
	"context"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ChatInput struct {
	ReceiverID  uint   `json:"receiver" binding:"required"`
	Message     string `json:"message" binding:"required"`
	MessageType string `json:"message_type" binding:"omitempty,oneof=text image"`
}

type ChatService struct {
	db     *gorm.DB
	hub    Broadcaster
	events EventPublisher
	log    logrus.FieldLogger
}

func NewChatService(db *gorm.DB, hub Broadcaster, events EventPublisher, log logrus.FieldLogger) *ChatService {
	return &ChatService{db: db, hub: hub, events: events, log: log}
}

// canMessage enforces who may talk to whom: a regular user only with their
// connected experts, an expert only with users connected to them.
func (s *ChatService) canMessage(ctx context.Context, sender Caller, receiverID uint) error {
	db := s.db.WithContext(ctx)
	var receiver models.User
	if err := db.Where("id = ? AND is_active = ?", receiverID, true).First(&receiver).Error; err != nil {
		if notFound(err) == ErrNotFound {
			return Invalid("receiver", "Người nhận không tồn tại.")
		}
		return err
	}

	switch {
	case sender.IsRegular():
		var ru models.RegularUser
		if err := db.First(&ru, "user_id = ?", sender.ID).Error; err != nil {
			return notFound(err)
		}
		if !ru.ConnectedTo(receiver.Role, receiver.ID) {
			return Invalid("receiver", "Bạn chỉ có thể nhắn tin với chuyên gia đã kết nối.")
		}
	case sender.IsExpert():
		var ru models.RegularUser
		err := db.First(&ru, "user_id = ?", receiverID).Error
		if err != nil && notFound(err) != ErrNotFound {
			return err
		}
		if err != nil || !ru.ConnectedTo(sender.Role, sender.ID) {
			return Invalid("receiver", "Bạn chỉ có thể nhắn tin với người dùng đã kết nối với bạn.")
		}
	default:
		return Invalid("receiver", "Vai trò của bạn không được phép gửi tin nhắn.")
	}
	return nil
}

func (s *ChatService) Send(ctx context.Context, caller Caller, in ChatInput) (*models.ChatMessage, error) {
	if err := s.canMessage(ctx, caller, in.ReceiverID); err != nil {
		return nil, err
	}
	kind := in.MessageType
	if kind == "" {
		kind = "text"
	}
	m := models.ChatMessage{SenderID: caller.ID, ReceiverID: in.ReceiverID, Message: in.Message, MessageType: kind}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}

	payload := map[string]any{"kind": "chat.message", "message": m}
	if s.hub != nil {
		s.hub.Broadcast(m.ReceiverID, payload)
		s.hub.Broadcast(m.SenderID, payload)
	}
	if s.events != nil {
		if err := s.events.PublishJSON(ctx, EventChatMessageSent, m); err != nil {
			s.log.WithError(err).WithField("message_id", m.ID).Warn("publish chat message failed")
		}
	}
	return &m, nil
}

// List returns the caller's messages in time order, optionally only the
// conversation with one other user. Revoked bodies are redacted.
func (s *ChatService) List(ctx context.Context, caller Caller, withUserID uint) ([]models.ChatMessage, error) {
	q := s.db.WithContext(ctx)
	if withUserID != 0 {
		q = q.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			caller.ID, withUserID, withUserID, caller.ID)
	} else {
		q = q.Where("sender_id = ? OR receiver_id = ?", caller.ID, caller.ID)
	}
	var rows []models.ChatMessage
	if err := q.Order("timestamp ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = rows[i].Redacted()
	}
	return rows, nil
}

func (s *ChatService) load(ctx context.Context, caller Caller, id uint) (*models.ChatMessage, error) {
	var m models.ChatMessage
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	if m.SenderID != caller.ID && m.ReceiverID != caller.ID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *ChatService) MarkRead(ctx context.Context, caller Caller, id uint) (*models.ChatMessage, error) {
	m, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if m.ReceiverID != caller.ID {
		return nil, ErrForbidden
	}
	if err := s.db.WithContext(ctx).Model(m).Update("is_read", true).Error; err != nil {
		return nil, err
	}
	m.IsRead = true
	out := m.Redacted()
	return &out, nil
}

func (s *ChatService) Revoke(ctx context.Context, caller Caller, id uint) (*models.ChatMessage, error) {
	m, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if m.SenderID != caller.ID {
		return nil, ErrForbidden
	}
	if err := s.db.WithContext(ctx).Model(m).Update("is_revoked", true).Error; err != nil {
		return nil, err
	}
	m.IsRevoked = true
	out := m.Redacted()
	if s.hub != nil {
		payload := map[string]any{"kind": "chat.revoked", "message": out}
		s.hub.Broadcast(m.ReceiverID, payload)
	}
	return &out, nil
}
