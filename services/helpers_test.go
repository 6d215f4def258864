package services

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) Caller {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	switch role {
	case models.RoleUser:
		ru := models.RegularUser{UserID: u.ID, TrackingMode: models.TrackingPersonal}
		require.NoError(t, db.Omit(clause.Associations).Create(&ru).Error)
	case models.RoleTrainer, models.RoleNutritionist:
		ex := models.Expert{UserID: u.ID, ExpertType: role}
		require.NoError(t, db.Omit(clause.Associations).Create(&ex).Error)
	}
	return Caller{ID: u.ID, Role: role}
}

func connectTo(t *testing.T, db *gorm.DB, user Caller, experts ...Caller) {
	t.Helper()
	var ru models.RegularUser
	require.NoError(t, db.First(&ru, "user_id = ?", user.ID).Error)
	for _, ex := range experts {
		id := ex.ID
		switch ex.Role {
		case models.RoleTrainer:
			ru.ConnectedTrainerID = &id
		case models.RoleNutritionist:
			ru.ConnectedNutritionistID = &id
		}
	}
	ru.TrackingMode = models.TrackingConnected
	require.NoError(t, db.Omit(clause.Associations).Save(&ru).Error)
}

type recordedEvent struct {
	Key   string
	Value any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Key: key, Value: v})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Key
	}
	return out
}

type broadcast struct {
	UserID  uint
	Payload any
}

type fakeHub struct {
	mu   sync.Mutex
	sent []broadcast
}

func (h *fakeHub) Broadcast(userID uint, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, broadcast{UserID: userID, Payload: payload})
}

func (h *fakeHub) to(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, b := range h.sent {
		if b.UserID == userID {
			n++
		}
	}
	return n
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}
