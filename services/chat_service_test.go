package services

import (
	"context"
	"testing"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessagingRules(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	hub := &fakeHub{}
	svc := NewChatService(db, hub, nil, quietLogger())

	alice := seedUser(t, db, "alice", models.RoleUser)
	bob := seedUser(t, db, "bob", models.RoleUser)
	coach := seedUser(t, db, "coach", models.RoleTrainer)
	nutri := seedUser(t, db, "nutri", models.RoleNutritionist)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	connectTo(t, db, alice, coach, nutri)

	cases := []struct {
		name   string
		from   Caller
		to     uint
		reject bool
	}{
		{"user to connected trainer", alice, coach.ID, false},
		{"user to connected nutritionist", alice, nutri.ID, false},
		{"trainer to connected user", coach, alice.ID, false},
		{"user to user", alice, bob.ID, true},
		{"unconnected user to trainer", bob, coach.ID, true},
		{"trainer to unconnected user", coach, bob.ID, true},
		{"expert to expert", coach, nutri.ID, true},
		{"admin", admin, alice.ID, true},
		{"missing receiver", alice, 9999, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.from, ChatInput{ReceiverID: tc.to, Message: "xin chào"})
			if !tc.reject {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "receiver")
		})
	}

	// coach received one and sent one; alice sent two and received one
	assert.Equal(t, 2, hub.to(coach.ID))
	assert.Equal(t, 3, hub.to(alice.ID))
}

func TestChatRevokeAndRead(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	hub := &fakeHub{}
	events := &fakePublisher{}
	svc := NewChatService(db, hub, events, quietLogger())

	alice := seedUser(t, db, "alice", models.RoleUser)
	coach := seedUser(t, db, "coach", models.RoleTrainer)
	bob := seedUser(t, db, "bob", models.RoleUser)
	connectTo(t, db, alice, coach)

	m, err := svc.Send(ctx, alice, ChatInput{ReceiverID: coach.ID, Message: "bí mật"})
	require.NoError(t, err)
	assert.Equal(t, "text", m.MessageType)
	assert.Equal(t, []string{EventChatMessageSent}, events.keys())

	_, err = svc.MarkRead(ctx, alice, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.MarkRead(ctx, bob, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	read, err := svc.MarkRead(ctx, coach, m.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = svc.Revoke(ctx, coach, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	revoked, err := svc.Revoke(ctx, alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RevokedMessageText, revoked.Message)

	msgs, err := svc.List(ctx, coach, alice.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsRevoked)
	assert.Equal(t, models.RevokedMessageText, msgs[0].Message)

	none, err := svc.List(ctx, bob, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
