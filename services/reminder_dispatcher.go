package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const dispatchBatch = 500

// ReminderDispatcher delivers due reminders over the realtime hub and push,
// then stamps delivered_at so each reminder fires once.
type ReminderDispatcher struct {
	db   *gorm.DB
	hub  Broadcaster
	push Pusher
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewReminderDispatcher(db *gorm.DB, hub Broadcaster, push Pusher, log logrus.FieldLogger) *ReminderDispatcher {
	return &ReminderDispatcher{db: db, hub: hub, push: push, log: log, now: time.Now}
}

func (d *ReminderDispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.now().UTC()
	var due []models.Reminder
	if err := d.db.WithContext(ctx).
		Where("delivered_at IS NULL AND send_at <= ?", now).
		Order("send_at ASC").
		Limit(dispatchBatch).
		Find(&due).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		r := due[i]
		res := d.db.WithContext(ctx).Model(&models.Reminder{}).
			Where("id = ? AND delivered_at IS NULL", r.ID).
			Update("delivered_at", now)
		if res.Error != nil {
			return sent, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		r.DeliveredAt = &now

		if d.hub != nil {
			d.hub.Broadcast(r.UserID, map[string]any{
				"kind":     "reminder.due",
				"reminder": r,
			})
		}
		if d.push != nil {
			if err := d.push.PushToUser(ctx, r.UserID, "Nhắc nhở", r.Message, map[string]string{
				"type": r.ReminderType, "reminderId": fmt.Sprintf("%d", r.ID),
			}); err != nil {
				d.log.WithError(err).WithField("reminder_id", r.ID).Warn("reminder push failed")
			}
		}
		sent++
	}
	return sent, nil
}

// Start schedules DispatchDue on schedule and returns the running scheduler.
func (d *ReminderDispatcher) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := d.DispatchDue(ctx)
		if err != nil {
			d.log.WithError(err).Error("reminder dispatch failed")
			return
		}
		if n > 0 {
			d.log.WithField("count", n).Info("reminders delivered")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
