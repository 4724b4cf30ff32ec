package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"tourbook/src/lib"
	"tourbook/src/models"
	"tourbook/src/types"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bookingsActionURL = "/bookings"

// NotificationSink delivers one notification. Delivery is fire-and-forget
// from the engine's perspective.
type NotificationSink interface {
	Name() string
	Send(ctx context.Context, n *models.Notification) error
}

// Dispatcher fans a lifecycle event out to its sinks. It never fails the
// triggering mutation: sink errors are logged and dropped.
type Dispatcher struct {
	sinks []NotificationSink
}

func NewDispatcher(sinks ...NotificationSink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) {
	if n.RecipientID == 0 || n.RecipientID == n.ActorID {
		return
	}
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, n); err != nil {
			log.Printf("[notify] %s: could not deliver %s to user %d: %s\n", sink.Name(), n.Type, n.RecipientID, err.Error())
		}
	}
}

// BookingEvent dispatches the single counterparty notification for a
// creation or a completed transition.
func (d *Dispatcher) BookingEvent(ctx context.Context, eventType types.NotificationType, booking *models.Booking, actor types.Actor, recipientID uint) {
	action := bookingsActionURL
	n := &models.Notification{
		Type:        eventType,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetType:  "booking",
		TargetID:    booking.ID.String(),
		Message:     bookingMessage(eventType, booking),
		ActionURL:   &action,
	}
	d.Dispatch(ctx, n)
}

// TourRated follows the same contract but deliberately carries no action
// URL: a rating is informational, there is nothing for the guide to act on.
func (d *Dispatcher) TourRated(ctx context.Context, actorID, recipientID, tourID uint, tourTitle string) {
	if tourTitle == "" {
		tourTitle = fmt.Sprintf("tour #%d", tourID)
	}
	n := &models.Notification{
		Type:        types.NOTIFY_TOUR_RATED,
		ActorID:     actorID,
		RecipientID: recipientID,
		TargetType:  "tour",
		TargetID:    fmt.Sprintf("%d", tourID),
		Message:     fmt.Sprintf("Your %s received a new rating", tourTitle),
	}
	d.Dispatch(ctx, n)
}

func tourLabel(b *models.Booking) string {
	if b.Tour != nil && b.Tour.Title != "" {
		return b.Tour.Title
	}
	return fmt.Sprintf("tour #%d", b.TourID)
}

func bookingMessage(eventType types.NotificationType, b *models.Booking) string {
	label := tourLabel(b)
	switch eventType {
	case types.NOTIFY_BOOKING_CREATED:
		if b.Status == types.BOOKING_OFFERED {
			return fmt.Sprintf("You received a booking offer for %s on %s", label, b.BookingDate)
		}
		return fmt.Sprintf("New booking request for %s on %s", label, b.BookingDate)
	case types.NOTIFY_BOOKING_ACCEPTED:
		return fmt.Sprintf("Your booking for %s was accepted", label)
	case types.NOTIFY_BOOKING_DECLINED:
		return fmt.Sprintf("Your booking for %s was declined", label)
	case types.NOTIFY_BOOKING_PAID:
		return fmt.Sprintf("Payment received for %s", label)
	case types.NOTIFY_BOOKING_COMPLETED:
		return fmt.Sprintf("Your booking for %s is completed", label)
	case types.NOTIFY_BOOKING_CANCELED:
		return fmt.Sprintf("Booking for %s was cancelled", label)
	default:
		return fmt.Sprintf("Booking for %s was updated", label)
	}
}

// EventTypeFor maps a target status to its notification type.
func EventTypeFor(target types.BookingStatus) types.NotificationType {
	switch target {
	case types.BOOKING_ACCEPTED:
		return types.NOTIFY_BOOKING_ACCEPTED
	case types.BOOKING_DECLINED:
		return types.NOTIFY_BOOKING_DECLINED
	case types.BOOKING_PAID:
		return types.NOTIFY_BOOKING_PAID
	case types.BOOKING_COMPLETED:
		return types.NOTIFY_BOOKING_COMPLETED
	case types.BOOKING_CANCELED:
		return types.NOTIFY_BOOKING_CANCELED
	default:
		return types.NOTIFY_BOOKING_CREATED
	}
}

// GormSink persists the notification row; the sink side owns its
// read/unread lifecycle from there.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Name() string { return "store" }

func (s *GormSink) Send(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// RedisSink pushes the notification onto the recipient's feed and
// publishes it for live subscribers.
type RedisSink struct {
	rdb *redis.Client
}

func NewRedisSink(rdb *redis.Client) *RedisSink {
	return &RedisSink{rdb: rdb}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, n *models.Notification) error {
	if s.rdb == nil {
		return fmt.Errorf("redis client not configured")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("notifications:%d", n.RecipientID)
	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, 99)
	pipe.Expire(ctx, key, 30*24*time.Hour)
	pipe.Publish(ctx, key, payload)
	_, err = pipe.Exec(ctx)
	return err
}

// MailSink emails the recipient through the shared SMTP client.
type MailSink struct {
	db *gorm.DB
}

func NewMailSink(db *gorm.DB) *MailSink {
	return &MailSink{db: db}
}

func (s *MailSink) Name() string { return "smtp" }

func (s *MailSink) Send(ctx context.Context, n *models.Notification) error {
	var recipient models.User
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("email", "name").
		Where("id = ?", n.RecipientID).
		First(&recipient).
		Error
	if err != nil {
		return err
	}
	senderFrom := os.Getenv("SMTP_FROM")
	body := fmt.Sprintf("<p>%s</p>", n.Message)
	if n.ActionURL != nil {
		body = fmt.Sprintf("%s<p><a href=%q>View your bookings</a></p>", body, *n.ActionURL)
	}
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Tourbook: %s", n.Message),
		From:     senderFrom,
		FromName: "noreply",
		To:       []string{recipient.Email},
		Body:     body,
		Html:     true,
	}
	return lib.SendMail(input)
}
