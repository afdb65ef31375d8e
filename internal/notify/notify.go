// Package notify queues user notifications through Redis and drains them
// into the notifications table from a background worker, so request handlers
// never block on notification delivery.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/logger"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/metrics"
)

const queueKey = "notifications"

const (
	KindRegistrationConfirmed = "registration_confirmed"
	KindPaymentSuccess        = "payment_success"
	KindPaymentFailed         = "payment_failed"
	KindWithdrawalResolved    = "withdrawal_resolved"
	KindPrizeWon              = "prize_won"
	KindRoomPublished         = "room_published"
)

type Job struct {
	UserID  int       `json:"user_id"`
	Kind    string    `json:"kind"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Notification struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"kind"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Service struct {
	redis *redis.Client
	db    *sqlx.DB
}

func New(redisClient *redis.Client, database *sqlx.DB) *Service {
	return &Service{redis: redisClient, db: database}
}

// Queue pushes a notification job. Failures are logged and swallowed; a lost
// notification must never fail the operation that produced it.
func (s *Service) Queue(ctx context.Context, userID int, kind, title, body string) {
	job := Job{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification for user %d: %v", userID, err)
		return
	}

	metrics.RecordNotification(kind)
	logger.Infof("Notification queued: %s for user %d", kind, userID)
}

// Start drains the queue until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.persist(ctx, job); err != nil {
		logger.Errorf("Failed to store notification for user %d: %v", job.UserID, err)

		if job.Tries < 3 {
			time.Sleep(2 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			logger.Errorf("Notification for user %d dropped after 3 attempts", job.UserID)
		}
		return
	}

	if n, err := s.redis.LLen(ctx, queueKey).Result(); err == nil {
		metrics.NotificationQueueLength.Set(float64(n))
	}
}

func (s *Service) persist(ctx context.Context, job Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, kind, title, body)
		VALUES ($1, $2, $3, $4)`,
		job.UserID, job.Kind, job.Title, job.Body)
	return err
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	notifications := []Notification{}
	err := s.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, kind, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	return notifications, err
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	return err
}
