package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderJob is one queued notification row. The uuid primary key is
// the handle returned to the coordinator.
type ReminderJob struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	EventID string `gorm:"index;not null"`

	Title  string    `gorm:"type:text;not null"`
	Body   string    `gorm:"type:text;not null"`
	FireAt time.Time `gorm:"index;not null"`

	Status string `gorm:"index;not null;default:'PENDING'"` // PENDING/SENT/CANCELLED/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// Queue is the production Scheduler: notifications are rows in Postgres
// and a Dispatcher delivers them when due.
type Queue struct {
	DB *gorm.DB
}

func (q *Queue) Schedule(ctx context.Context, n Notification) (string, error) {
	job := ReminderJob{
		ID:          uuid.NewString(),
		EventID:     n.EventID,
		Title:       n.Title,
		Body:        n.Body,
		FireAt:      n.FireAt,
		Status:      "PENDING",
		MaxAttempts: 8,
	}
	if err := q.DB.WithContext(ctx).Create(&job).Error; err != nil {
		return "", err
	}
	return job.ID, nil
}

// Cancel flips a pending row to CANCELLED. Rows that already fired,
// failed or never existed are left alone; matching zero rows is fine.
func (q *Queue) Cancel(ctx context.Context, handle string) error {
	return q.DB.WithContext(ctx).Exec(
		`update reminder_jobs set status='CANCELLED', updated_at=now() where id=? and status='PENDING'`,
		handle,
	).Error
}

func (q *Queue) Ping(ctx context.Context) error {
	sqlDB, err := q.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Claim one due job atomically using SKIP LOCKED.
// Works on Postgres.
func (q *Queue) Claim(workerID string) (*ReminderJob, error) {
	var job ReminderJob
	err := q.DB.Transaction(func(tx *gorm.DB) error {
		// requeue stuck RUNNING jobs (safety against a dead dispatcher)
		tx.Exec(`
update reminder_jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=now()
where status='RUNNING' and locked_at is not null and locked_at < now() - interval '5 minutes'
`)

		// FOR UPDATE SKIP LOCKED ensures no double-claim
		return tx.Raw(`
with cte as (
  select id
  from reminder_jobs
  where status='PENDING' and fire_at <= now()
  order by fire_at asc
  for update skip locked
  limit 1
)
update reminder_jobs
set status='RUNNING', locked_by=?, locked_at=now(), updated_at=now()
where id in (select id from cte)
returning *;
`, workerID).Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, nil
	}
	return &job, nil
}

func (q *Queue) MarkSent(id string) error {
	return q.DB.Exec(`update reminder_jobs set status='SENT', updated_at=now() where id=?`, id).Error
}

func (q *Queue) MarkFailed(id string, errMsg string) error {
	return q.DB.Exec(`update reminder_jobs set status='FAILED', last_error=?, updated_at=now() where id=?`, errMsg, id).Error
}

func (q *Queue) RetryLater(id string, attempts int, fireAt time.Time, errMsg string) error {
	return q.DB.Exec(`
update reminder_jobs
set status='PENDING',
    attempts=?,
    fire_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, fireAt, errMsg, id).Error
}
