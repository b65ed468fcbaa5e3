package notify

import (
	"context"
	"log"
	"math"
	"time"
)

// Sink receives a due notification. The default sink writes a tagged log
// line; a push or webhook sink slots in behind the same interface.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// LogSink prints the reminder with its event id attached.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, n Notification) error {
	log.Printf("[REMINDER] eventId=%s title=%q body=%q\n", n.EventID, n.Title, n.Body)
	return nil
}

// Dispatcher polls the queue and delivers due notifications. Whether a
// delivered notification was actually seen is not tracked; once sent,
// the row is done.
type Dispatcher struct {
	ID       string
	Queue    *Queue
	Sink     Sink
	Interval time.Duration
}

func (d *Dispatcher) Run(ctx context.Context) {
	interval := d.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := d.Queue.Claim(d.ID)
			if err != nil {
				log.Printf("dispatcher claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			d.handle(ctx, job)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, job *ReminderJob) {
	n := Notification{
		EventID: job.EventID,
		Title:   job.Title,
		Body:    job.Body,
		FireAt:  job.FireAt,
	}
	if err := d.Sink.Deliver(ctx, n); err != nil {
		d.retry(job, err.Error())
		return
	}
	_ = d.Queue.MarkSent(job.ID)
}

func (d *Dispatcher) retry(job *ReminderJob, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = d.Queue.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = d.Queue.RetryLater(job.ID, attempts, next, errMsg)
}
