package db

import (
	"fmt"

	"upnext/internal/kv"
	"upnext/internal/notify"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&kv.Entry{},
		&notify.ReminderJob{},
	); err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_reminder_jobs_due on reminder_jobs(status, fire_at);`,
		`create index if not exists idx_reminder_jobs_lock on reminder_jobs(status, locked_at);`,
		`create index if not exists idx_reminder_jobs_event on reminder_jobs(event_id, status);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
