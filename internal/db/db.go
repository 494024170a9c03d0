package db

import (
	"fmt"

	"notifyd/internal/notification"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// At most one pending reminder per user/reference/occurrence-minute. The
// reconciler checks before inserting, but only this constraint holds when
// multiple instances run against the same database.
//
// task_at is timestamptz, and date_trunc on timestamptz is only STABLE (it
// reads the session TimeZone), which postgres rejects in an index
// expression. Shifting to UTC first yields a plain timestamp, where
// date_trunc is IMMUTABLE; all instants in this service are UTC anyway.
const pendingOccurrenceIndex = `
create unique index if not exists uq_notifications_pending_occurrence
on notifications(user_id, reference_id, date_trunc('minute', task_at at time zone 'utc'))
where status = 'pending' and task_at is not null;
`

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&notification.Notification{}); err != nil {
		return err
	}

	if err := gdb.Exec(pendingOccurrenceIndex).Error; err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_notifications_due on notifications(type, status, show_at);`,
		`create index if not exists idx_notifications_user_status on notifications(user_id, status);`,
		`create index if not exists idx_notifications_user_created on notifications(user_id, created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
