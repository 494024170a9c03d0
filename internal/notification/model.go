package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reminder lifecycle. The activator owns pending→sent; read is only ever set
// through the mark-read endpoint, and no transition moves backward.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusRead    = "read"
)

const (
	TypeTask    = "task"
	TypeExpense = "expense"
)

// DuplicateTolerance is how close two occurrence instants must be before
// they count as the same occurrence. Guards against sub-minute jitter
// between generation passes.
const DuplicateTolerance = time.Minute

// Notification is one reminder row. TaskAt is the occurrence the reminder is
// for and ShowAt is when it becomes visible; both are nil for notifications
// that aren't tied to a scheduled occurrence.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	Type        string     `gorm:"size:20;not null" json:"type"` // "task" or "expense"
	ReferenceID uuid.UUID  `gorm:"type:uuid;not null" json:"referenceId"`
	Message     string     `gorm:"not null" json:"message"`
	Status      string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	TaskAt      *time.Time `gorm:"column:task_at" json:"taskDateTime,omitempty"`
	ShowAt      *time.Time `gorm:"column:show_at" json:"showAt,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updatedAt"`
}

// ReminderMessage renders the reminder text for one occurrence of a task.
func ReminderMessage(title, timeOfDay, date string) string {
	return fmt.Sprintf("Reminder: %s - Time: %s - Date: %s", title, timeOfDay, date)
}
