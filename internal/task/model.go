package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frequency is how often a scheduled task item repeats.
type Frequency string

const (
	FrequencyOnce     Frequency = "once"
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// ParseFrequency normalizes the feed's free-form frequency tag. An absent tag
// means the task fires once. Any other unrecognized value deliberately falls
// through to daily, so task data with a misspelled tag keeps producing the
// reminders it always has instead of going silent.
func ParseFrequency(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "once":
		return FrequencyOnce
	case "weekly":
		return FrequencyWeekly
	case "biweekly":
		return FrequencyBiweekly
	case "monthly":
		return FrequencyMonthly
	default:
		return FrequencyDaily
	}
}

// Definition is one user's task document as served by the Tasks API.
type Definition struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	Tasks          []Item    `json:"tasks"`
	CompletedTasks []Item    `json:"completedTasks"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Item is a single entry inside a task document. Date and Time are kept as
// the feed's strings; an item missing either is simply not schedulable.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Frequency   string `json:"frequency"`
	CreatedAt   string `json:"createdAt"`
}

func (it Item) Schedulable() bool {
	return it.Date != "" && it.Time != ""
}
