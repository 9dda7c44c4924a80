package booking

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var statuses = []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}

// ErrInvalidStatus is returned for a status outside the known set.
type ErrInvalidStatus struct{ Value string }

func (e ErrInvalidStatus) Error() string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return fmt.Sprintf("Invalid status %q. Must be one of: %s", e.Value, strings.Join(names, ", "))
}

func ParseStatus(v string) (Status, error) {
	for _, s := range statuses {
		if string(s) == v {
			return s, nil
		}
	}
	return "", ErrInvalidStatus{Value: v}
}

// Terminal reports whether s ends the lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func terminalStatuses() []Status {
	var out []Status
	for _, s := range statuses {
		if s.Terminal() {
			out = append(out, s)
		}
	}
	return out
}

// Lifecycle is the status part of every booking.
//
// Any known status may follow any other; ordering is left to the operator.
// The confirmation and completion stamps record the first time a booking
// entered those states and are never moved afterwards.
type Lifecycle struct {
	Status      Status     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// NewLifecycle is the state of a freshly created booking.
func NewLifecycle() Lifecycle {
	return Lifecycle{Status: StatusPending}
}

// Transition moves to the status named by to.
func (l *Lifecycle) Transition(to string, now time.Time) error {
	s, err := ParseStatus(to)
	if err != nil {
		return err
	}
	l.Status = s
	switch s {
	case StatusConfirmed:
		if l.ConfirmedAt == nil {
			l.ConfirmedAt = &now
		}
	case StatusCompleted:
		if l.CompletedAt == nil {
			l.CompletedAt = &now
		}
	}
	return nil
}
