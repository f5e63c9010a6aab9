package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus = errors.New("model: invalid task status")
	ErrInvalidRating = errors.New("model: rating must be between 1 and 5")
	ErrInvalidPrice  = errors.New("model: price must be positive")
)

// TaskStatus is the server-side lifecycle state of a task. The client only
// observes transitions; unknown values from the server are kept verbatim.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskFilter selects tasks by status. FilterAll sends no status parameter.
type TaskFilter string

const FilterAll TaskFilter = "all"

func TaskFilters() []TaskFilter {
	return []TaskFilter{FilterAll, TaskFilter(TaskStatusOpen), TaskFilter(TaskStatusPending), TaskFilter(TaskStatusCompleted)}
}

func (f TaskFilter) IsValid() bool {
	for _, known := range TaskFilters() {
		if f == known {
			return true
		}
	}
	return false
}

// Status returns the status query value, or "" for FilterAll.
func (f TaskFilter) Status() string {
	if f == FilterAll || f == "" {
		return ""
	}
	return string(f)
}

func ParseTaskFilter(raw string) (TaskFilter, error) {
	f := TaskFilter(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FilterAll, nil
	}
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return f, nil
}

type Task struct {
	ID          int64
	Title       string
	Description string
	Status      TaskStatus
	Budget      float64
	Currency    string
	Deadline    string
	ClientID    int64
}

type Offer struct {
	ID             int64
	TaskID         int64
	FreelancerID   int64
	FreelancerName string
	Price          float64
	Currency       string
	Message        string
	Accepted       bool
}

// OfferDraft is what a freelancer submits; the server assigns everything else.
type OfferDraft struct {
	TaskID  int64
	Price   float64
	Message string
}

func (d OfferDraft) Validate() error {
	if d.TaskID <= 0 {
		return errors.New("model: offer task_id is required")
	}
	if d.Price <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, d.Price)
	}
	return nil
}

type Review struct {
	ID           int64
	TaskID       int64
	ReviewerID   int64
	ReviewerName string
	Rating       int
	Comment      string
}

type ReviewDraft struct {
	TaskID  int64
	Rating  int
	Comment string
}

func (d ReviewDraft) Validate() error {
	if d.TaskID <= 0 {
		return errors.New("model: review task_id is required")
	}
	if d.Rating < 1 || d.Rating > 5 {
		return fmt.Errorf("%w: %d", ErrInvalidRating, d.Rating)
	}
	return nil
}
