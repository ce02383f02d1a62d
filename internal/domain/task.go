package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the urgency level of a task
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Field limits for task validation
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Validation messages returned to clients. The exact wording is part of
// the API contract and is asserted by tests.
const (
	MsgTitleRequired      = "Title is required"
	MsgTitleTooLong       = "Title must be less than 200 characters"
	MsgDescriptionTooLong = "Description must be less than 1000 characters"
	MsgInvalidStatus      = "Invalid status. Must be: pending, in-progress, or completed"
	MsgInvalidPriority    = "Invalid priority. Must be: low, medium, or high"
)

// Task represents a single tracked task. Description is a pointer so
// that an absent description survives the round trip to storage as
// JSON null rather than an empty string.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewTask creates a new Task with the given title, description, status,
// and priority. It generates a new UUID for the task ID and sets the
// creation timestamp. Empty status and priority fall back to the
// defaults (pending, medium).
// Returns a *ValidationError listing every violation if validation fails.
func NewTask(title string, description *string, status TaskStatus, priority TaskPriority) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data. All rules are evaluated
// and every violation is reported together rather than short-circuiting
// on the first failure.
// Returns a *ValidationError carrying the ordered message list, or nil.
func (t *Task) Validate() error {
	var messages []string

	if t.Title == "" {
		messages = append(messages, MsgTitleRequired)
	} else if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		messages = append(messages, MsgTitleTooLong)
	}

	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		messages = append(messages, MsgDescriptionTooLong)
	}

	if !t.Status.IsValid() {
		messages = append(messages, MsgInvalidStatus)
	}

	if !t.Priority.IsValid() {
		messages = append(messages, MsgInvalidPriority)
	}

	if len(messages) > 0 {
		return NewValidationError(messages)
	}

	return nil
}

// Clone returns an independent copy of the task. Callers may mutate the
// copy freely without affecting stored state.
func (t *Task) Clone() *Task {
	clone := *t
	if t.Description != nil {
		desc := *t.Description
		clone.Description = &desc
	}
	return &clone
}

// IsValid checks if the status is a member of the closed status set.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// IsValid checks if the priority is a member of the closed priority set.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// TaskRecord is the wire representation of a Task used by file-backed
// storage: all fields are plain strings except the nullable description.
// Array order in the backing file is the collection's iteration order.
type TaskRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	CreatedAt   string  `json:"created_at"`
}

// ToRecord converts the task to its wire representation. Enum fields
// serialize to their lowercase string value and the creation timestamp
// to RFC 3339 text.
func (t *Task) ToRecord() TaskRecord {
	return TaskRecord{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
	}
}

// TaskFromRecord builds a Task from its wire representation.
// A record with a malformed ID, an enum value outside its closed set,
// or an unparsable timestamp yields an error wrapping ErrInvalidRecord
// rather than a task with silently defaulted fields.
func TaskFromRecord(rec TaskRecord) (*Task, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed id %q: %v", ErrInvalidRecord, rec.ID, err)
	}

	status := TaskStatus(rec.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, rec.Status)
	}

	priority := TaskPriority(rec.Priority)
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidRecord, rec.Priority)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: unparsable created_at %q: %v", ErrInvalidRecord, rec.CreatedAt, err)
	}

	return &Task{
		ID:          id,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   createdAt,
	}, nil
}
