package domain

import "unicode/utf8"

// TaskPatch is a sparse update: only present fields are applied.
// This distinguishes "leave unchanged" (absent) from "reset to empty"
// (present with a zero or nil value), so a partial update never
// clobbers fields the caller did not mention. Description carries an
// explicit presence flag because its value is itself nullable: a set
// nil description clears the field.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Status         *string
	Priority       *string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Status == nil && p.Priority == nil
}

// Validate checks the patch in partial mode: the title-required rule is
// skipped since a partial update need not resupply the title, but the
// length and closed-set rules still apply to every field that is present.
// Returns a *ValidationError with all violations, or nil.
func (p TaskPatch) Validate() error {
	var messages []string

	if p.Title != nil && utf8.RuneCountInString(*p.Title) > MaxTitleLength {
		messages = append(messages, MsgTitleTooLong)
	}

	if p.DescriptionSet && p.Description != nil && utf8.RuneCountInString(*p.Description) > MaxDescriptionLength {
		messages = append(messages, MsgDescriptionTooLong)
	}

	if p.Status != nil && !TaskStatus(*p.Status).IsValid() {
		messages = append(messages, MsgInvalidStatus)
	}

	if p.Priority != nil && !TaskPriority(*p.Priority).IsValid() {
		messages = append(messages, MsgInvalidPriority)
	}

	if len(messages) > 0 {
		return NewValidationError(messages)
	}

	return nil
}

// Apply copies the patch's present fields onto a clone of the given
// task and returns the clone. A set nil description clears the task's
// description. The task's ID and CreatedAt are never altered. The
// result still needs a full Validate before persistence.
func (p TaskPatch) Apply(task *Task) *Task {
	updated := task.Clone()

	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.DescriptionSet {
		updated.Description = p.Description
	}
	if p.Status != nil {
		updated.Status = TaskStatus(*p.Status)
	}
	if p.Priority != nil {
		updated.Priority = TaskPriority(*p.Priority)
	}

	return updated
}
