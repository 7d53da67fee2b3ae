package model

import (
	"time"

	"github.com/google/uuid"
)

// RunState is the per-run state machine:
// Idle -> Validating -> AwaitingConfirmation -> Writing -> Done.
// There is no retry or resume state; a failed run is restarted from the file.
type RunState string

const (
	StateIdle                 RunState = "idle"
	StateValidating           RunState = "validating"
	StateAwaitingConfirmation RunState = "awaiting_confirmation"
	StateWriting              RunState = "writing"
	StateDone                 RunState = "done"
)

var allowedTransitions = map[RunState]RunState{
	StateIdle:                 StateValidating,
	StateValidating:           StateAwaitingConfirmation,
	StateAwaitingConfirmation: StateWriting,
	StateWriting:              StateDone,
}

// ImportRun is one user-initiated import attempt. It lives in the session
// store between the validation request and the confirmation request.
type ImportRun struct {
	ID         string           `json:"id"`
	Type       ImportType       `json:"type"`
	UserID     string           `json:"user_id"`
	FileName   string           `json:"file_name"`
	FileKey    string           `json:"file_key,omitempty"` // archived upload, if any
	State      RunState         `json:"state"`
	TotalRows  int              `json:"total_rows"`
	Rows       Classification   `json:"classification"`
	References []ReferenceEntry `json:"references"`
	Result     *ImportResult    `json:"result,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewImportRun starts a run in StateIdle
func NewImportRun(t ImportType, userID, fileName string) *ImportRun {
	now := time.Now()
	return &ImportRun{
		ID:        uuid.New().String(),
		Type:      t,
		UserID:    userID,
		FileName:  fileName,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the run forward; any other move is rejected
func (r *ImportRun) Transition(to RunState) error {
	if next, ok := allowedTransitions[r.State]; !ok || next != to {
		return NewInvalidTransition(r.State, to)
	}
	r.State = to
	r.UpdatedAt = time.Now()
	return nil
}

// ReferenceSet rebuilds the snapshot taken at validation time
func (r *ImportRun) ReferenceSet() *ReferenceSet {
	return NewReferenceSet(r.References)
}

// ========================================
// VALIDATION REPORT (response of the validation phase)
// ========================================

// ValidationReport is what the user reviews before confirming the write
type ValidationReport struct {
	SessionID  string         `json:"session_id"`
	Type       ImportType     `json:"type"`
	FileName   string         `json:"file_name"`
	State      RunState       `json:"state"`
	TotalRows  int            `json:"total_rows"`
	Valid      int            `json:"valid"`
	Invalid    int            `json:"invalid"`
	Duplicates int            `json:"duplicates"`
	Updates    int            `json:"updates"`
	Skipped    int            `json:"skipped"`
	Rows       Classification `json:"rows"`
}

// NewValidationReport summarizes a run awaiting confirmation
func NewValidationReport(run *ImportRun) *ValidationReport {
	return &ValidationReport{
		SessionID:  run.ID,
		Type:       run.Type,
		FileName:   run.FileName,
		State:      run.State,
		TotalRows:  run.TotalRows,
		Valid:      len(run.Rows.Valid),
		Invalid:    len(run.Rows.Invalid),
		Duplicates: len(run.Rows.Duplicates),
		Updates:    len(run.Rows.Updates),
		Skipped:    run.Rows.Skipped,
		Rows:       run.Rows,
	}
}
