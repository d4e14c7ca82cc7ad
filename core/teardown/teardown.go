package teardown

import (
	"context"

	"github.com/pkg/errors"
)

// RootKind identifies the kind of entity a teardown is rooted at.
type RootKind string

const (
	RootUser      RootKind = "user"
	RootClassroom RootKind = "classroom"
)

// Status tracks a teardown run through its lifecycle.
type Status string

const (
	StatusPending        Status = "pending"
	StatusAuthorizing    Status = "authorizing"
	StatusResolving      Status = "resolving"
	StatusExecuting      Status = "executing"
	StatusCompletingRoot Status = "completing-root"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// Stage names. A user-rooted run walks them leaves-first; a classroom-rooted
// run uses the subset that applies.
const (
	StageChatMessages    = "chat-messages"
	StageComments        = "comments"
	StagePrivateComments = "private-comments"
	StageOwnedStreams    = "owned-streams"
	StageStreams         = "streams"
	StageEnrollments     = "enrollments"
	StageOwnedClassrooms = "owned-classrooms"
	StageNotes           = "notes"
	StageNotifications   = "notifications"
	StageRoleRequest     = "role-request"
	StageAvatarBlob      = "avatar-blob"
	StageRoot            = "root"
)

var (
	// ErrTeardownInProgress reports that another teardown of the same root
	// currently holds the per-root lock.
	ErrTeardownInProgress = errors.New("a teardown of this target is already in progress")

	errUnknownRootKind = errors.New("unknown root kind")
)

type (
	// Step is one idempotent deletion: the attachment URLs to clean out of
	// object storage first, then the row delete itself. A nil delete is a
	// blob-only step (eg. the root user's avatar).
	Step struct {
		EntityID    string
		Attachments []string
		delete      func(ctx context.Context) error
	}

	// Stage is a named batch of Steps. Steps within a Stage run in order;
	// a dependent's Stage always precedes the Stage of anything it points
	// to, which is what keeps foreign references intact without relying on
	// store-native cascades.
	Stage struct {
		Name  string
		Steps []Step
	}

	// Result is the aggregate outcome of one teardown run. Stages completed
	// before a failure are committed and are not rolled back; a retry skips
	// them through the idempotent step runner.
	Result struct {
		RootKind        RootKind `json:"root_kind"`
		RootID          string   `json:"root_id"`
		Status          Status   `json:"status"`
		CompletedStages []string `json:"completed_stages"`
		FailedStage     string   `json:"failed_stage,omitempty"`
		Warnings        []string `json:"warnings,omitempty"`
	}
)

// Failed reports whether the run ended without completing every stage.
func (r Result) Failed() bool { return r.Status != StatusCompleted }
