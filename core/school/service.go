package school

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound = errors.New("record not found")
)

type (
	Repository interface {
		GetClassroom(ctx context.Context, id string, exec ...core.DBExecutor) (Classroom, error)
		QueryClassroomsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Classroom, error)
		// DeleteClassroom removes a single Classroom row; ErrNotFound when
		// already gone. Memberships are rows of their own and are removed
		// through DeleteEnrollment before this is called.
		DeleteClassroom(ctx context.Context, id string, exec ...core.DBExecutor) error

		QueryEnrollmentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Enrollment, error)
		QueryEnrollmentsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Enrollment, error)
		DeleteEnrollment(ctx context.Context, id, classID string, exec ...core.DBExecutor) error

		GetStream(ctx context.Context, id string, exec ...core.DBExecutor) (Stream, error)
		QueryStreamsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Stream, error)
		QueryStreamsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Stream, error)
		DeleteStream(ctx context.Context, id string, exec ...core.DBExecutor) error

		GetComment(ctx context.Context, id string, exec ...core.DBExecutor) (Comment, error)
		QueryCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Comment, error)
		QueryCommentsByStream(ctx context.Context, streamID string, exec ...core.DBExecutor) ([]Comment, error)
		DeleteComment(ctx context.Context, id string, exec ...core.DBExecutor) error
		DeleteCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error

		QueryPrivateCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]PrivateComment, error)
		QueryPrivateCommentsByStream(ctx context.Context, streamID string, exec ...core.DBExecutor) ([]PrivateComment, error)
		DeletePrivateComment(ctx context.Context, id string, exec ...core.DBExecutor) error
		DeletePrivateCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error

		QueryClassworkByStream(ctx context.Context, streamID string, exec ...core.DBExecutor) ([]Classwork, error)
		DeleteClasswork(ctx context.Context, id string, exec ...core.DBExecutor) error

		GetNote(ctx context.Context, id string, exec ...core.DBExecutor) (Note, error)
		QueryNotesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Note, error)
		DeleteNote(ctx context.Context, id string, exec ...core.DBExecutor) error

		QueryChatMessagesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]ChatMessage, error)
		QueryChatMessagesByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]ChatMessage, error)
		DeleteChatMessagesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error
		DeleteChatMessagesByClass(ctx context.Context, classID string, exec ...core.DBExecutor) error

		DeleteNotificationsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error
		DeleteNotificationsByResource(ctx context.Context, resourceID string, exec ...core.DBExecutor) error
	}

	// Service exposes the read and single-entity delete operations the API
	// uses outside bulk teardown. Bulk teardown lives in core/teardown.
	Service struct {
		db     core.DB
		repo   Repository
		blobs  core.BlobCleaner
		logger core.Logger
	}
)

func NewService(db core.DB, repo Repository, blobs core.BlobCleaner, logger core.Logger) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		blobs:  blobs,
		logger: logger,
	}
}

func (svc *Service) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroom(ctx, id)
}

func (svc *Service) GetStream(ctx context.Context, id string) (Stream, error) {
	return svc.repo.GetStream(ctx, id)
}

func (svc *Service) GetComment(ctx context.Context, id string) (Comment, error) {
	return svc.repo.GetComment(ctx, id)
}

func (svc *Service) GetNote(ctx context.Context, id string) (Note, error) {
	return svc.repo.GetNote(ctx, id)
}

// deleteBlobs best-effort deletes the given attachment URLs before their
// owning row goes away. A failed blob delete is logged and never blocks the
// row delete; an orphaned blob beats an undeletable row.
func (svc *Service) deleteBlobs(ctx context.Context, atts []Attachment) {
	for _, att := range atts {
		if err := svc.blobs.DeleteBlob(ctx, att.URL); err != nil && errors.Cause(err) != core.ErrBlobNotFound {
			svc.logger.Warn(fmt.Sprintf("deleting blob %q: %v", att.URL, err), err)
		}
	}
}

// DeleteStream removes a single Stream with its dependents (comments,
// private comments, classwork, notifications) and their blobs. Dependents
// go first so an interrupted delete never leaves a dangling reference.
func (svc *Service) DeleteStream(ctx context.Context, id string) error {
	strm, err := svc.repo.GetStream(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil // already gone
		}
		return err
	}

	comments, err := svc.repo.QueryCommentsByStream(ctx, id)
	if err != nil {
		return errors.Wrap(err, "querying stream comments")
	}
	for _, cmt := range comments {
		svc.deleteBlobs(ctx, cmt.Attachments)
		if err = svc.repo.DeleteComment(ctx, cmt.ID); err != nil && errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "deleting stream comment")
		}
	}

	privComments, err := svc.repo.QueryPrivateCommentsByStream(ctx, id)
	if err != nil {
		return errors.Wrap(err, "querying stream private comments")
	}
	for _, cmt := range privComments {
		svc.deleteBlobs(ctx, cmt.Attachments)
		if err = svc.repo.DeletePrivateComment(ctx, cmt.ID); err != nil && errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "deleting stream private comment")
		}
	}

	work, err := svc.repo.QueryClassworkByStream(ctx, id)
	if err != nil {
		return errors.Wrap(err, "querying stream classwork")
	}
	for _, cw := range work {
		svc.deleteBlobs(ctx, cw.Attachments)
		if err = svc.repo.DeleteClasswork(ctx, cw.ID); err != nil && errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "deleting stream classwork")
		}
	}

	if err = svc.repo.DeleteNotificationsByResource(ctx, id); err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "deleting stream notifications")
	}

	svc.deleteBlobs(ctx, strm.Attachments)
	if err = svc.repo.DeleteStream(ctx, id); err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "deleting stream")
	}
	return nil
}

// DeleteComment removes a single Comment and its blobs; already-gone is success.
func (svc *Service) DeleteComment(ctx context.Context, id string) error {
	cmt, err := svc.repo.GetComment(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return err
	}
	svc.deleteBlobs(ctx, cmt.Attachments)
	if err = svc.repo.DeleteComment(ctx, id); err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "deleting comment")
	}
	return nil
}

// DeleteNote removes a single Note and its blobs; already-gone is success.
func (svc *Service) DeleteNote(ctx context.Context, id string) error {
	note, err := svc.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return err
	}
	svc.deleteBlobs(ctx, note.Attachments)
	if err = svc.repo.DeleteNote(ctx, id); err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "deleting note")
	}
	return nil
}
