package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

const (
	classroomColumns = `id, name, subject, section, code, teacher_id, created_at, updated_at`
	streamColumns    = `id, class_id, user_id, kind, title, body, attachments, due_at, points, created_at, updated_at`
	commentColumns   = `id, stream_id, user_id, body, attachments, created_at`
	classworkColumns = `id, stream_id, user_id, attachments, grade, turned_in_at, created_at`
	noteColumns      = `id, user_id, title, body, attachments, created_at, updated_at`
	chatMsgColumns   = `id, class_id, user_id, body, attachments, created_at`
)

type schoolRepository struct {
	exec core.DBExecutor
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{exec: exec}
}

func (repo schoolRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// scan runs query and StructScans all rows into dest (a pointer to a slice
// of db model structs).
func (repo schoolRepository) scan(ctx context.Context, exe core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return sqlx.StructScan(rows, dest)
}

// del runs a DELETE; when mustExist is set, zero affected rows maps to
// school.ErrNotFound.
func (repo schoolRepository) del(ctx context.Context, exe core.DBExecutor, msg, query string, mustExist bool, args ...interface{}) error {
	res, err := exe.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if mustExist {
		if n, _ := res.RowsAffected(); n == 0 {
			return school.ErrNotFound
		}
	}
	return nil
}

// ---- classrooms

func (repo schoolRepository) GetClassroom(ctx context.Context, id string, exec ...core.DBExecutor) (school.Classroom, error) {
	if _, err := uuid.Parse(id); err != nil {
		return school.Classroom{}, school.ErrNotFound
	}
	var rows []dbClassroom
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+classroomColumns+` FROM classroom WHERE id = $1`, id)
	if err != nil {
		return school.Classroom{}, errors.Wrap(err, "finding classroom")
	}
	if len(rows) == 0 {
		return school.Classroom{}, school.ErrNotFound
	}
	return rows[0].unpack(), nil
}

func (repo schoolRepository) QueryClassroomsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]school.Classroom, error) {
	var rows []dbClassroom
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+classroomColumns+` FROM classroom WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classrooms by teacher")
	}
	classrooms := make([]school.Classroom, 0, len(rows))
	for _, c := range rows {
		classrooms = append(classrooms, c.unpack())
	}
	return classrooms, nil
}

func (repo schoolRepository) DeleteClassroom(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return school.ErrNotFound
	}
	return repo.del(ctx, repo.getExec(exec), "deleting classroom",
		`DELETE FROM classroom WHERE id = $1`, true, id)
}

// ---- enrollments

func (repo schoolRepository) QueryEnrollmentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]school.Enrollment, error) {
	return repo.queryEnrollments(ctx, repo.getExec(exec),
		`SELECT id, class_id, user_id, created_at FROM enrollment WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (repo schoolRepository) QueryEnrollmentsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]school.Enrollment, error) {
	return repo.queryEnrollments(ctx, repo.getExec(exec),
		`SELECT id, class_id, user_id, created_at FROM enrollment WHERE class_id = $1 ORDER BY created_at`, classID)
}

func (repo schoolRepository) queryEnrollments(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]school.Enrollment, error) {
	var rows []dbEnrollment
	if err := repo.scan(ctx, exe, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]school.Enrollment, 0, len(rows))
	for _, e := range rows {
		enrollments = append(enrollments, e.unpack())
	}
	return enrollments, nil
}

func (repo schoolRepository) DeleteEnrollment(ctx context.Context, id, classID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting enrollment",
		`DELETE FROM enrollment WHERE id = $1 AND class_id = $2`, true, id, classID)
}

// ---- streams

func (repo schoolRepository) GetStream(ctx context.Context, id string, exec ...core.DBExecutor) (school.Stream, error) {
	if _, err := uuid.Parse(id); err != nil {
		return school.Stream{}, school.ErrNotFound
	}
	var rows []dbStream
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+streamColumns+` FROM stream WHERE id = $1`, id)
	if err != nil {
		return school.Stream{}, errors.Wrap(err, "finding stream")
	}
	if len(rows) == 0 {
		return school.Stream{}, school.ErrNotFound
	}
	return rows[0].unpack(), nil
}

func (repo schoolRepository) QueryStreamsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]school.Stream, error) {
	return repo.queryStreams(ctx, repo.getExec(exec),
		`SELECT `+streamColumns+` FROM stream WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (repo schoolRepository) QueryStreamsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]school.Stream, error) {
	return repo.queryStreams(ctx, repo.getExec(exec),
		`SELECT `+streamColumns+` FROM stream WHERE class_id = $1 ORDER BY created_at`, classID)
}

func (repo schoolRepository) queryStreams(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]school.Stream, error) {
	var rows []dbStream
	if err := repo.scan(ctx, exe, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying streams")
	}
	streams := make([]school.Stream, 0, len(rows))
	for _, s := range rows {
		streams = append(streams, s.unpack())
	}
	return streams, nil
}

func (repo schoolRepository) DeleteStream(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return school.ErrNotFound
	}
	return repo.del(ctx, repo.getExec(exec), "deleting stream",
		`DELETE FROM stream WHERE id = $1`, true, id)
}

// ---- comments

func (repo schoolRepository) GetComment(ctx context.Context, id string, exec ...core.DBExecutor) (school.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return school.Comment{}, school.ErrNotFound
	}
	var rows []dbComment
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+commentColumns+` FROM comment WHERE id = $1`, id)
	if err != nil {
		return school.Comment{}, errors.Wrap(err, "finding comment")
	}
	if len(rows) == 0 {
		return school.Comment{}, school.ErrNotFound
	}
	return rows[0].unpack(), nil
}

func (repo schoolRepository) QueryCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]school.Comment, error) {
	return repo.queryComments(ctx, repo.getExec(exec),
		`SELECT `+commentColumns+` FROM comment WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (repo schoolRepository) QueryCommentsByStream(ctx context.Context, streamID string, exec ...core.DBExecutor) ([]school.Comment, error) {
	return repo.queryComments(ctx, repo.getExec(exec),
		`SELECT `+commentColumns+` FROM comment WHERE stream_id = $1 ORDER BY created_at`, streamID)
}

func (repo schoolRepository) queryComments(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]school.Comment, error) {
	var rows []dbComment
	if err := repo.scan(ctx, exe, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]school.Comment, 0, len(rows))
	for _, c := range rows {
		comments = append(comments, c.unpack())
	}
	return comments, nil
}

func (repo schoolRepository) DeleteComment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return school.ErrNotFound
	}
	return repo.del(ctx, repo.getExec(exec), "deleting comment",
		`DELETE FROM comment WHERE id = $1`, true, id)
}

func (repo schoolRepository) DeleteCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting comments by user",
		`DELETE FROM comment WHERE user_id = $1`, false, userID)
}

// ---- private comments

func (repo schoolRepository) QueryPrivateCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]school.PrivateComment, error) {
	return repo.queryPrivateComments(ctx, repo.getExec(exec),
		`SELECT `+commentColumns+` FROM private_comment WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (repo schoolRepository) QueryPrivateCommentsByStream(ctx context.Context, streamID string, exec ...core.DBExecutor) ([]school.PrivateComment, error) {
	return repo.queryPrivateComments(ctx, repo.getExec(exec),
		`SELECT `+commentColumns+` FROM private_comment WHERE stream_id = $1 ORDER BY created_at`, streamID)
}

func (repo schoolRepository) queryPrivateComments(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]school.PrivateComment, error) {
	var rows []dbComment
	if err := repo.scan(ctx, exe, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying private comments")
	}
	comments := make([]school.PrivateComment, 0, len(rows))
	for _, c := range rows {
		comments = append(comments, c.unpackPrivate())
	}
	return comments, nil
}

func (repo schoolRepository) DeletePrivateComment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return school.ErrNotFound
	}
	return repo.del(ctx, repo.getExec(exec), "deleting private comment",
		`DELETE FROM private_comment WHERE id = $1`, true, id)
}

func (repo schoolRepository) DeletePrivateCommentsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting private comments by user",
		`DELETE FROM private_comment WHERE user_id = $1`, false, userID)
}

// ---- classwork

func (repo schoolRepository) QueryClassworkByStream(ctx context.Context, streamID string, exec ...core.DBExecutor) ([]school.Classwork, error) {
	var rows []dbClasswork
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+classworkColumns+` FROM classwork WHERE stream_id = $1 ORDER BY created_at`, streamID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classwork")
	}
	work := make([]school.Classwork, 0, len(rows))
	for _, cw := range rows {
		work = append(work, cw.unpack())
	}
	return work, nil
}

func (repo schoolRepository) DeleteClasswork(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return school.ErrNotFound
	}
	return repo.del(ctx, repo.getExec(exec), "deleting classwork",
		`DELETE FROM classwork WHERE id = $1`, true, id)
}

// ---- notes

func (repo schoolRepository) GetNote(ctx context.Context, id string, exec ...core.DBExecutor) (school.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return school.Note{}, school.ErrNotFound
	}
	var rows []dbNote
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+noteColumns+` FROM note WHERE id = $1`, id)
	if err != nil {
		return school.Note{}, errors.Wrap(err, "finding note")
	}
	if len(rows) == 0 {
		return school.Note{}, school.ErrNotFound
	}
	return rows[0].unpack(), nil
}

func (repo schoolRepository) QueryNotesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]school.Note, error) {
	var rows []dbNote
	err := repo.scan(ctx, repo.getExec(exec), &rows,
		`SELECT `+noteColumns+` FROM note WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	notes := make([]school.Note, 0, len(rows))
	for _, n := range rows {
		notes = append(notes, n.unpack())
	}
	return notes, nil
}

func (repo schoolRepository) DeleteNote(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return school.ErrNotFound
	}
	return repo.del(ctx, repo.getExec(exec), "deleting note",
		`DELETE FROM note WHERE id = $1`, true, id)
}

// ---- chat messages

func (repo schoolRepository) QueryChatMessagesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]school.ChatMessage, error) {
	return repo.queryChatMessages(ctx, repo.getExec(exec),
		`SELECT `+chatMsgColumns+` FROM chat_message WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (repo schoolRepository) QueryChatMessagesByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]school.ChatMessage, error) {
	return repo.queryChatMessages(ctx, repo.getExec(exec),
		`SELECT `+chatMsgColumns+` FROM chat_message WHERE class_id = $1 ORDER BY created_at`, classID)
}

func (repo schoolRepository) queryChatMessages(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]school.ChatMessage, error) {
	var rows []dbChatMessage
	if err := repo.scan(ctx, exe, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying chat messages")
	}
	msgs := make([]school.ChatMessage, 0, len(rows))
	for _, m := range rows {
		msgs = append(msgs, m.unpack())
	}
	return msgs, nil
}

func (repo schoolRepository) DeleteChatMessagesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting chat messages by user",
		`DELETE FROM chat_message WHERE user_id = $1`, false, userID)
}

func (repo schoolRepository) DeleteChatMessagesByClass(ctx context.Context, classID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting chat messages by class",
		`DELETE FROM chat_message WHERE class_id = $1`, false, classID)
}

// ---- notifications

func (repo schoolRepository) DeleteNotificationsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting notifications by user",
		`DELETE FROM notification WHERE user_id = $1`, false, userID)
}

func (repo schoolRepository) DeleteNotificationsByResource(ctx context.Context, resourceID string, exec ...core.DBExecutor) error {
	return repo.del(ctx, repo.getExec(exec), "deleting notifications by resource",
		`DELETE FROM notification WHERE resource_id = $1`, false, resourceID)
}
