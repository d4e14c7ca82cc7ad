package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) GetClassroom(_ context.Context, id string, _ ...core.DBExecutor) (school.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cls, ok := repo.db.classrooms[id]; ok {
		return *cls, nil
	}
	return school.Classroom{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryClassroomsByTeacher(_ context.Context, teacherID string, _ ...core.DBExecutor) ([]school.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var classrooms []school.Classroom
	for _, cls := range repo.db.classrooms {
		if cls.TeacherID == teacherID {
			classrooms = append(classrooms, *cls)
		}
	}
	sort.Slice(classrooms, func(i, j int) bool { return classrooms[i].CreatedAt.Before(classrooms[j].CreatedAt) })
	return classrooms, nil
}

func (repo *schoolRepository) DeleteClassroom(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classrooms[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.classrooms, id)
	return nil
}

func (repo *schoolRepository) QueryEnrollmentsByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]school.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var enrollments []school.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments, nil
}

func (repo *schoolRepository) QueryEnrollmentsByClass(_ context.Context, classID string, _ ...core.DBExecutor) ([]school.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var enrollments []school.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.ClassID == classID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments, nil
}

func (repo *schoolRepository) DeleteEnrollment(_ context.Context, id, classID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	enr, ok := repo.db.enrollments[id]
	if !ok || enr.ClassID != classID {
		return school.ErrNotFound
	}
	delete(repo.db.enrollments, id)
	return nil
}

func (repo *schoolRepository) GetStream(_ context.Context, id string, _ ...core.DBExecutor) (school.Stream, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if strm, ok := repo.db.streams[id]; ok {
		return *strm, nil
	}
	return school.Stream{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryStreamsByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]school.Stream, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var streams []school.Stream
	for _, strm := range repo.db.streams {
		if strm.UserID == userID {
			streams = append(streams, *strm)
		}
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i].CreatedAt.Before(streams[j].CreatedAt) })
	return streams, nil
}

func (repo *schoolRepository) QueryStreamsByClass(_ context.Context, classID string, _ ...core.DBExecutor) ([]school.Stream, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var streams []school.Stream
	for _, strm := range repo.db.streams {
		if strm.ClassID == classID {
			streams = append(streams, *strm)
		}
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i].CreatedAt.Before(streams[j].CreatedAt) })
	return streams, nil
}

func (repo *schoolRepository) DeleteStream(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.streams[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.streams, id)
	return nil
}

func (repo *schoolRepository) GetComment(_ context.Context, id string, _ ...core.DBExecutor) (school.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cmt, ok := repo.db.comments[id]; ok {
		return *cmt, nil
	}
	return school.Comment{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryCommentsByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]school.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var comments []school.Comment
	for _, cmt := range repo.db.comments {
		if cmt.UserID == userID {
			comments = append(comments, *cmt)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (repo *schoolRepository) QueryCommentsByStream(_ context.Context, streamID string, _ ...core.DBExecutor) ([]school.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var comments []school.Comment
	for _, cmt := range repo.db.comments {
		if cmt.StreamID == streamID {
			comments = append(comments, *cmt)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (repo *schoolRepository) DeleteComment(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.comments[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.comments, id)
	return nil
}

func (repo *schoolRepository) DeleteCommentsByUser(_ context.Context, userID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, cmt := range repo.db.comments {
		if cmt.UserID == userID {
			delete(repo.db.comments, id)
		}
	}
	return nil
}

func (repo *schoolRepository) QueryPrivateCommentsByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]school.PrivateComment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var comments []school.PrivateComment
	for _, cmt := range repo.db.privateComments {
		if cmt.UserID == userID {
			comments = append(comments, *cmt)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (repo *schoolRepository) QueryPrivateCommentsByStream(_ context.Context, streamID string, _ ...core.DBExecutor) ([]school.PrivateComment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var comments []school.PrivateComment
	for _, cmt := range repo.db.privateComments {
		if cmt.StreamID == streamID {
			comments = append(comments, *cmt)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (repo *schoolRepository) DeletePrivateComment(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.privateComments[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.privateComments, id)
	return nil
}

func (repo *schoolRepository) DeletePrivateCommentsByUser(_ context.Context, userID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, cmt := range repo.db.privateComments {
		if cmt.UserID == userID {
			delete(repo.db.privateComments, id)
		}
	}
	return nil
}

func (repo *schoolRepository) QueryClassworkByStream(_ context.Context, streamID string, _ ...core.DBExecutor) ([]school.Classwork, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var work []school.Classwork
	for _, cw := range repo.db.classwork {
		if cw.StreamID == streamID {
			work = append(work, *cw)
		}
	}
	sort.Slice(work, func(i, j int) bool { return work[i].CreatedAt.Before(work[j].CreatedAt) })
	return work, nil
}

func (repo *schoolRepository) DeleteClasswork(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classwork[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.classwork, id)
	return nil
}

func (repo *schoolRepository) GetNote(_ context.Context, id string, _ ...core.DBExecutor) (school.Note, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if note, ok := repo.db.notes[id]; ok {
		return *note, nil
	}
	return school.Note{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryNotesByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]school.Note, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var notes []school.Note
	for _, note := range repo.db.notes {
		if note.UserID == userID {
			notes = append(notes, *note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.Before(notes[j].CreatedAt) })
	return notes, nil
}

func (repo *schoolRepository) DeleteNote(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.notes[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.notes, id)
	return nil
}

func (repo *schoolRepository) QueryChatMessagesByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]school.ChatMessage, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var msgs []school.ChatMessage
	for _, msg := range repo.db.chatMessages {
		if msg.UserID == userID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

func (repo *schoolRepository) QueryChatMessagesByClass(_ context.Context, classID string, _ ...core.DBExecutor) ([]school.ChatMessage, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var msgs []school.ChatMessage
	for _, msg := range repo.db.chatMessages {
		if msg.ClassID == classID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

func (repo *schoolRepository) DeleteChatMessagesByUser(_ context.Context, userID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, msg := range repo.db.chatMessages {
		if msg.UserID == userID {
			delete(repo.db.chatMessages, id)
		}
	}
	return nil
}

func (repo *schoolRepository) DeleteChatMessagesByClass(_ context.Context, classID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, msg := range repo.db.chatMessages {
		if msg.ClassID == classID {
			delete(repo.db.chatMessages, id)
		}
	}
	return nil
}

func (repo *schoolRepository) DeleteNotificationsByUser(_ context.Context, userID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, ntf := range repo.db.notifications {
		if ntf.UserID == userID {
			delete(repo.db.notifications, id)
		}
	}
	return nil
}

func (repo *schoolRepository) DeleteNotificationsByResource(_ context.Context, resourceID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, ntf := range repo.db.notifications {
		if ntf.ResourceID == resourceID {
			delete(repo.db.notifications, id)
		}
	}
	return nil
}
