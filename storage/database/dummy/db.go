package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory store backing the dummy repositories. Tests seed it
// through the Add* helpers and inspect it directly.
type DB struct {
	mu sync.RWMutex

	users        map[string]*user.User
	roleRequests map[string]*user.RoleRequest // keyed by requesting user ID

	classrooms      map[string]*school.Classroom
	enrollments     map[string]*school.Enrollment
	streams         map[string]*school.Stream
	comments        map[string]*school.Comment
	privateComments map[string]*school.PrivateComment
	classwork       map[string]*school.Classwork
	notes           map[string]*school.Note
	chatMessages    map[string]*school.ChatMessage
	notifications   map[string]*school.Notification
}

func Open() *DB {
	return &DB{
		users:           make(map[string]*user.User),
		roleRequests:    make(map[string]*user.RoleRequest),
		classrooms:      make(map[string]*school.Classroom),
		enrollments:     make(map[string]*school.Enrollment),
		streams:         make(map[string]*school.Stream),
		comments:        make(map[string]*school.Comment),
		privateComments: make(map[string]*school.PrivateComment),
		classwork:       make(map[string]*school.Classwork),
		notes:           make(map[string]*school.Note),
		chatMessages:    make(map[string]*school.ChatMessage),
		notifications:   make(map[string]*school.Notification),
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func (db *DB) AddUser(usr user.User) user.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	usr.ID = newID(usr.ID)
	db.users[usr.ID] = &usr
	return usr
}

func (db *DB) AddRoleRequest(req user.RoleRequest) user.RoleRequest {
	db.mu.Lock()
	defer db.mu.Unlock()
	req.ID = newID(req.ID)
	db.roleRequests[req.UserID] = &req
	return req
}

func (db *DB) AddClassroom(cls school.Classroom) school.Classroom {
	db.mu.Lock()
	defer db.mu.Unlock()
	cls.ID = newID(cls.ID)
	db.classrooms[cls.ID] = &cls
	return cls
}

func (db *DB) AddEnrollment(enr school.Enrollment) school.Enrollment {
	db.mu.Lock()
	defer db.mu.Unlock()
	enr.ID = newID(enr.ID)
	db.enrollments[enr.ID] = &enr
	return enr
}

func (db *DB) AddStream(strm school.Stream) school.Stream {
	db.mu.Lock()
	defer db.mu.Unlock()
	strm.ID = newID(strm.ID)
	db.streams[strm.ID] = &strm
	return strm
}

func (db *DB) AddComment(cmt school.Comment) school.Comment {
	db.mu.Lock()
	defer db.mu.Unlock()
	cmt.ID = newID(cmt.ID)
	db.comments[cmt.ID] = &cmt
	return cmt
}

func (db *DB) AddPrivateComment(cmt school.PrivateComment) school.PrivateComment {
	db.mu.Lock()
	defer db.mu.Unlock()
	cmt.ID = newID(cmt.ID)
	db.privateComments[cmt.ID] = &cmt
	return cmt
}

func (db *DB) AddClasswork(cw school.Classwork) school.Classwork {
	db.mu.Lock()
	defer db.mu.Unlock()
	cw.ID = newID(cw.ID)
	db.classwork[cw.ID] = &cw
	return cw
}

func (db *DB) AddNote(note school.Note) school.Note {
	db.mu.Lock()
	defer db.mu.Unlock()
	note.ID = newID(note.ID)
	db.notes[note.ID] = &note
	return note
}

func (db *DB) AddChatMessage(msg school.ChatMessage) school.ChatMessage {
	db.mu.Lock()
	defer db.mu.Unlock()
	msg.ID = newID(msg.ID)
	db.chatMessages[msg.ID] = &msg
	return msg
}

func (db *DB) AddNotification(ntf school.Notification) school.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	ntf.ID = newID(ntf.ID)
	db.notifications[ntf.ID] = &ntf
	return ntf
}

// Counts reports how many rows remain per table; tests use it to assert a
// teardown left nothing behind.
func (db *DB) Counts() map[string]int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return map[string]int{
		"user":            len(db.users),
		"role_request":    len(db.roleRequests),
		"classroom":       len(db.classrooms),
		"enrollment":      len(db.enrollments),
		"stream":          len(db.streams),
		"comment":         len(db.comments),
		"private_comment": len(db.privateComments),
		"classwork":       len(db.classwork),
		"note":            len(db.notes),
		"chat_message":    len(db.chatMessages),
		"notification":    len(db.notifications),
	}
}
