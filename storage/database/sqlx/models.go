package sqlxrepos

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
)

// attachmentList maps a jsonb column to []school.Attachment.
type attachmentList []school.Attachment

func (a attachmentList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]school.Attachment(a))
}

func (a *attachmentList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]school.Attachment)(a))
	case string:
		return json.Unmarshal([]byte(v), (*[]school.Attachment)(a))
	}
	return errors.Errorf("unsupported attachments type %T", src)
}

type dbUser struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	AvatarURL    null.String    `db:"avatar_url"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func packUser(usr user.User) dbUser {
	return dbUser{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		AvatarURL:    null.NewString(usr.AvatarURL, usr.AvatarURL != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.NewBytes(usr.PasswordHash, usr.PasswordHash != nil),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (u dbUser) unpack() user.User {
	return user.User{
		ID:           u.ID,
		Name:         u.Name.String,
		Username:     u.Username.String,
		Email:        u.Email.String,
		AvatarURL:    u.AvatarURL.String,
		IsActive:     u.IsActive.Ptr(),
		Roles:        u.Roles,
		PasswordHash: u.PasswordHash.Bytes,
		CreatedAt:    u.CreatedAt.Time,
		UpdatedAt:    u.UpdatedAt.Time,
		LastLogin:    u.LastLogin.Time,
	}
}

type dbRoleRequest struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (rr dbRoleRequest) unpack() user.RoleRequest {
	return user.RoleRequest(rr)
}

type dbClassroom struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Subject   null.String `db:"subject"`
	Section   null.String `db:"section"`
	Code      string      `db:"code"`
	TeacherID string      `db:"teacher_id"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (c dbClassroom) unpack() school.Classroom {
	return school.Classroom{
		ID:        c.ID,
		Name:      c.Name,
		Subject:   c.Subject.String,
		Section:   c.Section.String,
		Code:      c.Code,
		TeacherID: c.TeacherID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type dbEnrollment struct {
	ID        string    `db:"id"`
	ClassID   string    `db:"class_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (e dbEnrollment) unpack() school.Enrollment {
	return school.Enrollment(e)
}

type dbStream struct {
	ID          string         `db:"id"`
	ClassID     string         `db:"class_id"`
	UserID      string         `db:"user_id"`
	Kind        string         `db:"kind"`
	Title       null.String    `db:"title"`
	Body        null.String    `db:"body"`
	Attachments attachmentList `db:"attachments"`
	DueAt       null.Time      `db:"due_at"`
	Points      null.Int       `db:"points"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (s dbStream) unpack() school.Stream {
	return school.Stream{
		ID:          s.ID,
		ClassID:     s.ClassID,
		UserID:      s.UserID,
		Kind:        s.Kind,
		Title:       s.Title.String,
		Body:        s.Body.String,
		Attachments: s.Attachments,
		DueAt:       s.DueAt,
		Points:      s.Points,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type dbComment struct {
	ID          string         `db:"id"`
	StreamID    string         `db:"stream_id"`
	UserID      string         `db:"user_id"`
	Body        null.String    `db:"body"`
	Attachments attachmentList `db:"attachments"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (c dbComment) unpack() school.Comment {
	return school.Comment{
		ID:          c.ID,
		StreamID:    c.StreamID,
		UserID:      c.UserID,
		Body:        c.Body.String,
		Attachments: c.Attachments,
		CreatedAt:   c.CreatedAt,
	}
}

func (c dbComment) unpackPrivate() school.PrivateComment {
	return school.PrivateComment{
		ID:          c.ID,
		StreamID:    c.StreamID,
		UserID:      c.UserID,
		Body:        c.Body.String,
		Attachments: c.Attachments,
		CreatedAt:   c.CreatedAt,
	}
}

type dbClasswork struct {
	ID          string         `db:"id"`
	StreamID    string         `db:"stream_id"`
	UserID      string         `db:"user_id"`
	Attachments attachmentList `db:"attachments"`
	Grade       null.Int       `db:"grade"`
	TurnedInAt  null.Time      `db:"turned_in_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (cw dbClasswork) unpack() school.Classwork {
	return school.Classwork{
		ID:          cw.ID,
		StreamID:    cw.StreamID,
		UserID:      cw.UserID,
		Attachments: cw.Attachments,
		Grade:       cw.Grade,
		TurnedInAt:  cw.TurnedInAt,
		CreatedAt:   cw.CreatedAt,
	}
}

type dbNote struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       null.String    `db:"title"`
	Body        null.String    `db:"body"`
	Attachments attachmentList `db:"attachments"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (n dbNote) unpack() school.Note {
	return school.Note{
		ID:          n.ID,
		UserID:      n.UserID,
		Title:       n.Title.String,
		Body:        n.Body.String,
		Attachments: n.Attachments,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

type dbChatMessage struct {
	ID          string         `db:"id"`
	ClassID     string         `db:"class_id"`
	UserID      string         `db:"user_id"`
	Body        null.String    `db:"body"`
	Attachments attachmentList `db:"attachments"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (m dbChatMessage) unpack() school.ChatMessage {
	return school.ChatMessage{
		ID:          m.ID,
		ClassID:     m.ClassID,
		UserID:      m.UserID,
		Body:        m.Body.String,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
	}
}
