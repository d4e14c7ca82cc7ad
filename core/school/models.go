package school

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Stream kinds
const (
	KindAnnouncement = "announcement"
	KindAssignment   = "assignment"
	KindQuiz         = "quiz"
	KindQuestion     = "question"
	KindMaterial     = "material"
)

// Attachment is not a row: it is a URL embedded in the owning entity's
// attachments array. The URL is the only handle to the stored object.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// URLs returns the raw URLs of a slice of attachments.
func URLs(atts []Attachment) []string {
	urls := make([]string, 0, len(atts))
	for _, att := range atts {
		urls = append(urls, att.URL)
	}
	return urls
}

type Classroom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Section   string    `json:"section"`
	Code      string    `json:"code"` // join code
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Enrollment struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Stream is a post in a classroom's stream: an announcement, assignment,
// quiz, question or material.
type Stream struct {
	ID          string       `json:"id"`
	ClassID     string       `json:"class_id"`
	UserID      string       `json:"user_id"` // author
	Kind        string       `json:"kind"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
	DueAt       null.Time    `json:"due_at"`
	Points      null.Int     `json:"points"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Comment struct {
	ID          string       `json:"id"`
	StreamID    string       `json:"stream_id"`
	UserID      string       `json:"user_id"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PrivateComment is a comment visible only to its author and the
// classroom teacher.
type PrivateComment struct {
	ID          string       `json:"id"`
	StreamID    string       `json:"stream_id"`
	UserID      string       `json:"user_id"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Classwork is a student's submission against a Stream.
type Classwork struct {
	ID          string       `json:"id"`
	StreamID    string       `json:"stream_id"`
	UserID      string       `json:"user_id"`
	Attachments []Attachment `json:"attachments"`
	Grade       null.Int     `json:"grade"`
	TurnedInAt  null.Time    `json:"turned_in_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Note struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type ChatMessage struct {
	ID          string       `json:"id"`
	ClassID     string       `json:"class_id"`
	UserID      string       `json:"user_id"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Notification points a recipient at a resource (a Stream, Comment, ...).
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"` // recipient
	ResourceID string    `json:"resource_id"`
	Kind       string    `json:"kind"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
