package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_schoolApi_destroyClassroom(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	cls := db.AddClassroom(school.Classroom{Name: "Biology", Code: "BIO-1", TeacherID: teacher.ID})
	db.AddEnrollment(school.Enrollment{ClassID: cls.ID, UserID: student.ID})
	strm := db.AddStream(school.Stream{
		ClassID: cls.ID, UserID: teacher.ID, Kind: school.KindAssignment, Title: "Osmosis",
		Attachments: []school.Attachment{{Name: "hw", URL: "https://cdn.darasa.test/darasa/streams/osmosis.pdf"}},
	})
	db.AddChatMessage(school.ChatMessage{ClassID: cls.ID, UserID: student.ID, Body: "hi"})

	clsResult := teardown.Result{
		RootKind: teardown.RootClassroom, RootID: cls.ID, Status: teardown.StatusCompleted,
		CompletedStages: []string{
			teardown.StageChatMessages, teardown.StageStreams, teardown.StageEnrollments,
			teardown.StageNotifications, teardown.StageRoot,
		},
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Only the teacher may", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "not allowed to delete this target"}),
		},
		{
			name: "Teacher tears down own classroom", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, clsResult),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete
		tt.path = "/v1/classrooms/" + cls.ID

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	ctx := context.Background()
	if _, err := dummydb.NewSchoolRepository(db).GetClassroom(ctx, cls.ID); err != school.ErrNotFound {
		t.Errorf("GetClassroom() after teardown error = %v, want %v", err, school.ErrNotFound)
	}
	if _, err := usrRepo.GetUser(ctx, user.GetFilter{ID: teacher.ID}); err != nil {
		t.Errorf("teacher went missing: %v", err)
	}
	if _, err := usrRepo.GetUser(ctx, user.GetFilter{ID: student.ID}); err != nil {
		t.Errorf("student went missing: %v", err)
	}
	var found bool
	for _, u := range blobs.DeletedURLs() {
		if u == strm.Attachments[0].URL {
			found = true
		}
	}
	if !found {
		t.Errorf("blob %q was not deleted", strm.Attachments[0].URL)
	}
}

func Test_schoolApi_retrieveClassroom(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	cls := db.AddClassroom(school.Classroom{Name: "Biology", Code: "BIO-1", TeacherID: teacher.ID})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/classrooms/" + cls.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Found", path: "/v1/classrooms/" + cls.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, cls),
		},
		{
			name: "Not found", path: "/v1/classrooms/lol", token: getToken(t, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_schoolApi_destroyStream(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	author := testutil.CreateUser(t, usrRepo, "Author", "author", "author@test.cd", "", []string{user.RoleStudent}, true)
	rando := testutil.CreateUser(t, usrRepo, "Rando", "rando", "rando@test.cd", "", []string{user.RoleStudent}, true)
	cls := db.AddClassroom(school.Classroom{Name: "Biology", Code: "BIO-1", TeacherID: teacher.ID})
	ownStream := db.AddStream(school.Stream{ClassID: cls.ID, UserID: author.ID, Kind: school.KindQuestion, Title: "Why?"})
	modStream := db.AddStream(school.Stream{ClassID: cls.ID, UserID: author.ID, Kind: school.KindQuestion, Title: "How?"})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/streams/" + ownStream.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Not the author", path: "/v1/streams/" + ownStream.ID, token: getToken(t, rando),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Author deletes own", path: "/v1/streams/" + ownStream.ID, token: getToken(t, author), wantCode: http.StatusNoContent},
		{name: "Teacher moderates their class", path: "/v1/streams/" + modStream.ID, token: getToken(t, teacher), wantCode: http.StatusNoContent},
		{name: "Already gone", path: "/v1/streams/" + ownStream.ID, token: getToken(t, author), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_schoolApi_destroyCommentAndNote(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	author := testutil.CreateUser(t, usrRepo, "Author", "author", "author@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	cls := db.AddClassroom(school.Classroom{Name: "Biology", Code: "BIO-1", TeacherID: teacher.ID})
	strm := db.AddStream(school.Stream{ClassID: cls.ID, UserID: teacher.ID, Kind: school.KindAnnouncement, Title: "Hi"})
	cmt := db.AddComment(school.Comment{StreamID: strm.ID, UserID: author.ID, Body: "hello"})
	modCmt := db.AddComment(school.Comment{StreamID: strm.ID, UserID: author.ID, Body: "spam"})
	note := db.AddNote(school.Note{UserID: author.ID, Title: "secret"})

	tests := []httpTest{
		{
			name: "Comment: not the author", path: "/v1/comments/" + cmt.ID, token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Comment: author deletes own", path: "/v1/comments/" + cmt.ID, token: getToken(t, author), wantCode: http.StatusNoContent},
		{name: "Comment: admin deletes any", path: "/v1/comments/" + modCmt.ID, token: getToken(t, admin), wantCode: http.StatusNoContent},
		{name: "Comment: already gone", path: "/v1/comments/" + cmt.ID, token: getToken(t, author), wantCode: http.StatusNoContent},
		{
			name: "Note: not the owner", path: "/v1/notes/" + note.ID, token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Note: owner deletes own", path: "/v1/notes/" + note.ID, token: getToken(t, author), wantCode: http.StatusNoContent},
		{name: "Note: already gone", path: "/v1/notes/" + note.ID, token: getToken(t, author), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
