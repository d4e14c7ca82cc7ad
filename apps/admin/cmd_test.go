package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

var (
	db      *dummydb.DB
	usrRepo user.Repository
)

func setup(t *testing.T) *commandLine {
	conf := testutil.NewConfig()

	db = dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)
	schoolRepo := dummydb.NewSchoolRepository(db)

	teardownSvc := teardown.NewService(
		usrRepo,
		schoolRepo,
		&testutil.BlobRecorder{},
		teardown.NewMemoryLocker(),
		emailsvc.NewConsoleServiceMock(conf),
		testutil.NopLogger{},
		conf,
	)

	return &commandLine{
		conf:        conf,
		usrRepo:     usrRepo,
		teardownSvc: teardownSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Student", "stud", "stud@test.test", "lol", []string{user.RoleStudent}, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "missing email", args: []string{"createadmin", "-username", "boss"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"createadmin", "-username", "boss", "-email", "boss@test.test"}, wantErr: errHelp},
		{name: "new admin", args: []string{"createadmin", "-username", "boss", "-email", "boss@test.test"}, extra: extra{pwd: "lol"}},
		{name: "promote existing user", args: []string{"createadmin", "-username", existing.Username, "-email", existing.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				admin, err := usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: []string{args[3], args[5]}})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if !admin.IsAdmin() {
					t.Errorf("roles = %v, want admin roles", admin.Roles)
				}
				if cerr := admin.CheckPassword(tt.extra.(extra).pwd); cerr != nil {
					t.Errorf("CheckPassword() failed, %v", cerr)
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_teardown(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Doomed", "doomed", "doomed@test.cd", "mdr", []string{user.RoleStudent}, true)
	cls := db.AddClassroom(school.Classroom{Name: "Bio", Code: "BIO-1", TeacherID: usr.ID})
	db.AddEnrollment(school.Enrollment{ClassID: cls.ID, UserID: usr.ID})
	db.AddNote(school.Note{UserID: usr.ID, Title: "meh"})

	type extra struct {
		checkEmptyDB bool
	}
	tests := []cliTest{
		{name: "no args", args: []string{"teardown"}, wantErr: errHelp},
		{name: "missing id", args: []string{"teardown", "-kind", "user"}, wantErr: errHelp},
		{name: "bad kind", args: []string{"teardown", "-kind", "planet", "-id", usr.ID}, wantErrStr: "\"planet\": no such root kind (want user or classroom)"},
		{name: "unknown user: retry reports success", args: []string{"teardown", "-kind", "user", "-id", "nope"}},
		{name: "user root", args: []string{"teardown", "-kind", "user", "-id", usr.ID}, extra: extra{checkEmptyDB: true}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			default:
				if err != nil {
					t.Fatalf("cli.run() unexpected error = %v", err)
				}
			}

			if extra, ok := tt.extra.(extra); ok && extra.checkEmptyDB {
				if _, gerr := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID}); gerr != user.ErrNotFound {
					t.Errorf("GetUser() after teardown error = %v, want %v", gerr, user.ErrNotFound)
				}
				for table, n := range db.Counts() {
					if n != 0 {
						t.Errorf("%s: %d rows left behind", table, n)
					}
				}
			}
		})
	}
}
