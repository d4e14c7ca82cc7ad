package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	appfs "github.com/trezcool/darasa/fs"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func setup(t *testing.T) *user.Service {
	t.Helper()

	conf := testutil.NewConfig()
	core.TemplatesFS = appfs.FS
	core.ParseEmailTemplates(nil)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	db := dummydb.Open()
	repo := dummydb.NewUserRepository(db)
	return user.NewService(nil, repo, emailsvc.NewConsoleServiceMock(conf), conf)
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Hero Kid",
		Username: "herokid",
		Email:    "hero@test.cd",
		Password: "LolC@t123",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if usr.ID == "" {
		t.Error("Create() returned an empty ID")
	}
	if !usr.IsStudent() {
		t.Errorf("Create() roles = %v; want default %v", usr.Roles, []string{user.RoleStudent})
	}
	if usr.IsActive == nil || !*usr.IsActive {
		t.Error("Create() new user is not active")
	}
	if err = usr.CheckPassword("LolC@t123"); err != nil {
		t.Errorf("CheckPassword() error = %v for the password just set", err)
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	if to := emailsvc.SentMessages[0].To[0].Address; to != usr.Email {
		t.Errorf("failed! To = %v; want %v", to, usr.Email)
	}
}

func TestService_CheckUniqueness(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	taken, err := svc.Create(ctx, user.NewUser{Name: "Hero", Username: "herokid", Email: "hero@test.cd", Password: "LolC@t123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		uname   string
		email   string
		exclude []user.User
		wantErr bool
	}{
		{name: "available", uname: "ndog", email: "ndog@test.cd"},
		{name: "username taken", uname: "herokid", email: "other@test.cd", wantErr: true},
		{name: "email taken", uname: "other", email: "hero@test.cd", wantErr: true},
		{name: "own username excluded", uname: "herokid", email: "hero@test.cd", exclude: []user.User{taken}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckUniqueness(tt.uname, tt.email, tt.exclude...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckUniqueness() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("CheckUniqueness() error type = %T, want *core.ValidationError", err)
			}
			if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "username" {
				t.Errorf("CheckUniqueness() fields = %+v, want one on %q", vErr.Fields, "username")
			}
		})
	}
}

func TestService_GetByUsernameOrEmail(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{Name: "Hero", Username: "herokid", Email: "hero@test.cd", Password: "LolC@t123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		uname   string
		wantErr error
	}{
		{name: "by username", uname: "herokid"},
		{name: "by email", uname: "hero@test.cd"},
		{name: "case and space insensitive", uname: "  HeroKid "},
		{name: "unknown", uname: "lol", wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetByUsernameOrEmail(ctx, tt.uname)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("GetByUsernameOrEmail() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != usr.ID {
				t.Errorf("GetByUsernameOrEmail() ID = %v, want %v", got.ID, usr.ID)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{Name: "Hero", Username: "herokid", Email: "hero@test.cd", Password: "LolC@t123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Hero Prime", Password: "N3wP@ss!"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Hero Prime" {
		t.Errorf("Update() Name = %q, want %q", updated.Name, "Hero Prime")
	}
	if updated.Username != usr.Username {
		t.Errorf("Update() Username = %q, want untouched %q", updated.Username, usr.Username)
	}
	if err = updated.CheckPassword("N3wP@ss!"); err != nil {
		t.Errorf("CheckPassword() error = %v for the new password", err)
	}
}
