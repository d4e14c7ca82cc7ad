package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// NewConfig returns a test configuration and sets the core.Conf global that
// the email template helpers read.
func NewConfig() *core.Config {
	conf := &core.Config{
		Debug:           true,
		TestMode:        true,
		AppName:         "Darasa",
		SecretKey:       "poq5-wer$#@/p09c5joityw",
		FrontendBaseURL: "http://localhost:3000",
		DefaultFromName: "Darasa",
		DefaultFromAddr: "noreply@test.test",
		Server: core.ServerConfig{
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			TeardownTimeout:           time.Minute,
		},
		Storage: core.StorageConfig{
			Bucket:             "darasa",
			Region:             "us-east-1",
			PublicHost:         "cdn.darasa.test",
			ProviderImageHosts: []string{"lh3.googleusercontent.com", "avatars.githubusercontent.com"},
		},
	}
	core.Conf = conf
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// NopLogger discards everything; it keeps test output clean.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// BlobRecorder is an in-memory core.BlobCleaner. It records the URLs it was
// asked to delete and can be told to fail or report missing objects.
type BlobRecorder struct {
	mu      sync.Mutex
	Deleted []string

	// FailOn returns an error for matching URLs; nil means always succeed.
	FailOn func(rawURL string) error
}

var _ core.BlobCleaner = (*BlobRecorder)(nil)

func (b *BlobRecorder) DeleteBlob(_ context.Context, rawURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailOn != nil {
		if err := b.FailOn(rawURL); err != nil {
			return err
		}
	}
	b.Deleted = append(b.Deleted, rawURL)
	return nil
}

func (b *BlobRecorder) DeletedURLs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.Deleted...)
}
