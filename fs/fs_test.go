package appfs

import (
	"io/fs"
	"testing"
)

func TestFS(t *testing.T) {
	// the underscore-prefixed base layouts are skipped by go:embed unless
	// the all: prefix is used; losing them breaks every templated email
	paths := []string{
		"assets/templates/email/_base.txt",
		"assets/templates/email/_base.gohtml",
		"assets/templates/email/welcome.txt",
		"assets/templates/email/welcome.gohtml",
		"assets/templates/email/account_closed.txt",
		"assets/templates/email/account_closed.gohtml",
		"migrations/0001_init.sql",
	}
	for _, p := range paths {
		if _, err := fs.Stat(FS, p); err != nil {
			t.Errorf("fs.Stat(%s) error = %v", p, err)
		}
	}
}
