package storagesvc

import (
	"testing"

	"github.com/trezcool/darasa/core"
)

func TestS3Storage_ObjectKey(t *testing.T) {
	conf := &core.Config{
		Storage: core.StorageConfig{
			Bucket:             "darasa",
			PublicHost:         "cdn.darasa.test",
			ProviderImageHosts: []string{"lh3.googleusercontent.com"},
		},
	}
	s := newS3Storage(nil, conf)

	tests := []struct {
		name      string
		rawURL    string
		wantKey   string
		wantOwned bool
		wantErr   bool
	}{
		{
			name:   "virtual-hosted style",
			rawURL: "https://cdn.darasa.test/avatars/u1.png", wantKey: "avatars/u1.png", wantOwned: true,
		},
		{
			name:   "path style carries the bucket",
			rawURL: "https://cdn.darasa.test/darasa/avatars/u1.png", wantKey: "avatars/u1.png", wantOwned: true,
		},
		{
			name:   "query string ignored",
			rawURL: "https://cdn.darasa.test/notes/a.txt?X-Amz-Expires=3600", wantKey: "notes/a.txt", wantOwned: true,
		},
		{
			name:   "host match is case-insensitive",
			rawURL: "https://CDN.darasa.TEST/notes/a.txt", wantKey: "notes/a.txt", wantOwned: true,
		},
		{name: "provider image host not owned", rawURL: "https://lh3.googleusercontent.com/a/b.png"},
		{name: "foreign host not owned", rawURL: "https://evil.test/darasa/avatars/u1.png"},
		{name: "no key", rawURL: "https://cdn.darasa.test/", wantErr: true},
		{name: "unparseable url", rawURL: "://lol", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, owned, err := s.ObjectKey(tt.rawURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ObjectKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if owned != tt.wantOwned {
				t.Errorf("ObjectKey() owned = %v, want %v", owned, tt.wantOwned)
			}
			if key != tt.wantKey {
				t.Errorf("ObjectKey() key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

func TestS3Storage_ObjectKey_noPublicHost(t *testing.T) {
	// without a configured public host any non-provider URL is assumed ours
	s := newS3Storage(nil, &core.Config{Storage: core.StorageConfig{Bucket: "darasa"}})

	key, owned, err := s.ObjectKey("https://whatever.test/darasa/a.png")
	if err != nil {
		t.Fatalf("ObjectKey() error = %v", err)
	}
	if !owned || key != "a.png" {
		t.Errorf("ObjectKey() = (%q, %v), want (%q, true)", key, owned, "a.png")
	}
}
