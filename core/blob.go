package core

import (
	"context"

	"github.com/pkg/errors"
)

// ErrBlobNotFound reports that the object behind an attachment URL is
// already gone; callers treat it as success.
var ErrBlobNotFound = errors.New("blob not found")

// BlobCleaner removes stored binary objects by their public URL.
// Implementations must no-op on URLs the app does not own (third-party
// identity-provider image hosts).
type BlobCleaner interface {
	DeleteBlob(ctx context.Context, rawURL string) error
}
