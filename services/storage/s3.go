package storagesvc

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// S3Storage removes stored objects (attachments, avatars) by their public
// URL. It works against any S3-compatible endpoint (AWS, R2, minio).
type S3Storage struct {
	client             *s3.Client
	bucket             string
	publicHost         string
	providerImageHosts []string
}

var _ core.BlobCleaner = (*S3Storage)(nil)

func NewS3Storage(ctx context.Context, conf *core.Config) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Storage.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.Storage.AccessKey, conf.Storage.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading storage config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Storage(client, conf), nil
}

func newS3Storage(client *s3.Client, conf *core.Config) *S3Storage {
	return &S3Storage{
		client:             client,
		bucket:             conf.Storage.Bucket,
		publicHost:         conf.Storage.PublicHost,
		providerImageHosts: conf.Storage.ProviderImageHosts,
	}
}

// DeleteBlob removes the object behind rawURL. Provider-hosted images
// (identity-provider avatars) and URLs on hosts other than ours are a no-op:
// the app does not own those objects. An already-missing object surfaces as
// core.ErrBlobNotFound so callers can treat it as success.
func (s *S3Storage) DeleteBlob(ctx context.Context, rawURL string) error {
	key, owned, err := s.ObjectKey(rawURL)
	if err != nil {
		return err
	}
	if !owned {
		return nil
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return core.ErrBlobNotFound
		}
		return errors.Wrapf(err, "deleting object %q", key)
	}
	return nil
}

// ObjectKey parses the storage object key out of a public attachment URL.
// owned is false when the URL's host is a provider image host or any host
// other than the configured public host.
func (s *S3Storage) ObjectKey(rawURL string) (key string, owned bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, errors.Wrapf(err, "parsing attachment URL %q", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	for _, ph := range s.providerImageHosts {
		if host == strings.ToLower(ph) {
			return "", false, nil
		}
	}
	if s.publicHost != "" && host != strings.ToLower(s.publicHost) {
		return "", false, nil
	}

	key = strings.TrimPrefix(u.Path, "/")
	// path-style URLs carry the bucket as the first path segment
	key = strings.TrimPrefix(key, s.bucket+"/")
	if key == "" {
		return "", false, errors.Errorf("no object key in attachment URL %q", rawURL)
	}
	return key, true, nil
}
