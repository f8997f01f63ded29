// Package storage wraps the S3 client used for avatar uploads. Clients
// upload directly to the bucket through short-lived presigned PUT URLs;
// the API never proxies image bytes.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config carries the object-storage connection settings.
type Config struct {
	Region    string
	Endpoint  string // empty for the AWS default endpoint
	Bucket    string
	AccessKey string
	SecretKey string
}

// AvatarStore issues presigned upload URLs for user avatars.
type AvatarStore struct {
	cfg Config
}

func NewAvatarStore(cfg Config) *AvatarStore { return &AvatarStore{cfg: cfg} }

// Enabled reports whether object storage is configured at all. Avatar
// endpoints return 503 when it is not.
func (s *AvatarStore) Enabled() bool { return s.cfg.Bucket != "" }

func (s *AvatarStore) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.AccessKey, s.cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// avatarKey builds a collision-free storage key under the user's prefix.
func avatarKey(userID uint64) string {
	return fmt.Sprintf("avatars/%d/%s", userID, uuid.New())
}

// PresignUpload returns the storage key, a presigned PUT URL valid for 15
// minutes, and the public URL the avatar will be served from once the
// client finishes the upload.
func (s *AvatarStore) PresignUpload(ctx context.Context, userID uint64, contentType string) (key, uploadURL, publicURL string, err error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", "", "", err
	}
	key = avatarKey(userID)
	req, err := pc.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.cfg.Bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", "", err
	}
	return key, req.URL, s.PublicURL(key), nil
}

// PublicURL derives the durable object URL for a storage key.
func (s *AvatarStore) PublicURL(key string) string {
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// OwnsKey checks that a storage key sits under the user's avatar prefix,
// so one user cannot point their profile at another user's upload.
func (s *AvatarStore) OwnsKey(userID uint64, key string) bool {
	return strings.HasPrefix(key, fmt.Sprintf("avatars/%d/", userID))
}
