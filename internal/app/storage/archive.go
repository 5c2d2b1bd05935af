package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"voicenote/internal/app/audio"
	"voicenote/internal/app/model"
	"voicenote/internal/config"
)

// AudioArchive keeps a copy of every accepted upload in an S3-compatible bucket.
type AudioArchive struct {
	client *minio.Client
	bucket string
	region string
}

// NewAudioArchive creates a MinIO client from cfg.
func NewAudioArchive(cfg config.MinIOConfig) (*AudioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &AudioArchive{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (a *AudioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", a.bucket, err)
	}
	return nil
}

// ObjectKey is audio/<userId>/<id>.<format>.
func ObjectKey(t *model.Transcription) string {
	format := audio.DetectFormat(t.Filename)
	if t.Format != nil {
		format = *t.Format
	}
	return objectPrefix(t.UserID, t.ID) + "." + format
}

func objectPrefix(userID, id string) string {
	return fmt.Sprintf("audio/%s/%s", userID, id)
}

// Archive uploads the raw audio of t.
func (a *AudioArchive) Archive(ctx context.Context, t *model.Transcription, data []byte) error {
	opts := minio.PutObjectOptions{
		ContentType: audio.ContentType(t.Filename),
		UserMetadata: map[string]string{
			"original-name": t.Filename,
			"user-id":       t.UserID,
			"uploaded-at":   t.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
	_, err := a.client.PutObject(ctx, a.bucket, ObjectKey(t), bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("upload audio object: %w", err)
	}
	return nil
}

// Remove deletes the archived audio of transcription id owned by userID.
// Removing something that was never archived is not an error.
func (a *AudioArchive) Remove(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefix := objectPrefix(userID, id) + "."
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return fmt.Errorf("list audio objects: %w", obj.Err)
		}
		if err := a.client.RemoveObject(ctx, a.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove audio object %s: %w", obj.Key, err)
		}
	}
	return nil
}
