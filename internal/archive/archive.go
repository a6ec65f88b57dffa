// Package archive stores raw export snapshots in object storage so every
// reconciliation run stays auditable after the export file is replaced.
package archive

import (
	"bytes"
	"context"
	"fmt"

	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store uploads export snapshots to an S3-compatible bucket.
type Store struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewStore builds an archive store, or nil when archiving is not
// configured. Callers treat a nil store as "archiving disabled".
func NewStore(cfg config.ArchiveConfig, log *logger.Logger) (*Store, error) {
	if !cfg.IsArchiveEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.GetArchiveEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetArchiveAccessKey(), cfg.GetArchiveSecretKey(), ""),
		Secure: cfg.GetArchiveUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("archive client: %w", err)
	}

	return &Store{client: client, bucket: cfg.GetArchiveBucket(), log: log}, nil
}

// ArchiveExport uploads one export snapshot under exports/<name>/<uuid>.csv.
// The uuid keeps reruns of the same day from overwriting each other.
func (s *Store) ArchiveExport(ctx context.Context, name string, data []byte) error {
	if s == nil || s.client == nil {
		return nil
	}

	objectName := fmt.Sprintf("exports/%s/%s.csv", name, uuid.NewString())

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("archive export: %w", err)
	}

	s.log.Debug("archived export snapshot", "object", objectName, "bytes", len(data))
	return nil
}
