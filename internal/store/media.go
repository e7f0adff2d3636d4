// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mailcanvas/internal/models"
)

// MediaStore keeps metadata of uploaded canvas images, keyed by object key
// and content checksum.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, filename, original_name, content_type, size_bytes,
	bucket, s3_key, fitted_s3_key, width, height, checksum, created_at`

// scanMedia scans a media row from the result set.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.Bucket, &m.S3Key, &m.FittedS3Key, &m.Width, &m.Height, &m.Checksum, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record and returns it with the generated ID.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO media (filename, original_name, content_type, size_bytes,
			bucket, s3_key, fitted_s3_key, width, height, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes,
		m.Bucket, m.S3Key, m.FittedS3Key, m.Width, m.Height, m.Checksum,
	)
	created, err := scanMedia(row)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// FindByChecksum returns the earliest upload of the same bytes into bucket,
// or nil when there is none.
func (s *MediaStore) FindByChecksum(ctx context.Context, bucket, checksum string) (*models.Media, error) {
	if checksum == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE bucket = $1 AND checksum = $2
		ORDER BY created_at
		LIMIT 1`, bucket, checksum)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by checksum: %w", err)
	}
	return m, nil
}
