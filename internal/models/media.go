// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media represents an image uploaded for use on a canvas.
// Metadata is stored in PostgreSQL; the file itself lives in the bucket.
type Media struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Bucket       string    `json:"bucket"`
	S3Key        string    `json:"s3_key"`
	// FittedS3Key points at a copy scaled down to the canvas width, when the
	// original was wider than the canvas.
	FittedS3Key *string `json:"fitted_s3_key,omitempty"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	// Checksum is the hex SHA-256 of the uploaded bytes.
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// Checksum returns the value stored in Media.Checksum for data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}

// DisplayKey returns the key that should be placed on the canvas: the fitted
// variant when one exists, otherwise the original upload.
func (m *Media) DisplayKey() string {
	if m.FittedS3Key != nil && *m.FittedS3Key != "" {
		return *m.FittedS3Key
	}
	return m.S3Key
}

// HumanSize returns a human-readable file size string.
func (m *Media) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.SizeBytes)/float64(mb))
	case m.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.SizeBytes)
	}
}
