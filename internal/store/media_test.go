package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"mailcanvas/internal/models"
)

func TestMediaStoreCreateAndLookup(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)
	ctx := context.Background()

	s3Key := "media/test/" + uuid.NewString()[:8] + ".png"
	fitted := "media/test/" + uuid.NewString()[:8] + "_fit.png"
	sum := models.Checksum([]byte(s3Key))
	t.Cleanup(func() { cleanMediaByKey(t, db, s3Key) })

	created, err := s.Create(ctx, &models.Media{
		Filename:     "a.png",
		OriginalName: "Screenshot.png",
		ContentType:  "image/png",
		SizeBytes:    2048,
		Bucket:       "public",
		S3Key:        s3Key,
		FittedS3Key:  &fitted,
		Width:        1600,
		Height:       900,
		Checksum:     sum,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	found, err := s.FindByChecksum(ctx, "public", sum)
	if err != nil {
		t.Fatalf("FindByChecksum: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected media %s, got %+v", created.ID, found)
	}
	if found.DisplayKey() != fitted {
		t.Errorf("DisplayKey: got %q, want %q", found.DisplayKey(), fitted)
	}
	if found.Width != 1600 || found.Height != 900 {
		t.Errorf("dimensions: got %dx%d, want 1600x900", found.Width, found.Height)
	}
}

func TestMediaStoreLookupMissing(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)

	m, err := s.FindByChecksum(context.Background(), "public", models.Checksum([]byte(uuid.NewString())))
	if err != nil {
		t.Fatalf("FindByChecksum: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil, got %+v", m)
	}
}

func TestMediaStoreFindByChecksum(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)
	ctx := context.Background()

	sum := models.Checksum([]byte(uuid.NewString()))
	firstKey := "media/test/" + uuid.NewString()[:8] + ".png"
	secondKey := "media/test/" + uuid.NewString()[:8] + ".png"
	t.Cleanup(func() {
		cleanMediaByKey(t, db, firstKey)
		cleanMediaByKey(t, db, secondKey)
	})

	for _, key := range []string{firstKey, secondKey} {
		_, err := s.Create(ctx, &models.Media{
			Filename: "a.png", OriginalName: "a.png", ContentType: "image/png",
			SizeBytes: 10, Bucket: "public", S3Key: key, Checksum: sum,
		})
		if err != nil {
			t.Fatalf("Create %s: %v", key, err)
		}
	}

	found, err := s.FindByChecksum(ctx, "public", sum)
	if err != nil {
		t.Fatalf("FindByChecksum: %v", err)
	}
	if found == nil || found.S3Key != firstKey {
		t.Fatalf("expected the earliest upload %s, got %+v", firstKey, found)
	}

	other, err := s.FindByChecksum(ctx, "private", sum)
	if err != nil || other != nil {
		t.Errorf("other bucket: got %+v, %v; want nil, nil", other, err)
	}
	empty, err := s.FindByChecksum(ctx, "public", "")
	if err != nil || empty != nil {
		t.Errorf("empty checksum: got %+v, %v; want nil, nil", empty, err)
	}
}
