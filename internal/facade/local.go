package facade

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/imaging"
	"mailcanvas/internal/models"
	"mailcanvas/internal/storage"
)

// MissingFieldsMessage is returned when a save lacks a name or title.
const MissingFieldsMessage = "Missing required fields: name and title are required"

// ErrStorageUnavailable is returned by UploadImage when no object storage
// is configured.
var ErrStorageUnavailable = errors.New("image storage is not configured")

// TemplateRepository persists template records. Implemented by the
// PostgreSQL and MongoDB template stores.
type TemplateRepository interface {
	Create(ctx context.Context, t *models.Template) (*models.Template, error)
	FindByID(ctx context.Context, id string) (*models.Template, error)
}

// MediaRepository records uploaded image metadata.
type MediaRepository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	FindByChecksum(ctx context.Context, bucket, checksum string) (*models.Media, error)
}

// ObjectStorage hosts uploaded files. Implemented by storage.Client.
type ObjectStorage interface {
	Bucket() string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// Local implements Facade in-process.
type Local struct {
	templates TemplateRepository
	storage   ObjectStorage
	media     MediaRepository
	layout    string
	now       func() time.Time
	onSave    func(*models.Template)
}

// LocalOption configures a Local facade.
type LocalOption func(*Local)

// WithStorage enables image uploads. media may be nil to skip metadata.
func WithStorage(s ObjectStorage, media MediaRepository) LocalOption {
	return func(l *Local) {
		l.storage = s
		l.media = media
	}
}

// WithLayout sets the email layout document returned by FetchLayout.
func WithLayout(layout string) LocalOption {
	return func(l *Local) { l.layout = layout }
}

// OnSave registers a hook run after every successful save.
func OnSave(fn func(*models.Template)) LocalOption {
	return func(l *Local) { l.onSave = fn }
}

// NewLocal creates an in-process facade over a template repository.
func NewLocal(templates TemplateRepository, opts ...LocalOption) *Local {
	l := &Local{templates: templates, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FetchLayout returns the configured email layout.
func (l *Local) FetchLayout(_ context.Context) (string, error) {
	if l.layout == "" {
		return "", errors.New("email layout is not configured")
	}
	return l.layout, nil
}

// UploadImage stores the image and, when it is wider than the canvas, a
// copy fitted to the canvas width. The returned URL points at the copy the
// canvas should display. Bytes already uploaded to the bucket are not
// stored again; the earlier upload's URL is returned.
func (l *Local) UploadImage(ctx context.Context, data []byte, filename string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, &canvas.ValidationError{Field: "image", Message: "No file uploaded"}
	}
	if l.storage == nil {
		return nil, &canvas.IOError{Op: "upload image", Err: ErrStorageUnavailable}
	}

	contentType, err := imaging.Sniff(data)
	if err != nil {
		return nil, &canvas.ValidationError{Field: "image", Message: "file is not an image"}
	}

	sum := models.Checksum(data)
	if l.media != nil {
		prev, err := l.media.FindByChecksum(ctx, l.storage.Bucket(), sum)
		if err != nil {
			slog.Warn("media lookup failed", "error", err, "checksum", sum)
		} else if prev != nil {
			slog.Info("image already uploaded", "key", prev.DisplayKey(), "id", prev.ID)
			return &UploadResult{ImageURL: l.storage.FileURL(prev.DisplayKey())}, nil
		}
	}

	now := l.now()
	if path.Ext(filename) == "" {
		filename += imaging.Extension(contentType)
	}
	key := storage.ObjectKey(now, filename)
	if err := l.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("image upload failed", "error", err, "key", key)
		return nil, &canvas.IOError{Op: "upload image", Err: err}
	}

	media := &models.Media{
		Filename:     path.Base(key),
		OriginalName: filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Bucket:       l.storage.Bucket(),
		S3Key:        key,
		Checksum:     sum,
	}

	fitted, err := imaging.Fit(data, imaging.CanvasWidth)
	if err != nil {
		slog.Warn("image fit failed", "error", err, "key", key)
	} else {
		media.Width, media.Height = fitted.Width, fitted.Height
		if fitted.Resized {
			fk := fittedKey(key, fitted.ContentType)
			if err := l.storage.Upload(ctx, fk, fitted.ContentType, bytes.NewReader(fitted.Data), int64(len(fitted.Data))); err != nil {
				slog.Warn("fitted image upload failed", "error", err, "key", fk)
			} else {
				media.FittedS3Key = &fk
			}
		}
	}

	if l.media != nil {
		created, err := l.media.Create(ctx, media)
		if err != nil {
			slog.Error("media insert failed", "error", err, "key", key)
			l.removeObjects(ctx, media)
			return nil, &canvas.IOError{Op: "record upload", Err: err}
		}
		media = created
	}

	slog.Info("image uploaded", "key", media.DisplayKey(), "size", media.HumanSize())
	return &UploadResult{ImageURL: l.storage.FileURL(media.DisplayKey())}, nil
}

// removeObjects deletes the objects of an upload that has no media record.
// Objects that cannot be deleted are logged as orphaned.
func (l *Local) removeObjects(ctx context.Context, m *models.Media) {
	keys := []string{m.S3Key}
	if m.FittedS3Key != nil {
		keys = append(keys, *m.FittedS3Key)
	}
	for _, k := range keys {
		if err := l.storage.Delete(context.WithoutCancel(ctx), k); err != nil {
			slog.Error("orphaned upload", "error", err, "bucket", m.Bucket, "key", k)
		}
	}
}

// fittedKey derives the key of the canvas-width copy:
// uploads/2026/10/<uuid>.png → uploads/2026/10/<uuid>_fit.png.
func fittedKey(key, contentType string) string {
	base := strings.TrimSuffix(key, path.Ext(key))
	return base + "_fit" + imaging.Extension(contentType)
}

// SaveTemplate validates and stores a template record.
func (l *Local) SaveTemplate(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, &canvas.ValidationError{Message: MissingFieldsMessage}
	}

	elements := req.CanvasElements
	if elements == nil {
		elements = []models.StoredElement{}
	}
	for i := range elements {
		if elements[i].ElementType == "" {
			elements[i].ElementType = models.IDPrefix(elements[i].ID)
		}
	}

	t, err := l.templates.Create(ctx, &models.Template{
		Name:           req.Name,
		Title:          req.Title,
		TemplateType:   req.TemplateType,
		Styles:         req.Styles,
		CanvasElements: elements,
		HTMLContent:    req.HTMLContent,
		GeneratedHTML:  req.GeneratedHTML,
	})
	if err != nil {
		slog.Error("template save failed", "name", req.Name, "error", err)
		return nil, &canvas.IOError{Op: "save template", Err: err}
	}
	if l.onSave != nil {
		l.onSave(t)
	}

	slog.Info("template saved", "id", t.ID, "name", t.Name, "elements", len(t.CanvasElements))
	return &SaveResult{Success: true, Message: SavedMessage, Template: t}, nil
}
