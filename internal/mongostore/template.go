package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"mailcanvas/internal/models"
)

// Collection holds one document per saved template.
const Collection = "templates"

// templateDoc is the stored document. It matches models.Template except for
// the ObjectID primary key and the __v version key.
type templateDoc struct {
	ID             bson.ObjectID          `bson:"_id,omitempty"`
	Name           string                 `bson:"name"`
	Title          string                 `bson:"title"`
	TemplateType   string                 `bson:"templateType"`
	Styles         models.StyleSet        `bson:"styles"`
	CanvasElements []models.StoredElement `bson:"canvasElements"`
	HTMLContent    string                 `bson:"htmlContent"`
	GeneratedHTML  string                 `bson:"generatedHtml"`
	CreatedAt      time.Time              `bson:"createdAt"`
	UpdatedAt      time.Time              `bson:"updatedAt"`
	Version        int                    `bson:"__v"`
}

func (d *templateDoc) model() *models.Template {
	return &models.Template{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Title:          d.Title,
		TemplateType:   d.TemplateType,
		Styles:         d.Styles,
		CanvasElements: d.CanvasElements,
		HTMLContent:    d.HTMLContent,
		GeneratedHTML:  d.GeneratedHTML,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// TemplateStore reads and writes saved templates.
type TemplateStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewTemplateStore creates a store over the templates collection of db.
func NewTemplateStore(db *mongo.Database) *TemplateStore {
	return &TemplateStore{coll: db.Collection(Collection), now: time.Now}
}

// Create inserts a template and returns it with its generated ID.
func (s *TemplateStore) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	doc := templateDoc{
		ID:             bson.NewObjectID(),
		Name:           t.Name,
		Title:          t.Title,
		TemplateType:   t.TemplateType,
		Styles:         t.Styles,
		CanvasElements: t.CanvasElements,
		HTMLContent:    t.HTMLContent,
		GeneratedHTML:  t.GeneratedHTML,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if doc.TemplateType == "" {
		doc.TemplateType = models.DefaultTemplateType
	}
	if doc.CanvasElements == nil {
		doc.CanvasElements = []models.StoredElement{}
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return doc.model(), nil
}

// FindByID retrieves a template by its hex ObjectID. Returns nil if not
// found, including when id is not an ObjectID.
func (s *TemplateStore) FindByID(ctx context.Context, id string) (*models.Template, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc templateDoc
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return doc.model(), nil
}

// List returns templates newest first, with pagination.
func (s *TemplateStore) List(ctx context.Context, limit, offset int) ([]models.Template, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer cur.Close(ctx)

	var templates []models.Template
	for cur.Next(ctx) {
		var doc templateDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		templates = append(templates, *doc.model())
	}
	return templates, cur.Err()
}

// Delete removes a template. It reports whether a document was deleted.
func (s *TemplateStore) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	return res.DeletedCount > 0, nil
}
