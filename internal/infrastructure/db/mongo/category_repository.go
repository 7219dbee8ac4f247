package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const collectionCategories = "categories"

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

type CategoryRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewCategoryRepository(db *mongo.Database, seq *Sequence) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(collectionCategories), seq: seq}
}

type mongoCategory struct {
	ID          int64      `bson:"_id"`
	Name        string     `bson:"name"`
	Description string     `bson:"description"`
	IsActive    bool       `bson:"is_active"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	DeletedAt   *time.Time `bson:"deleted_at"`
}

func (d *mongoCategory) toDomain() *domain.Category {
	return &domain.Category{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		DeletedAt:   timePtr(d.DeletedAt),
	}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64, scope domain.Scope) (*domain.Category, error) {
	return r.findOne(ctx, scopeFilter(bson.M{"_id": id}, scope))
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string, scope domain.Scope) (*domain.Category, error) {
	return r.findOne(ctx, scopeFilter(bson.M{"name": name}, scope))
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCategory
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, "find category")
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) CountByName(ctx context.Context, name string, excludeID int64, scope domain.Scope) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, uniqueFilter("name", name, excludeID, scope))
	if err != nil {
		return 0, translate(err, "count categories")
	}
	return n, nil
}

// List returns live categories sorted by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, scopeFilter(bson.M{}, domain.LiveOnly),
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, translate(err, "list categories")
	}
	defer cur.Close(ctx)

	var docs []mongoCategory
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "decode categories")
	}
	out := make([]*domain.Category, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *CategoryRepository) Insert(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.Next(ctx, collectionCategories)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := mongoCategory{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "insert category")
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":        c.Name,
		"description": c.Description,
		"is_active":   c.IsActive,
		"updated_at":  time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoCategory
	err := r.col.FindOneAndUpdate(ctx, scopeFilter(bson.M{"_id": c.ID}, domain.LiveOnly), bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, translate(err, "update category")
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		scopeFilter(bson.M{"_id": id}, domain.LiveOnly),
		bson.M{"$set": bson.M{"deleted_at": at.UTC()}},
	)
	if err != nil {
		return translate(err, "soft delete category")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique name index (it spans deleted rows) and the
// listing index.
func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_name")},
		{Keys: bson.D{{Key: "deleted_at", Value: 1}, {Key: "name", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
