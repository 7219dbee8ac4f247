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

const collectionEmployees = "employees"

var _ ports.EmployeeRepository = (*EmployeeRepository)(nil)

type EmployeeRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewEmployeeRepository(db *mongo.Database, seq *Sequence) *EmployeeRepository {
	return &EmployeeRepository{col: db.Collection(collectionEmployees), seq: seq}
}

type mongoEmployee struct {
	ID           int64      `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	Phone        string     `bson:"phone"`
	Position     string     `bson:"position"`
	PasswordHash string     `bson:"password_hash,omitempty"`
	IsActive     bool       `bson:"is_active"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	DeletedAt    *time.Time `bson:"deleted_at"`
}

func (d *mongoEmployee) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Position:     d.Position,
		PasswordHash: d.PasswordHash,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		DeletedAt:    timePtr(d.DeletedAt),
	}
}

// projection hides the credential unless it was asked for.
func projection(proj domain.Projection) bson.M {
	if proj == domain.WithCredential {
		return nil
	}
	return bson.M{"password_hash": 0}
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64, scope domain.Scope, proj domain.Projection) (*domain.Employee, error) {
	return r.findOne(ctx, scopeFilter(bson.M{"_id": id}, scope), proj)
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string, scope domain.Scope, proj domain.Projection) (*domain.Employee, error) {
	return r.findOne(ctx, scopeFilter(bson.M{"email": email}, scope), proj)
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M, proj domain.Projection) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if p := projection(proj); p != nil {
		opts.SetProjection(p)
	}

	var doc mongoEmployee
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, translate(err, "find employee")
	}
	return doc.toDomain(), nil
}

func (r *EmployeeRepository) CountByEmail(ctx context.Context, email string, excludeID int64, scope domain.Scope) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, uniqueFilter("email", email, excludeID, scope))
	if err != nil {
		return 0, translate(err, "count employees")
	}
	return n, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(projection(domain.DefaultFields))

	cur, err := r.col.Find(ctx, scopeFilter(bson.M{}, domain.LiveOnly), opts)
	if err != nil {
		return nil, translate(err, "list employees")
	}
	defer cur.Close(ctx)

	var docs []mongoEmployee
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "decode employees")
	}
	out := make([]*domain.Employee, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *EmployeeRepository) Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.Next(ctx, collectionEmployees)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := mongoEmployee{
		ID:           id,
		Name:         e.Name,
		Email:        e.Email,
		Phone:        e.Phone,
		Position:     e.Position,
		PasswordHash: e.PasswordHash,
		IsActive:     e.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "insert employee")
	}
	return doc.toDomain(), nil
}

// updateSet builds the $set document; the hash is only written when supplied.
func updateSet(e *domain.Employee, now time.Time) bson.M {
	set := bson.M{
		"name":       e.Name,
		"email":      e.Email,
		"phone":      e.Phone,
		"position":   e.Position,
		"is_active":  e.IsActive,
		"updated_at": now,
	}
	if e.PasswordHash != "" {
		set["password_hash"] = e.PasswordHash
	}
	return set
}

func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(projection(domain.DefaultFields))

	var doc mongoEmployee
	err := r.col.FindOneAndUpdate(ctx,
		scopeFilter(bson.M{"_id": e.ID}, domain.LiveOnly),
		bson.M{"$set": updateSet(e, time.Now().UTC())},
		opts,
	).Decode(&doc)
	if err != nil {
		return nil, translate(err, "update employee")
	}
	return doc.toDomain(), nil
}

func (r *EmployeeRepository) UpdateCredential(ctx context.Context, id int64, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		scopeFilter(bson.M{"_id": id}, domain.LiveOnly),
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err, "update employee credential")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		scopeFilter(bson.M{"_id": id}, domain.LiveOnly),
		bson.M{"$set": bson.M{"deleted_at": at.UTC()}},
	)
	if err != nil {
		return translate(err, "soft delete employee")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index (it spans deleted rows) and the
// listing index.
func (r *EmployeeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "deleted_at", Value: 1}, {Key: "name", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
