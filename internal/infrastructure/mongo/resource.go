package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rohn-shah/diode-be/internal/domain/repository"
)

// Resource is the generic document store behind the admin CRUD endpoints.
type Resource[T any] struct {
	spec repository.ResourceSpec
	coll *mongodriver.Collection
	now  func() time.Time
}

func NewResource[T any](db *mongodriver.Database, spec repository.ResourceSpec) *Resource[T] {
	return &Resource[T]{spec: spec, coll: db.Collection(spec.Collection), now: time.Now}
}

func (r *Resource[T]) op(name string) string {
	return "storage/mongo/" + r.spec.Collection + "." + name
}

func (r *Resource[T]) List(ctx context.Context, q repository.ListQuery) ([]T, int64, error) {
	op := r.op("List")

	filter := buildListFilter(r.spec, q)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(op, err)
	}

	cur, err := r.coll.Find(ctx, filter, listOptions(r.spec, q))
	if err != nil {
		return nil, 0, translate(op, err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, translate(op, err)
	}
	return out, total, nil
}

func (r *Resource[T]) GetByID(ctx context.Context, id string) (*T, error) {
	op := r.op("GetByID")

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func (r *Resource[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	op := r.op("Insert")

	m, err := toM(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := toMS(r.now())
	m["createdAt"] = now
	m["updatedAt"] = now

	res, err := r.coll.InsertOne(ctx, m)
	if err != nil {
		return nil, translate(op, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}
	return r.GetByID(ctx, oid.Hex())
}

func (r *Resource[T]) Update(ctx context.Context, id string, doc *T, fields []string) (*T, error) {
	op := r.op("Update")

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	m, err := toM(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.D{{Key: "updatedAt", Value: toMS(r.now())}}
	unset := bson.D{}
	for _, f := range fields {
		if v, ok := m[f]; ok && v != "" {
			set = append(set, bson.E{Key: f, Value: v})
		} else {
			unset = append(unset, bson.E{Key: f, Value: ""})
		}
	}
	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) (*T, error) {
	op := r.op("Delete")

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

// toM renders doc through its bson tags so omitempty fields disappear.
func toM(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	return m, nil
}
