package mongo

import (
	"context"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
)

type AuditRepository struct {
	logs *mongodriver.Collection
}

func NewAuditRepository(db *mongodriver.Database) *AuditRepository {
	return &AuditRepository{logs: db.Collection(AuditCollection)}
}

func (r *AuditRepository) Insert(ctx context.Context, log *entity.AuditLog) error {
	const op = "storage/mongo/audit.Insert"

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	log.CreatedAt = toMS(log.CreatedAt)
	_, err := r.logs.InsertOne(ctx, log)
	return translate(op, err)
}
