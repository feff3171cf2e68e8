package repo

import (
	"context"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"gorm.io/gorm"
)

type OrderEventSQLRepo struct {
	db *gorm.DB
}

func NewOrderEventSQLRepo(db *gorm.DB) *OrderEventSQLRepo {
	return &OrderEventSQLRepo{
		db: db,
	}
}

func (r *OrderEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *OrderEventSQLRepo) Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}

func (r *OrderEventSQLRepo) BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error) {
	return records, r.dbWithContext(ctx).Create(records).Error
}
