package repo

import (
	"context"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"gorm.io/gorm"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (r *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *TradeSQLRepo) Create(ctx context.Context, record *model.Trade) (*model.Trade, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}

func (r *TradeSQLRepo) BulkCreate(ctx context.Context, records []*model.Trade) ([]*model.Trade, error) {
	return records, r.dbWithContext(ctx).Create(records).Error
}
