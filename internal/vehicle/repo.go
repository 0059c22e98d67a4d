package vehicle

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 车辆持久化接口。Find* 在记录不存在时返回 (nil, nil)。
// List* 系列只返回 active=true 的记录；ListAll 是报表用的原始列表。
type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Save(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	// FindByIDForUpdate 行锁版本：在事务内对车辆行加排他锁，
	// 保证读状态-校验-写状态序列不被并发写入穿插。
	FindByIDForUpdate(ctx context.Context, id string) (*Vehicle, error)
	PlateExists(ctx context.Context, plate string) (bool, error)
	ListActive(ctx context.Context) ([]Vehicle, error)
	ListByStatus(ctx context.Context, st Status) ([]Vehicle, error)
	ListByBrand(ctx context.Context, brandID uint64) ([]Vehicle, error)
	ListByType(ctx context.Context, typeID uint64) ([]Vehicle, error)
	ListAll(ctx context.Context) ([]Vehicle, error)
}

// Repo Store 的 GORM 实现。车牌唯一性由唯一索引兜底。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx), nil
}

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(v).Error
}

func (r *Repo) Save(ctx context.Context, v *Vehicle) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(v).Error
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&Vehicle{}).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	return r.find(ctx, id, false)
}

func (r *Repo) FindByIDForUpdate(ctx context.Context, id string) (*Vehicle, error) {
	return r.find(ctx, id, true)
}

func (r *Repo) find(ctx context.Context, id string, forUpdate bool) (*Vehicle, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var v Vehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// PlateExists 车牌查重，active 与否都算（软删除的车也占用车牌）。
func (r *Repo) PlateExists(ctx context.Context, plate string) (bool, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Model(&Vehicle{}).Where("plate = ?", plate).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) ListActive(ctx context.Context) ([]Vehicle, error) {
	return r.list(ctx, "active = ?", true)
}

func (r *Repo) ListByStatus(ctx context.Context, st Status) ([]Vehicle, error) {
	return r.list(ctx, "active = ? AND status = ?", true, st)
}

func (r *Repo) ListByBrand(ctx context.Context, brandID uint64) ([]Vehicle, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	sub := db.Session(&gorm.Session{NewDB: true}).
		Table("models").Select("id").Where("brand_id = ?", brandID)
	var vehicles []Vehicle
	if err := db.Where("active = ? AND model_id IN (?)", true, sub).
		Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *Repo) ListByType(ctx context.Context, typeID uint64) ([]Vehicle, error) {
	return r.list(ctx, "active = ? AND vehicle_type_id = ?", true, typeID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Vehicle, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var vehicles []Vehicle
	if err := db.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *Repo) list(ctx context.Context, query string, args ...interface{}) ([]Vehicle, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var vehicles []Vehicle
	if err := db.Where(query, args...).Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}
