package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store 目录数据的持久化接口。Find* 在记录不存在时返回 (nil, nil)。
type Store interface {
	FindBrandByID(ctx context.Context, id uint64) (*Brand, error)
	BrandNameExists(ctx context.Context, name string) (bool, error)
	CreateBrand(ctx context.Context, b *Brand) error
	SaveBrand(ctx context.Context, b *Brand) error
	ListBrands(ctx context.Context) ([]Brand, error)

	FindModelByID(ctx context.Context, id uint64) (*Model, error)
	ModelNameExists(ctx context.Context, name string, brandID uint64) (bool, error)
	CreateModel(ctx context.Context, m *Model) error
	SaveModel(ctx context.Context, m *Model) error
	ListModels(ctx context.Context) ([]Model, error)
	ListModelsByBrand(ctx context.Context, brandID uint64) ([]Model, error)

	FindTypeByID(ctx context.Context, id uint64) (*VehicleType, error)
	FindTypeByName(ctx context.Context, name string) (*VehicleType, error)
	ListTypes(ctx context.Context) ([]VehicleType, error)
}

// Repo Store 的 GORM 实现。
// 唯一性除了应用层 Exists 预检，还由表上的唯一索引兜底（并发下以数据库为准）。
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

func (r *Repo) FindBrandByID(ctx context.Context, id uint64) (*Brand, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var b Brand
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) BrandNameExists(ctx context.Context, name string) (bool, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	// LOWER 双侧比较：唯一性按大小写不敏感处理
	if err := db.Model(&Brand{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) CreateBrand(ctx context.Context, b *Brand) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(b).Error
}

func (r *Repo) SaveBrand(ctx context.Context, b *Brand) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(b).Error
}

func (r *Repo) ListBrands(ctx context.Context) ([]Brand, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var brands []Brand
	if err := db.Order("name").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *Repo) FindModelByID(ctx context.Context, id uint64) (*Model, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) ModelNameExists(ctx context.Context, name string, brandID uint64) (bool, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Model(&Model{}).
		Where("LOWER(name) = LOWER(?) AND brand_id = ?", name, brandID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) CreateModel(ctx context.Context, m *Model) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(m).Error
}

func (r *Repo) SaveModel(ctx context.Context, m *Model) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(m).Error
}

func (r *Repo) ListModels(ctx context.Context) ([]Model, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var models []Model
	if err := db.Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *Repo) ListModelsByBrand(ctx context.Context, brandID uint64) ([]Model, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var models []Model
	if err := db.Where("brand_id = ?", brandID).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *Repo) FindTypeByID(ctx context.Context, id uint64) (*VehicleType, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var t VehicleType
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repo) FindTypeByName(ctx context.Context, name string) (*VehicleType, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var t VehicleType
	if err := db.Where("LOWER(name) = LOWER(?)", name).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTypes(ctx context.Context) ([]VehicleType, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var types []VehicleType
	if err := db.Order("id").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}
