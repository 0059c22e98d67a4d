package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/FleetHub/FleetHub/internal/vehicle"
	"gorm.io/gorm"
)

// Store 维修工单持久化接口。FindByID 在记录不存在时返回 (nil, nil)。
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	ListOpen(ctx context.Context) ([]Record, error)
	ListOpenByVehicle(ctx context.Context, vehicleID string) ([]Record, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]Record, error)
	// ListHistoryByVehicle 已完结工单，按结束日期倒序。
	ListHistoryByVehicle(ctx context.Context, vehicleID string) ([]Record, error)
}

// Stores 同一事务内可见的存储集合：维修工作流的写操作
// 同时触达车辆状态与工单，必须共享一个事务句柄。
type Stores struct {
	Vehicles vehicle.Store
	Records  Store
}

// UnitOfWork 把跨车辆/工单的写序列作为一个原子单元提交：
// fn 内任何错误都会让整个事务回滚，不留下半套状态。
type UnitOfWork interface {
	Do(ctx context.Context, fn func(s Stores) error) error
}

// Repo Store 的 GORM 实现。
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

func (r *Repo) Create(ctx context.Context, rec *Record) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(rec).Error
}

func (r *Repo) Save(ctx context.Context, rec *Record) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(rec).Error
}

func (r *Repo) Delete(ctx context.Context, id uint64) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&Record{}).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint64) (*Record, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]Record, error) {
	return r.list(ctx, "", nil, "start_date DESC")
}

func (r *Repo) ListOpen(ctx context.Context) ([]Record, error) {
	return r.list(ctx, "finalized = ?", []interface{}{false}, "start_date DESC")
}

func (r *Repo) ListOpenByVehicle(ctx context.Context, vehicleID string) ([]Record, error) {
	return r.list(ctx, "vehicle_id = ? AND finalized = ?", []interface{}{vehicleID, false}, "start_date DESC")
}

func (r *Repo) ListByVehicle(ctx context.Context, vehicleID string) ([]Record, error) {
	return r.list(ctx, "vehicle_id = ?", []interface{}{vehicleID}, "start_date DESC")
}

func (r *Repo) ListHistoryByVehicle(ctx context.Context, vehicleID string) ([]Record, error) {
	return r.list(ctx, "vehicle_id = ? AND finalized = ?", []interface{}{vehicleID, true}, "end_date DESC")
}

func (r *Repo) list(ctx context.Context, query string, args []interface{}, order string) ([]Record, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	q := db.Model(&Record{})
	if query != "" {
		q = q.Where(query, args...)
	}
	var records []Record
	if err := q.Order(order).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// gormUnitOfWork UnitOfWork 的 GORM 实现：fn 内的存储都绑定到同一个 tx，
// 车辆行通过 FindByIDForUpdate 加排他锁，并发写同一辆车时后到者等待/失败。
type gormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(s Stores) error) error {
	if u == nil || u.db == nil {
		return fmt.Errorf("unit of work db is nil")
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Vehicles: vehicle.NewRepo(tx),
			Records:  NewRepo(tx),
		})
	})
}
