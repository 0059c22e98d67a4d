package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/FleetHub/FleetHub/internal/vehicle"
)

// Input 创建/更新维修工单的入参。StartDate/EndDate/CostCents 为 nil 时
// 走各自的默认值规则（见 Create / Update）。
type Input struct {
	VehicleID   string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	CostCents   *int64
}

// Service 维修工作流。所有写路径都经过 UnitOfWork：
// 工单变更和车辆状态变更要么一起生效要么一起回滚。
type Service struct {
	uow   UnitOfWork
	store Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(uow UnitOfWork, store Store, log logger.Logger) *Service {
	return &Service{uow: uow, store: store, log: log, now: time.Now}
}

func validateInput(in Input) error {
	if strings.TrimSpace(in.VehicleID) == "" {
		return errs.Invalid("vehicle id is required")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return errs.Invalid("description is required")
	}
	if len(desc) > 500 {
		return errs.Invalid("description must not exceed 500 characters")
	}
	if in.CostCents != nil && *in.CostCents < 0 {
		return errs.Invalid("cost must not be negative")
	}
	return nil
}

// Create 开启维修：车辆必须 AVAILABLE 且没有未完结工单，
// 成功后车辆进入 IN_MAINTENANCE。车辆行加锁，防止并发开单双写。
func (s *Service) Create(ctx context.Context, in Input) (*Record, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	start := s.now()
	if in.StartDate != nil {
		start = *in.StartDate
	}
	// 结束日期要和生效的开始日期比（开始日期缺省为当天）
	if in.EndDate != nil && in.EndDate.Before(start) {
		return nil, errs.Invalid("end date must not be before start date")
	}

	var rec *Record
	err := s.uow.Do(ctx, func(st Stores) error {
		v, err := st.Vehicles.FindByIDForUpdate(ctx, in.VehicleID)
		if err != nil {
			return errs.Internal(err)
		}
		if v == nil {
			return errs.NotFound("vehicle", in.VehicleID)
		}
		if v.Status != vehicle.StatusAvailable {
			return errs.InvalidState("vehicle %s is not available (status=%s)", v.ID, v.Status)
		}
		open, err := st.Records.ListOpenByVehicle(ctx, v.ID)
		if err != nil {
			return errs.Internal(err)
		}
		if len(open) > 0 {
			return errs.InvalidState("vehicle %s already has an open maintenance record", v.ID)
		}

		if err := vehicle.Transition(v, vehicle.StatusInMaintenance); err != nil {
			return err
		}
		if err := st.Vehicles.Save(ctx, v); err != nil {
			return errs.Internal(err)
		}

		var cost int64
		if in.CostCents != nil {
			cost = *in.CostCents
		}
		rec = &Record{
			VehicleID:   v.ID,
			Description: strings.TrimSpace(in.Description),
			StartDate:   start,
			EndDate:     in.EndDate,
			CostCents:   cost,
			Finalized:   false,
		}
		if err := st.Records.Create(ctx, rec); err != nil {
			return errs.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("maintenance %d opened for vehicle %s", rec.ID, rec.VehicleID)
	return rec, nil
}

// Finalize 完结维修：工单落上结束日期并冻结，车辆回到 AVAILABLE。
// 结束日期缺省为当天；已完结的工单拒绝重复完结。
func (s *Service) Finalize(ctx context.Context, id uint64) (*Record, error) {
	var rec *Record
	err := s.uow.Do(ctx, func(st Stores) error {
		var err error
		rec, err = s.findRecord(ctx, st.Records, id)
		if err != nil {
			return err
		}
		if rec.Finalized {
			return errs.InvalidState("maintenance %d is already finalized", id)
		}

		v, err := st.Vehicles.FindByIDForUpdate(ctx, rec.VehicleID)
		if err != nil {
			return errs.Internal(err)
		}
		if v == nil {
			return errs.NotFound("vehicle", rec.VehicleID)
		}
		if err := vehicle.Transition(v, vehicle.StatusAvailable); err != nil {
			return err
		}
		if err := st.Vehicles.Save(ctx, v); err != nil {
			return errs.Internal(err)
		}

		if rec.EndDate == nil {
			end := s.now()
			rec.EndDate = &end
		}
		rec.Finalized = true
		if err := st.Records.Save(ctx, rec); err != nil {
			return errs.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("maintenance %d finalized, vehicle %s available again", rec.ID, rec.VehicleID)
	return rec, nil
}

// Update 修改未完结工单。换车时把原车放回 AVAILABLE，
// 新车必须 AVAILABLE 才能接进维修。已完结工单不可修改。
func (s *Service) Update(ctx context.Context, id uint64, in Input) (*Record, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var rec *Record
	err := s.uow.Do(ctx, func(st Stores) error {
		var err error
		rec, err = s.findRecord(ctx, st.Records, id)
		if err != nil {
			return err
		}
		if rec.Finalized {
			return errs.InvalidState("maintenance %d is finalized and cannot be modified", id)
		}

		start := rec.StartDate
		if in.StartDate != nil {
			start = *in.StartDate
		}
		if in.EndDate != nil && in.EndDate.Before(start) {
			return errs.Invalid("end date must not be before start date")
		}

		if in.VehicleID != rec.VehicleID {
			next, err := st.Vehicles.FindByIDForUpdate(ctx, in.VehicleID)
			if err != nil {
				return errs.Internal(err)
			}
			if next == nil {
				return errs.NotFound("vehicle", in.VehicleID)
			}
			if next.Status != vehicle.StatusAvailable {
				return errs.InvalidState("vehicle %s is not available (status=%s)", next.ID, next.Status)
			}
			openNext, err := st.Records.ListOpenByVehicle(ctx, next.ID)
			if err != nil {
				return errs.Internal(err)
			}
			if len(openNext) > 0 {
				return errs.InvalidState("vehicle %s already has an open maintenance record", next.ID)
			}

			prev, err := st.Vehicles.FindByIDForUpdate(ctx, rec.VehicleID)
			if err != nil {
				return errs.Internal(err)
			}
			if prev == nil {
				return errs.NotFound("vehicle", rec.VehicleID)
			}
			if err := vehicle.Transition(prev, vehicle.StatusAvailable); err != nil {
				return err
			}
			if err := st.Vehicles.Save(ctx, prev); err != nil {
				return errs.Internal(err)
			}

			if err := vehicle.Transition(next, vehicle.StatusInMaintenance); err != nil {
				return err
			}
			if err := st.Vehicles.Save(ctx, next); err != nil {
				return errs.Internal(err)
			}
			rec.VehicleID = next.ID
		}

		rec.Description = strings.TrimSpace(in.Description)
		rec.StartDate = start
		rec.EndDate = in.EndDate
		if in.CostCents != nil {
			rec.CostCents = *in.CostCents
		}
		if err := st.Records.Save(ctx, rec); err != nil {
			return errs.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete 删除工单。未完结的工单会把车辆放回 AVAILABLE 再删，
// 已完结的工单直接删，不碰车辆。
func (s *Service) Delete(ctx context.Context, id uint64) error {
	err := s.uow.Do(ctx, func(st Stores) error {
		rec, err := s.findRecord(ctx, st.Records, id)
		if err != nil {
			return err
		}
		if !rec.Finalized {
			v, err := st.Vehicles.FindByIDForUpdate(ctx, rec.VehicleID)
			if err != nil {
				return errs.Internal(err)
			}
			if v == nil {
				return errs.NotFound("vehicle", rec.VehicleID)
			}
			if err := vehicle.Transition(v, vehicle.StatusAvailable); err != nil {
				return err
			}
			if err := st.Vehicles.Save(ctx, v); err != nil {
				return errs.Internal(err)
			}
		}
		if err := st.Records.Delete(ctx, rec.ID); err != nil {
			return errs.Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Infof("maintenance %d deleted", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*Record, error) {
	return s.findRecord(ctx, s.store, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return records, nil
}

// ListActive 全部未完结工单。
func (s *Service) ListActive(ctx context.Context) ([]Record, error) {
	records, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return records, nil
}

// ListActiveForVehicle 指定车辆的未完结工单（按不变量至多一条）。
func (s *Service) ListActiveForVehicle(ctx context.Context, vehicleID string) ([]Record, error) {
	records, err := s.store.ListOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return records, nil
}

func (s *Service) ListForVehicle(ctx context.Context, vehicleID string) ([]Record, error) {
	records, err := s.store.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return records, nil
}

// ListHistoryForVehicle 指定车辆的已完结工单，按结束日期倒序。
func (s *Service) ListHistoryForVehicle(ctx context.Context, vehicleID string) ([]Record, error) {
	records, err := s.store.ListHistoryByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return records, nil
}

// TotalCost 指定车辆全部工单（含未完结）的费用合计，单位分。
func (s *Service) TotalCost(ctx context.Context, vehicleID string) (int64, error) {
	records, err := s.store.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return 0, errs.Internal(err)
	}
	var total int64
	for i := range records {
		total += records[i].CostCents
	}
	return total, nil
}

// ListExpiringBefore 预计结束日期早于 cutoff 的未完结工单。
// 没有预计结束日期（EndDate 为 nil）的工单不参与。
func (s *Service) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]Record, error) {
	records, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	expiring := make([]Record, 0)
	for i := range records {
		if records[i].EndDate != nil && records[i].EndDate.Before(cutoff) {
			expiring = append(expiring, records[i])
		}
	}
	return expiring, nil
}

func (s *Service) findRecord(ctx context.Context, store Store, id uint64) (*Record, error) {
	rec, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if rec == nil {
		return nil, errs.NotFound("maintenance", id)
	}
	return rec, nil
}
