package vehicle

import (
	"context"
	"strings"
	"time"

	"github.com/FleetHub/FleetHub/internal/catalog"
	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/google/uuid"
)

// CatalogLookup 解析型号/类型/品牌参照数据；只做存在性检查与名称读取，
// 车辆侧永远不会修改目录数据。
type CatalogLookup interface {
	FindBrandByID(ctx context.Context, id uint64) (*catalog.Brand, error)
	FindModelByID(ctx context.Context, id uint64) (*catalog.Model, error)
	FindTypeByID(ctx context.Context, id uint64) (*catalog.VehicleType, error)
}

// Input 创建/更新车辆的入参。
type Input struct {
	Plate           string
	ModelID         uint64
	VehicleTypeID   uint64
	FabricationYear int
	FuelType        FuelType
	Description     string
}

// Service 封装车辆领域的核心用例。status/active 的写入全部收口在这里
// （以及维修工作流的事务内副作用）。
type Service struct {
	store   Store
	catalog CatalogLookup
	log     logger.Logger
}

func NewService(store Store, cl CatalogLookup, log logger.Logger) *Service {
	return &Service{store: store, catalog: cl, log: log}
}

const minFabricationYear = 1900

func validateInput(in Input) (string, error) {
	if strings.TrimSpace(in.Plate) == "" {
		return "", errs.Invalid("plate is required")
	}
	plate := NormalizePlate(in.Plate)
	if !ValidPlate(plate) {
		return "", errs.Invalid("invalid plate format: %s", plate)
	}
	if in.FabricationYear < minFabricationYear {
		return "", errs.Invalid("fabrication year must be >= %d", minFabricationYear)
	}
	if !in.FuelType.Valid() {
		return "", errs.Invalid("unknown fuel type: %s", in.FuelType)
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return "", errs.Invalid("description is required")
	}
	if len(desc) > 500 {
		return "", errs.Invalid("description must not exceed 500 characters")
	}
	return plate, nil
}

// Create 创建车辆：车牌归一化后全局唯一（含软删除的车），
// 初始 status=AVAILABLE、active=true。
func (s *Service) Create(ctx context.Context, in Input) (*Vehicle, error) {
	plate, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.PlateExists(ctx, plate)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if exists {
		s.log.Warnf("attempt to create vehicle with duplicate plate: %s", plate)
		return nil, errs.Duplicate("vehicle with plate %s already exists", plate)
	}

	if err := s.resolveRefs(ctx, in.ModelID, in.VehicleTypeID); err != nil {
		return nil, err
	}

	v := &Vehicle{
		ID:              uuid.NewString(),
		Plate:           plate,
		ModelID:         in.ModelID,
		VehicleTypeID:   in.VehicleTypeID,
		FabricationYear: in.FabricationYear,
		FuelType:        in.FuelType,
		Description:     strings.TrimSpace(in.Description),
		Status:          StatusAvailable,
		Active:          true,
		CreatedAt:       time.Now(),
	}

	if err := s.store.Create(ctx, v); err != nil {
		return nil, errs.Internal(err)
	}
	s.log.Infof("vehicle created: id=%s plate=%s", v.ID, v.Plate)
	return v, nil
}

// Update 更新车辆基础信息；不会触碰 status 与 active。
// 车牌变化时才重新查重。
func (s *Service) Update(ctx context.Context, id string, in Input) (*Vehicle, error) {
	plate, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	v, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if v.Plate != plate {
		exists, err := s.store.PlateExists(ctx, plate)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if exists {
			return nil, errs.Duplicate("vehicle with plate %s already exists", plate)
		}
	}

	if err := s.resolveRefs(ctx, in.ModelID, in.VehicleTypeID); err != nil {
		return nil, err
	}

	v.Plate = plate
	v.ModelID = in.ModelID
	v.VehicleTypeID = in.VehicleTypeID
	v.FabricationYear = in.FabricationYear
	v.FuelType = in.FuelType
	v.Description = strings.TrimSpace(in.Description)

	if err := s.store.Save(ctx, v); err != nil {
		return nil, errs.Internal(err)
	}
	return v, nil
}

// SoftDelete 软删除：active=false，与当前 status 无关，重复调用是无操作。
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	v, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	v.Active = false
	if err := s.store.Save(ctx, v); err != nil {
		return errs.Internal(err)
	}
	s.log.Infof("vehicle soft-deleted: %s", id)
	return nil
}

// Restore 恢复软删除；已 active 时是无操作（记日志，不报错）。
func (s *Service) Restore(ctx context.Context, id string) error {
	v, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if v.Active {
		s.log.Warnf("vehicle %s is already active", id)
		return nil
	}
	v.Active = true
	if err := s.store.Save(ctx, v); err != nil {
		return errs.Internal(err)
	}
	s.log.Infof("vehicle restored: %s", id)
	return nil
}

// HardDelete 物理删除，绕过软删除。既有维修工单的外键策略由数据库层负责。
func (s *Service) HardDelete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return errs.Internal(err)
	}
	s.log.Infof("vehicle hard-deleted: %s", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Vehicle, error) {
	return s.get(ctx, id)
}

// UpdateStatus 显式状态变更：必须通过状态机校验。
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Vehicle, error) {
	if strings.TrimSpace(string(to)) == "" {
		return nil, errs.Invalid("target status is required")
	}
	v, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Transition(v, to); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, v); err != nil {
		return nil, errs.Internal(err)
	}
	s.log.Infof("vehicle %s status updated to %s", id, to)
	return v, nil
}

// CheckAvailability 车辆当前是否可租（status == AVAILABLE）。
func (s *Service) CheckAvailability(ctx context.Context, id string) (bool, error) {
	v, err := s.get(ctx, id)
	if err != nil {
		return false, err
	}
	return v.Status == StatusAvailable, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Vehicle, error) {
	vehicles, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return vehicles, nil
}

func (s *Service) ListAvailable(ctx context.Context) ([]Vehicle, error) {
	return s.ListByStatus(ctx, StatusAvailable)
}

func (s *Service) ListByStatus(ctx context.Context, st Status) ([]Vehicle, error) {
	vehicles, err := s.store.ListByStatus(ctx, st)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return vehicles, nil
}

func (s *Service) ListByBrand(ctx context.Context, brandID uint64) ([]Vehicle, error) {
	vehicles, err := s.store.ListByBrand(ctx, brandID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return vehicles, nil
}

func (s *Service) ListByType(ctx context.Context, typeID uint64) ([]Vehicle, error) {
	vehicles, err := s.store.ListByType(ctx, typeID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return vehicles, nil
}

// ListAllForReports 报表用原始列表（含软删除的车），外键解析为名称。
// 参照数据解析失败不让报表整体失败，名称留空并记警告。
func (s *Service) ListAllForReports(ctx context.Context) ([]Report, error) {
	vehicles, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}

	reports := make([]Report, 0, len(vehicles))
	for i := range vehicles {
		v := vehicles[i]
		rep := Report{
			ID:     v.ID,
			Plate:  v.Plate,
			Status: v.Status,
			Active: v.Active,
		}

		if m, err := s.catalog.FindModelByID(ctx, v.ModelID); err == nil && m != nil {
			rep.ModelName = m.Name
			if b, err := s.catalog.FindBrandByID(ctx, m.BrandID); err == nil && b != nil {
				rep.BrandName = b.Name
			}
		} else {
			s.log.Warnf("report: model %d not resolved for vehicle %s", v.ModelID, v.ID)
		}
		if t, err := s.catalog.FindTypeByID(ctx, v.VehicleTypeID); err == nil && t != nil {
			rep.TypeName = t.Name
		}

		reports = append(reports, rep)
	}
	return reports, nil
}

func (s *Service) resolveRefs(ctx context.Context, modelID, typeID uint64) error {
	m, err := s.catalog.FindModelByID(ctx, modelID)
	if err != nil {
		return errs.Internal(err)
	}
	if m == nil {
		return errs.NotFound("model", modelID)
	}
	t, err := s.catalog.FindTypeByID(ctx, typeID)
	if err != nil {
		return errs.Internal(err)
	}
	if t == nil {
		return errs.NotFound("vehicle type", typeID)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*Vehicle, error) {
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if v == nil {
		return nil, errs.NotFound("vehicle", id)
	}
	return v, nil
}
