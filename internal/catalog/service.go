package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/FleetHub/FleetHub/internal/common/logger"
)

// Service 封装品牌/型号/车辆类型的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// CreateBrand 创建品牌；归一化后的名称全局唯一。
func (s *Service) CreateBrand(ctx context.Context, name string) (*Brand, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Invalid("brand name is required")
	}
	normalized := NormalizeName(name)

	exists, err := s.store.BrandNameExists(ctx, normalized)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if exists {
		s.log.Warnf("attempt to create duplicate brand: %s", normalized)
		return nil, errs.Duplicate("brand %q already exists", normalized)
	}

	b := &Brand{Name: normalized}
	if err := s.store.CreateBrand(ctx, b); err != nil {
		return nil, errs.Internal(err)
	}
	s.log.Infof("brand created: id=%d name=%s", b.ID, b.Name)
	return b, nil
}

// CreateBrandWithModels 创建品牌并批量挂型号。
// 批量语义是 best-effort：型号与已有 (name, brand) 重复时静默跳过，不整体失败。
func (s *Service) CreateBrandWithModels(ctx context.Context, name string, modelNames []string) (*Brand, []Model, error) {
	b, err := s.CreateBrand(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	created := make([]Model, 0, len(modelNames))
	for _, mn := range modelNames {
		normalized := NormalizeName(mn)
		if normalized == "" {
			continue
		}
		exists, err := s.store.ModelNameExists(ctx, normalized, b.ID)
		if err != nil {
			return nil, nil, errs.Internal(err)
		}
		if exists {
			s.log.Warnf("duplicate model skipped: %s for brand %s", normalized, b.Name)
			continue
		}
		m := &Model{Name: normalized, BrandID: b.ID}
		if err := s.store.CreateModel(ctx, m); err != nil {
			return nil, nil, errs.Internal(err)
		}
		created = append(created, *m)
	}

	s.log.Infof("brand %q created with %d models", b.Name, len(created))
	return b, created, nil
}

// UpdateBrand 重命名品牌；与其它品牌的归一化名称冲突时拒绝。
func (s *Service) UpdateBrand(ctx context.Context, id uint64, newName string) (*Brand, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, errs.Invalid("brand name is required")
	}

	b, err := s.getBrand(ctx, id)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeName(newName)
	if !strings.EqualFold(b.Name, normalized) {
		exists, err := s.store.BrandNameExists(ctx, normalized)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if exists {
			return nil, errs.Duplicate("brand %q already exists", normalized)
		}
	}

	b.Name = normalized
	if err := s.store.SaveBrand(ctx, b); err != nil {
		return nil, errs.Internal(err)
	}
	return b, nil
}

func (s *Service) GetBrand(ctx context.Context, id uint64) (*Brand, error) {
	return s.getBrand(ctx, id)
}

func (s *Service) ListBrands(ctx context.Context) ([]Brand, error) {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return brands, nil
}

// CreateModel 在指定品牌下创建型号；(name, brand) 归一化后唯一。
func (s *Service) CreateModel(ctx context.Context, name string, brandID uint64) (*Model, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Invalid("model name is required")
	}

	b, err := s.getBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeName(name)
	exists, err := s.store.ModelNameExists(ctx, normalized, b.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if exists {
		return nil, errs.Duplicate("model %q already exists for this brand", normalized)
	}

	m := &Model{Name: normalized, BrandID: b.ID}
	if err := s.store.CreateModel(ctx, m); err != nil {
		return nil, errs.Internal(err)
	}
	s.log.Infof("model created: id=%d name=%s brand=%d", m.ID, m.Name, m.BrandID)
	return m, nil
}

// UpdateModel 更新型号名称/所属品牌；与被更新型号之外的 (name, brand) 冲突时拒绝。
func (s *Service) UpdateModel(ctx context.Context, id uint64, name string, brandID uint64) (*Model, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Invalid("model name is required")
	}

	m, err := s.getModel(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.getBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeName(name)
	samePair := strings.EqualFold(m.Name, normalized) && m.BrandID == b.ID
	if !samePair {
		exists, err := s.store.ModelNameExists(ctx, normalized, b.ID)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if exists {
			return nil, errs.Duplicate("model %q already exists for this brand", normalized)
		}
	}

	m.Name = normalized
	m.BrandID = b.ID
	if err := s.store.SaveModel(ctx, m); err != nil {
		return nil, errs.Internal(err)
	}
	return m, nil
}

func (s *Service) GetModel(ctx context.Context, id uint64) (*Model, error) {
	return s.getModel(ctx, id)
}

func (s *Service) ListModels(ctx context.Context) ([]Model, error) {
	models, err := s.store.ListModels(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return models, nil
}

func (s *Service) ListModelsByBrand(ctx context.Context, brandID uint64) ([]Model, error) {
	models, err := s.store.ListModelsByBrand(ctx, brandID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return models, nil
}

// GetType 车辆类型为只读参照数据，只提供查询。
func (s *Service) GetType(ctx context.Context, id uint64) (*VehicleType, error) {
	t, err := s.store.FindTypeByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if t == nil {
		return nil, errs.NotFound("vehicle type", id)
	}
	return t, nil
}

func (s *Service) GetTypeByName(ctx context.Context, name string) (*VehicleType, error) {
	t, err := s.store.FindTypeByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, errs.Internal(err)
	}
	if t == nil {
		return nil, errs.NotFound("vehicle type", fmt.Sprintf("name=%s", name))
	}
	return t, nil
}

func (s *Service) ListTypes(ctx context.Context) ([]VehicleType, error) {
	types, err := s.store.ListTypes(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return types, nil
}

func (s *Service) getBrand(ctx context.Context, id uint64) (*Brand, error) {
	b, err := s.store.FindBrandByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if b == nil {
		return nil, errs.NotFound("brand", id)
	}
	return b, nil
}

func (s *Service) getModel(ctx context.Context, id uint64) (*Model, error) {
	m, err := s.store.FindModelByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if m == nil {
		return nil, errs.NotFound("model", id)
	}
	return m, nil
}
