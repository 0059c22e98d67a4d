package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/FleetHub/FleetHub/internal/vehicle"
	"github.com/stretchr/testify/require"
)

// memVehicles vehicle.Store 的内存实现，测试用。
type memVehicles struct {
	vehicles map[string]*vehicle.Vehicle
}

func newMemVehicles() *memVehicles {
	return &memVehicles{vehicles: make(map[string]*vehicle.Vehicle)}
}

func (s *memVehicles) add(id string, st vehicle.Status) {
	s.vehicles[id] = &vehicle.Vehicle{ID: id, Plate: "PLT" + id, Status: st, Active: true}
}

func (s *memVehicles) Create(_ context.Context, v *vehicle.Vehicle) error {
	cp := *v
	s.vehicles[v.ID] = &cp
	return nil
}

func (s *memVehicles) Save(_ context.Context, v *vehicle.Vehicle) error {
	cp := *v
	s.vehicles[v.ID] = &cp
	return nil
}

func (s *memVehicles) Delete(_ context.Context, id string) error {
	delete(s.vehicles, id)
	return nil
}

func (s *memVehicles) FindByID(_ context.Context, id string) (*vehicle.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *memVehicles) FindByIDForUpdate(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return s.FindByID(ctx, id)
}

func (s *memVehicles) PlateExists(_ context.Context, _ string) (bool, error) { return false, nil }

func (s *memVehicles) ListActive(_ context.Context) ([]vehicle.Vehicle, error) { return nil, nil }

func (s *memVehicles) ListByStatus(_ context.Context, _ vehicle.Status) ([]vehicle.Vehicle, error) {
	return nil, nil
}

func (s *memVehicles) ListByBrand(_ context.Context, _ uint64) ([]vehicle.Vehicle, error) {
	return nil, nil
}

func (s *memVehicles) ListByType(_ context.Context, _ uint64) ([]vehicle.Vehicle, error) {
	return nil, nil
}

func (s *memVehicles) ListAll(_ context.Context) ([]vehicle.Vehicle, error) { return nil, nil }

// memRecords Store 的内存实现，测试用。
type memRecords struct {
	records map[uint64]*Record
	nextID  uint64
}

func newMemRecords() *memRecords {
	return &memRecords{records: make(map[uint64]*Record)}
}

func (s *memRecords) Create(_ context.Context, rec *Record) error {
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *memRecords) Save(_ context.Context, rec *Record) error {
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *memRecords) Delete(_ context.Context, id uint64) error {
	delete(s.records, id)
	return nil
}

func (s *memRecords) FindByID(_ context.Context, id uint64) (*Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memRecords) ListAll(_ context.Context) ([]Record, error) {
	return s.filter(func(*Record) bool { return true }), nil
}

func (s *memRecords) ListOpen(_ context.Context) ([]Record, error) {
	return s.filter(func(r *Record) bool { return !r.Finalized }), nil
}

func (s *memRecords) ListOpenByVehicle(_ context.Context, vehicleID string) ([]Record, error) {
	return s.filter(func(r *Record) bool { return !r.Finalized && r.VehicleID == vehicleID }), nil
}

func (s *memRecords) ListByVehicle(_ context.Context, vehicleID string) ([]Record, error) {
	return s.filter(func(r *Record) bool { return r.VehicleID == vehicleID }), nil
}

func (s *memRecords) ListHistoryByVehicle(_ context.Context, vehicleID string) ([]Record, error) {
	return s.filter(func(r *Record) bool { return r.Finalized && r.VehicleID == vehicleID }), nil
}

func (s *memRecords) filter(keep func(*Record) bool) []Record {
	out := make([]Record, 0)
	for _, r := range s.records {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

// memUOW UnitOfWork 的内存实现：直接在共享存储上执行。
// 测试里所有失败路径都发生在首次写之前，不需要回滚语义。
type memUOW struct {
	stores Stores
}

func (u *memUOW) Do(_ context.Context, fn func(s Stores) error) error {
	return fn(u.stores)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memVehicles, *memRecords) {
	t.Helper()
	log, err := logger.NewLogger("error", "text", "stdout", "")
	require.NoError(t, err)
	vehicles := newMemVehicles()
	records := newMemRecords()
	svc := NewService(&memUOW{stores: Stores{Vehicles: vehicles, Records: records}}, records, log)
	svc.now = func() time.Time { return fixedNow }
	return svc, vehicles, records
}

func TestCreateOpensMaintenance(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	require.False(t, rec.Finalized)
	require.Equal(t, fixedNow, rec.StartDate)
	require.Nil(t, rec.EndDate)
	require.Zero(t, rec.CostCents)
	require.Equal(t, vehicle.StatusInMaintenance, vehicles.vehicles["v1"].Status)
}

func TestCreateRejectsNonAvailableVehicle(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusRented)

	_, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
	require.Equal(t, vehicle.StatusRented, vehicles.vehicles["v1"].Status)
}

func TestCreateRejectsSecondOpenRecord(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	_, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	// 即便状态被外部改回 AVAILABLE，未完结工单仍然挡住第二单
	vehicles.vehicles["v1"].Status = vehicle.StatusAvailable
	_, err = svc.Create(ctx, Input{VehicleID: "v1", Description: "brakes"})
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestCreateUnknownVehicle(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), Input{VehicleID: "missing", Description: "x"})
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "  "})
	require.True(t, errs.IsKind(err, errs.KindInvalid))

	negative := int64(-1)
	_, err = svc.Create(ctx, Input{VehicleID: "v1", Description: "x", CostCents: &negative})
	require.True(t, errs.IsKind(err, errs.KindInvalid))

	start := fixedNow
	end := fixedNow.Add(-24 * time.Hour)
	_, err = svc.Create(ctx, Input{VehicleID: "v1", Description: "x", StartDate: &start, EndDate: &end})
	require.True(t, errs.IsKind(err, errs.KindInvalid))

	// 只给结束日期时要和缺省的开始日期（当天）比较
	_, err = svc.Create(ctx, Input{VehicleID: "v1", Description: "x", EndDate: &end})
	require.True(t, errs.IsKind(err, errs.KindInvalid))
}

func TestUpdateRejectsEndBeforeEffectiveStart(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	// 未提供开始日期：沿用原开始日期参与比较
	end := rec.StartDate.Add(-time.Hour)
	_, err = svc.Update(ctx, rec.ID, Input{VehicleID: "v1", Description: "oil change", EndDate: &end})
	require.True(t, errs.IsKind(err, errs.KindInvalid))
}

func TestFinalize(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	done, err := svc.Finalize(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, done.Finalized)
	require.NotNil(t, done.EndDate)
	require.Equal(t, fixedNow, *done.EndDate)
	require.Equal(t, vehicle.StatusAvailable, vehicles.vehicles["v1"].Status)

	_, err = svc.Finalize(ctx, rec.ID)
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestFinalizeKeepsExplicitEndDate(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	end := fixedNow.Add(48 * time.Hour)
	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change", EndDate: &end})
	require.NoError(t, err)

	done, err := svc.Finalize(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, end, *done.EndDate)
}

func TestUpdateFinalizedRejected(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, rec.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, rec.ID, Input{VehicleID: "v1", Description: "rewrite"})
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestUpdateFields(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	cost := int64(12500)
	updated, err := svc.Update(ctx, rec.ID, Input{VehicleID: "v1", Description: "oil and filter", CostCents: &cost})
	require.NoError(t, err)
	require.Equal(t, "oil and filter", updated.Description)
	require.Equal(t, cost, updated.CostCents)
	// 未提供开始日期时沿用原值
	require.Equal(t, rec.StartDate, updated.StartDate)
}

func TestUpdateMovesVehicle(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)
	vehicles.add("v2", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, rec.ID, Input{VehicleID: "v2", Description: "oil change"})
	require.NoError(t, err)
	require.Equal(t, "v2", updated.VehicleID)
	require.Equal(t, vehicle.StatusAvailable, vehicles.vehicles["v1"].Status)
	require.Equal(t, vehicle.StatusInMaintenance, vehicles.vehicles["v2"].Status)
}

func TestUpdateRejectsUnavailableTarget(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)
	vehicles.add("v2", vehicle.StatusRented)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, rec.ID, Input{VehicleID: "v2", Description: "oil change"})
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
	// 原车保持维修中，目标车不受影响
	require.Equal(t, vehicle.StatusInMaintenance, vehicles.vehicles["v1"].Status)
	require.Equal(t, vehicle.StatusRented, vehicles.vehicles["v2"].Status)
}

func TestDeleteOpenRecordRevertsVehicle(t *testing.T) {
	svc, vehicles, records := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	require.Equal(t, vehicle.StatusAvailable, vehicles.vehicles["v1"].Status)
	require.Empty(t, records.records)
}

func TestDeleteFinalizedRecordLeavesVehicle(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, rec.ID)
	require.NoError(t, err)

	vehicles.vehicles["v1"].Status = vehicle.StatusRented
	require.NoError(t, svc.Delete(ctx, rec.ID))
	require.Equal(t, vehicle.StatusRented, vehicles.vehicles["v1"].Status)
}

func TestTotalCost(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	c1 := int64(10000)
	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change", CostCents: &c1})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, rec.ID)
	require.NoError(t, err)

	c2 := int64(2550)
	_, err = svc.Create(ctx, Input{VehicleID: "v1", Description: "brakes", CostCents: &c2})
	require.NoError(t, err)

	// 未完结的工单也计入合计
	total, err := svc.TotalCost(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, int64(12550), total)

	total, err = svc.TotalCost(ctx, "other")
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestListExpiringBefore(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)
	vehicles.add("v2", vehicle.StatusAvailable)
	vehicles.add("v3", vehicle.StatusAvailable)

	soon := fixedNow.Add(24 * time.Hour)
	late := fixedNow.Add(30 * 24 * time.Hour)

	rec1, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "a", EndDate: &soon})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{VehicleID: "v2", Description: "b", EndDate: &late})
	require.NoError(t, err)
	// 没有预计结束日期的工单不参与
	_, err = svc.Create(ctx, Input{VehicleID: "v3", Description: "c"})
	require.NoError(t, err)

	expiring, err := svc.ListExpiringBefore(ctx, fixedNow.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	require.Equal(t, rec1.ID, expiring[0].ID)
}

func TestListActiveForVehicle(t *testing.T) {
	svc, vehicles, _ := newTestService(t)
	ctx := context.Background()
	vehicles.add("v1", vehicle.StatusAvailable)

	rec, err := svc.Create(ctx, Input{VehicleID: "v1", Description: "oil change"})
	require.NoError(t, err)

	open, err := svc.ListActiveForVehicle(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = svc.Finalize(ctx, rec.ID)
	require.NoError(t, err)

	open, err = svc.ListActiveForVehicle(ctx, "v1")
	require.NoError(t, err)
	require.Empty(t, open)

	history, err := svc.ListHistoryForVehicle(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), 99)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}
