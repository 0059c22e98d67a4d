package vehicle

import (
	"regexp"
	"strings"
	"time"
)

// Status 车辆状态（持久化为字符串）。
// 除下面三个已知状态外，允许出现其它业务状态值（按不透明值处理，
// 状态机只校验明确禁止的流转对）。
type Status string

const (
	StatusAvailable     Status = "AVAILABLE"      // 可用，可租出/可进维修
	StatusRented        Status = "RENTED"         // 已租出
	StatusInMaintenance Status = "IN_MAINTENANCE" // 维修中
)

// FuelType 燃料类型枚举。
type FuelType string

const (
	FuelGasoline FuelType = "GASOLINE"
	FuelDiesel   FuelType = "DIESEL"
	FuelElectric FuelType = "ELECTRIC"
	FuelHybrid   FuelType = "HYBRID"
)

// Valid 判断燃料类型是否是已知枚举值。
func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

// Vehicle 是 vehicles 表的 GORM 模型。
// status 只允许经由状态机（Transition）或维修工作流的副作用修改；
// active=false 表示软删除：保留历史，从各 active 列表中排除。
type Vehicle struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Plate           string    `gorm:"uniqueIndex;size:16;not null" json:"plate"`
	ModelID         uint64    `gorm:"index;not null" json:"model_id"`
	VehicleTypeID   uint64    `gorm:"index;not null" json:"vehicle_type_id"`
	FabricationYear int       `gorm:"not null" json:"fabrication_year"`
	FuelType        FuelType  `gorm:"type:varchar(16);not null" json:"fuel_type"`
	Description     string    `gorm:"size:500;not null" json:"description"`
	Status          Status    `gorm:"type:varchar(32);index;not null" json:"status"`
	Active          bool      `gorm:"index;not null" json:"active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Report 报表用 DTO：把外键解析成名称，供上层展示。
type Report struct {
	ID        string `json:"id"`
	Plate     string `json:"plate"`
	BrandName string `json:"brand_name"`
	ModelName string `json:"model_name"`
	TypeName  string `json:"type_name"`
	Status    Status `json:"status"`
	Active    bool   `json:"active"`
}

var platePattern = regexp.MustCompile(`^[A-Z0-9]{6,8}$`)

// NormalizePlate 车牌归一化：去首尾空白 + 全大写。唯一性比较与入库都用归一化值。
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ValidPlate 校验归一化后的车牌格式。
func ValidPlate(plate string) bool {
	return platePattern.MatchString(plate)
}
