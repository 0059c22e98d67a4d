package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Brand 品牌参照数据；名称全局唯一（归一化后比较）。
type Brand struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

// Model 型号，归属唯一品牌；(name, brand_id) 唯一。
// 品牌删除不在业务范围内，不做级联处理。
type Model struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"uniqueIndex:uniq_model_name_brand;size:64;not null" json:"name"`
	BrandID uint64 `gorm:"uniqueIndex:uniq_model_name_brand;index;not null" json:"brand_id"`
}

// VehicleType 车辆类型，核心侧只读的参照数据。
type VehicleType struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// NormalizeName 名称归一化：去首尾空白 + 首字母大写。
// 唯一性比较与入库都使用归一化后的值。
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
