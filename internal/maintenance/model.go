package maintenance

import (
	"time"
)

// Record 维修工单 GORM 模型。
// 不变量：同一辆车同一时刻最多只有一条未完结（finalized=false）的工单；
// finalized 只会 false -> true 流转一次，完结后工单不可修改。
// 金额按分存储（int64），与全仓金额口径一致。
type Record struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VehicleID   string     `gorm:"size:36;index;not null" json:"vehicle_id"`
	Description string     `gorm:"size:500;not null" json:"description"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CostCents   int64      `gorm:"not null;default:0" json:"cost_cents"`
	Finalized   bool       `gorm:"index;not null" json:"finalized"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string {
	return "maintenance_records"
}
