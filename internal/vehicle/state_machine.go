package vehicle

import (
	"github.com/FleetHub/FleetHub/internal/common/errs"
)

// forbiddenTransition 定义状态机明确禁止的流转对（闭合列表）。
// 未列出的流转一律允许，包括原地流转（from == to）和未知状态值；
// 原地流转是否有业务意义由调用方自行判断。
var forbiddenTransition = map[Status][]Status{
	StatusRented:        {StatusInMaintenance}, // 已租出的车不能直接进维修
	StatusInMaintenance: {StatusRented},        // 维修中的车必须先回到 AVAILABLE 才能租出
}

// CanTransition 判断 from -> to 是否是允许的状态流转。
// 纯函数：不查库、不落盘、不打日志。
func CanTransition(from, to Status) bool {
	for _, s := range forbiddenTransition[from] {
		if s == to {
			return false
		}
	}
	return true
}

// ValidateTransition 校验流转，禁止时返回 InvalidState。
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return errs.InvalidState("invalid vehicle status transition: %s -> %s", from, to)
	}
	return nil
}

// Transition 对车辆应用状态变更。
// 状态字段只允许经由这里修改（显式状态变更接口与维修工作流都走这条路）。
func Transition(v *Vehicle, to Status) error {
	if v == nil {
		return errs.Invalid("vehicle is nil")
	}
	if err := ValidateTransition(v.Status, to); err != nil {
		return err
	}
	v.Status = to
	return nil
}
