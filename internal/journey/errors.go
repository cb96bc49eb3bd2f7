package journey

import "errors"

// 错误分三类：校验类（入参问题，对应 400）、不变量类（业务规则拒绝，对应 409）、
// 未找到类（对应 404）。核心不做内部重试，统一返回哨兵错误由宿主层决定如何呈现。
var (
	// 校验类
	ErrInvalidCoordinate  = errors.New("journey: coordinate out of range")
	ErrInvalidProgress    = errors.New("journey: progress out of range")
	ErrNegativePassengers = errors.New("journey: passenger count is negative")
	ErrInvalidCapacity    = errors.New("journey: capacity must be positive")

	// 不变量类
	ErrAccidentBlocksStart        = errors.New("journey: accident blocks start")
	ErrAccidentBlocksRestart      = errors.New("journey: accident blocks restart")
	ErrCannotCompleteWithAccident = errors.New("journey: cannot complete with active accident")
	ErrJourneyCompleted           = errors.New("journey: journey already completed")
	ErrDriverBusy                 = errors.New("journey: driver already on an active journey")
	ErrVehicleHasDriver           = errors.New("journey: vehicle already bound to another driver")
	ErrInvalidTransition          = errors.New("journey: invalid status transition")

	// 未找到类
	ErrVehicleNotFound = errors.New("journey: vehicle not found")
	ErrDriverNotFound  = errors.New("journey: driver not found")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidCoordinate) ||
		errors.Is(err, ErrInvalidProgress) ||
		errors.Is(err, ErrNegativePassengers) ||
		errors.Is(err, ErrInvalidCapacity)
}

func IsInvariant(err error) bool {
	return errors.Is(err, ErrAccidentBlocksStart) ||
		errors.Is(err, ErrAccidentBlocksRestart) ||
		errors.Is(err, ErrCannotCompleteWithAccident) ||
		errors.Is(err, ErrJourneyCompleted) ||
		errors.Is(err, ErrDriverBusy) ||
		errors.Is(err, ErrVehicleHasDriver) ||
		errors.Is(err, ErrInvalidTransition)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrVehicleNotFound) || errors.Is(err, ErrDriverNotFound)
}
