package health

import "strings"

// SuccessRateStrategy 根据一次结果更新通道成功率 (0~100)
type SuccessRateStrategy interface {
	Update(current float64, success bool) float64
}

// NewStrategy 按名称创建，未知名称回落到 ewma
func NewStrategy(name string) SuccessRateStrategy {
	switch strings.ToLower(name) {
	case "decay":
		return &DecayStrategy{Factor: 0.95}
	case "sliding":
		return &SlidingStrategy{StepUp: 5, StepDown: 10}
	default:
		return &EWMAStrategy{Alpha: 0.1}
	}
}

// EWMAStrategy 趋势平滑，订单量大的通道适用
type EWMAStrategy struct {
	Alpha float64
}

func (e *EWMAStrategy) Update(current float64, success bool) float64 {
	var value float64
	if success {
		value = 100
	}
	return e.Alpha*value + (1-e.Alpha)*current
}

// DecayStrategy 每次过期衰减一次，支付成功直接恢复满分
type DecayStrategy struct {
	Factor float64
}

func (d *DecayStrategy) Update(current float64, success bool) float64 {
	if success {
		return 100
	}
	updated := current * d.Factor
	if updated < 0 {
		return 0
	}
	return updated
}

// SlidingStrategy 固定步长
type SlidingStrategy struct {
	StepUp   float64
	StepDown float64
}

func (s *SlidingStrategy) Update(current float64, success bool) float64 {
	if success {
		return clamp(current + s.StepUp)
	}
	return clamp(current - s.StepDown)
}

func clamp(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
