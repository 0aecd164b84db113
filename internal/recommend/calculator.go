package recommend

import "math"

// PurchaseMetrics is the breakdown behind a recommended purchase quantity.
type PurchaseMetrics struct {
	AvgDaily       float64
	Required       float64
	SafetyStock    float64
	RecommendedQty int
}

// PurchaseCalculator scales seasonal daily demand to a purchase for a planning horizon.
type PurchaseCalculator struct {
	planningDays int
}

func NewPurchaseCalculator(planningDays int) *PurchaseCalculator {
	return &PurchaseCalculator{planningDays: planningDays}
}

// Calculate computes the purchase for the given daily units. units must not be empty.
func (pc *PurchaseCalculator) Calculate(units []float64, safetyRatio float64) PurchaseMetrics {
	metrics := PurchaseMetrics{}

	// 1. Average daily demand over the matching days
	var sum float64
	for _, u := range units {
		sum += u
	}
	metrics.AvgDaily = sum / float64(len(units))

	// 2. Quantity for the planning horizon
	metrics.Required = metrics.AvgDaily * float64(pc.planningDays)

	// 3. Safety stock on top of the required quantity
	metrics.SafetyStock = metrics.Required * safetyRatio

	// 4. Round half to even, never below zero
	metrics.RecommendedQty = int(math.RoundToEven(math.Max(0, metrics.Required+metrics.SafetyStock)))

	return metrics
}
