package domain

import "math"

// MoneyBreakdown денежная разбивка бронирования
// Инвариант: ProfessionalPayout <= Total
type MoneyBreakdown struct {
	BasePrice          float64
	AddonsTotal        float64
	PlatformFee        float64
	Tax                float64
	Tip                float64
	Total              float64
	ProfessionalPayout float64
}

// CalculateTotal собирает денежную разбивку бронирования
//
// basePrice умножается на ценовой коэффициент слота (PriceModifier),
// комиссия платформы и налог считаются от стоимости услуги с добавками,
// чаевые идут исполнителю целиком и комиссией не облагаются
func CalculateTotal(basePrice, addonsTotal, tip, modifier, feeRate, taxRate float64) MoneyBreakdown {
	adjustedBase := round2(basePrice * modifier)
	serviceAmount := adjustedBase + addonsTotal

	fee := round2(serviceAmount * feeRate)
	tax := round2(serviceAmount * taxRate)
	total := round2(serviceAmount + fee + tax + tip)

	payout := round2(serviceAmount - fee + tip)
	if payout < 0 {
		payout = 0
	}
	if payout > total {
		payout = total
	}

	return MoneyBreakdown{
		BasePrice:          adjustedBase,
		AddonsTotal:        addonsTotal,
		PlatformFee:        fee,
		Tax:                tax,
		Tip:                tip,
		Total:              total,
		ProfessionalPayout: payout,
	}
}

// round2 округляет до копеек
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
