package domain

import "time"

// RefundDecision результат применения политики возврата
type RefundDecision struct {
	RefundPct    int
	RefundAmount float64
}

// CalculateRefund вычисляет процент и сумму возврата на момент отмены
//
// Политика (от момента отмены до запланированного начала):
//
//	customer:      > 24h -> 100%, 2h-24h -> 50%, < 2h или in_progress -> 0%
//	professional:  всегда 100%
//	system:        всегда 100%
//
// Границы включаются в нижнюю сторону тарифа: ровно 24h00m -> 100%,
// ровно 2h00m -> 50%
func CalculateRefund(actor CancelActor, status BookingStatus, scheduledStart, now time.Time, totalAmount float64) RefundDecision {
	pct := refundPct(actor, status, scheduledStart.Sub(now))
	return RefundDecision{
		RefundPct:    pct,
		RefundAmount: round2(totalAmount * float64(pct) / 100),
	}
}

func refundPct(actor CancelActor, status BookingStatus, untilStart time.Duration) int {
	// Отмена исполнителем или платформой - полный возврат вне зависимости
	// от времени до начала и текущего статуса
	if actor == ActorProfessional || actor == ActorSystem {
		return 100
	}

	// Уборка уже идёт - клиенту возврат не положен
	if status == StatusInProgress {
		return 0
	}

	switch {
	case untilStart >= FullRefundNotice:
		return 100
	case untilStart >= HalfRefundNotice:
		return 50
	default:
		return 0
	}
}
