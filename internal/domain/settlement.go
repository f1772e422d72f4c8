package domain

import (
	"math"
	"time"
)

// Settlement result of billing a reservation
type Settlement struct {
	ElapsedMinutes int64
	BilledHours    int64
	PerHourRate    float64
	TotalAmount    float64
	TotalPaid      float64
	BalanceDue     float64
}

// IsSettled returns true if nothing is left to collect
func (s Settlement) IsSettled() bool {
	return s.BalanceDue <= 0
}

// Settle bills whole started hours between start and now (or the completion moment for
// completed reservations). Only paid payments count towards TotalPaid.
func Settle(r *Reservation, payments []ReservationPayment, now time.Time) Settlement {
	end := now
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}

	minutes := int64(end.Sub(r.StartDateAndTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	hours := (minutes + 59) / 60

	total := roundMoney(float64(hours) * r.PerHourRate)
	paid := TotalPaid(payments)

	return Settlement{
		ElapsedMinutes: minutes,
		BilledHours:    hours,
		PerHourRate:    r.PerHourRate,
		TotalAmount:    total,
		TotalPaid:      paid,
		BalanceDue:     roundMoney(total - paid),
	}
}

// TotalPaid sums payments in paid status
func TotalPaid(payments []ReservationPayment) float64 {
	var sum float64
	for _, p := range payments {
		if p.Status == PaymentRecordPaid {
			sum += p.Amount
		}
	}
	return roundMoney(sum)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
