package domain

import "time"

// SettlementMethod how a payment was collected
type SettlementMethod string

const (
	MethodCash             SettlementMethod = "cash"
	MethodBankTransfer     SettlementMethod = "bank_transfer"
	MethodCard             SettlementMethod = "card"
	MethodBilledToCustomer SettlementMethod = "billed_to_customer"
)

// SettlementMethods lists supported methods
var SettlementMethods = []SettlementMethod{MethodCash, MethodBankTransfer, MethodCard, MethodBilledToCustomer}

// IsValid returns true for a supported method
func (m SettlementMethod) IsValid() bool {
	for _, known := range SettlementMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentRecordStatus status of a single payment entry
type PaymentRecordStatus string

const (
	PaymentRecordPending PaymentRecordStatus = "pending"
	PaymentRecordPaid    PaymentRecordStatus = "paid"
	PaymentRecordFailed  PaymentRecordStatus = "failed"
)

// ReservationPayment one payment (advance or final) attached to a reservation
type ReservationPayment struct {
	ID            int64
	ReservationID int64
	Reference     string
	Amount        float64
	Method        SettlementMethod
	PayerID       *int64
	Status        PaymentRecordStatus
	CreatedAt     time.Time
}
