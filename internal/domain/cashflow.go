package domain

import (
	"fmt"
	"time"
)

// VendorPayout is one PAY_OUT transaction with its derived vendor. Amounts
// are stored as positive magnitudes of the negative CSV values.
type VendorPayout struct {
	Amount     float64   `json:"amount"`
	Reason     string    `json:"reason"`
	VendorName string    `json:"vendor_name"`
	Manager    string    `json:"manager"`
	Drawer     string    `json:"drawer"`
	Shift      Shift     `json:"shift"`
	Time       time.Time `json:"time"`
}

// NewVendorPayout validates and builds a payout record.
func NewVendorPayout(amount float64, reason, vendor, manager, drawer string, shift Shift, at time.Time) (VendorPayout, error) {
	if amount <= 0 {
		return VendorPayout{}, fmt.Errorf("vendor payout: amount %.2f must be positive", amount)
	}
	return VendorPayout{
		Amount:     amount,
		Reason:     reason,
		VendorName: vendor,
		Manager:    manager,
		Drawer:     drawer,
		Shift:      shift,
		Time:       at,
	}, nil
}

// ShiftCash holds the cash movement totals for one shift.
// NetCash is always CashCollected - TipsDistributed - VendorPayouts.
type ShiftCash struct {
	CashCollected   float64 `json:"cash_collected"`
	TipsDistributed float64 `json:"tips_distributed"`
	VendorPayouts   float64 `json:"vendor_payouts"`
	NetCash         float64 `json:"net_cash"`
}

// Add returns the element-wise sum of two shift totals, recomputing net.
func (c ShiftCash) Add(o ShiftCash) ShiftCash {
	sum := ShiftCash{
		CashCollected:   c.CashCollected + o.CashCollected,
		TipsDistributed: c.TipsDistributed + o.TipsDistributed,
		VendorPayouts:   c.VendorPayouts + o.VendorPayouts,
	}
	sum.NetCash = sum.CashCollected - sum.TipsDistributed - sum.VendorPayouts
	return sum
}

// CashFlow is the per-run cash movement summary.
type CashFlow struct {
	Morning      ShiftCash          `json:"morning"`
	Evening      ShiftCash          `json:"evening"`
	DrawerTotals map[string]float64 `json:"drawer_totals,omitempty"`
	Payouts      []VendorPayout     `json:"payouts,omitempty"`
}

// ShiftTotals returns the totals for s.
func (c CashFlow) ShiftTotals(s Shift) ShiftCash {
	if s == ShiftEvening {
		return c.Evening
	}
	return c.Morning
}

// DayTotal rolls both shifts up into one total.
func (c CashFlow) DayTotal() ShiftCash {
	return c.Morning.Add(c.Evening)
}
