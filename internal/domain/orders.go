package domain

import (
	"fmt"
	"time"
)

// OrderRecord is one fulfilled order after categorization. Records are
// value types; Category is assigned exactly once by the categorizer and
// updated copies go through WithCategory.
type OrderRecord struct {
	CheckNumber          string    `json:"check_number"`
	Category             Category  `json:"category"`
	FulfillmentMinutes   float64   `json:"fulfillment_minutes"`
	OrderDurationMinutes float64   `json:"order_duration_minutes"`
	OrderTime            time.Time `json:"order_time"`
	Server               string    `json:"server"`
	Shift                Shift     `json:"shift"`
	Table                string    `json:"table,omitempty"`
	CashDrawer           string    `json:"cash_drawer,omitempty"`
	EmployeePosition     string    `json:"employee_position,omitempty"`
}

// NewOrderRecord validates and builds an order record. Durations must be
// non-negative; zero means the source had no usable measurement.
func NewOrderRecord(check string, fulfillment, duration float64, orderTime time.Time, server string, shift Shift) (OrderRecord, error) {
	if check == "" {
		return OrderRecord{}, fmt.Errorf("order record: empty check number")
	}
	if fulfillment < 0 {
		return OrderRecord{}, fmt.Errorf("order record %s: negative fulfillment %.2f", check, fulfillment)
	}
	if duration < 0 {
		return OrderRecord{}, fmt.Errorf("order record %s: negative duration %.2f", check, duration)
	}
	return OrderRecord{
		CheckNumber:          check,
		FulfillmentMinutes:   fulfillment,
		OrderDurationMinutes: duration,
		OrderTime:            orderTime,
		Server:               server,
		Shift:                shift,
	}, nil
}

// WithCategory returns a copy of the record with its category assigned.
func (o OrderRecord) WithCategory(c Category) OrderRecord {
	o.Category = c
	return o
}

// HasValidFulfillment reports whether the fulfillment reading can be used
// for pass/fail decisions and averages. Zero readings count toward totals
// only.
func (o OrderRecord) HasValidFulfillment() bool {
	return o.FulfillmentMinutes > 0
}
