// Package domain defines the immutable value types shared across pipeline stages.
package domain

// Category is the service category assigned to a fulfilled order.
type Category string

const (
	CategoryLobby     Category = "Lobby"
	CategoryDriveThru Category = "Drive-Thru"
	CategoryToGo      Category = "ToGo"
)

// Categories returns all categories in their canonical iteration order.
// Grading and serialization depend on this order being stable.
func Categories() []Category {
	return []Category{CategoryLobby, CategoryDriveThru, CategoryToGo}
}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLobby, CategoryDriveThru, CategoryToGo:
		return true
	}
	return false
}

// Shift identifies one half of the business day, split at the configured
// cutoff hour (default 14:00).
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
)

// Title returns the capitalized form used in shift_operations rows.
func (s Shift) Title() string {
	switch s {
	case ShiftMorning:
		return "Morning"
	case ShiftEvening:
		return "Evening"
	}
	return string(s)
}

// Shifts returns both shifts in day order.
func Shifts() []Shift {
	return []Shift{ShiftMorning, ShiftEvening}
}

// CategoryStats counts pass/fail outcomes for one category within a window
// or shift. Total includes orders with invalid (zero) fulfillment readings,
// which are neither passed nor failed.
type CategoryStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Merge returns the element-wise sum of two stat cells.
func (s CategoryStats) Merge(o CategoryStats) CategoryStats {
	return CategoryStats{
		Total:  s.Total + o.Total,
		Passed: s.Passed + o.Passed,
		Failed: s.Failed + o.Failed,
	}
}

// CategoryBreakdown holds one stats cell per category. A struct rather than
// a map keeps JSON output in the canonical Lobby, Drive-Thru, ToGo order.
type CategoryBreakdown struct {
	Lobby     CategoryStats `json:"Lobby"`
	DriveThru CategoryStats `json:"Drive-Thru"`
	ToGo      CategoryStats `json:"ToGo"`
}

// Get returns the stats cell for c.
func (b CategoryBreakdown) Get(c Category) CategoryStats {
	switch c {
	case CategoryLobby:
		return b.Lobby
	case CategoryDriveThru:
		return b.DriveThru
	case CategoryToGo:
		return b.ToGo
	}
	return CategoryStats{}
}

// Set replaces the stats cell for c.
func (b *CategoryBreakdown) Set(c Category, s CategoryStats) {
	switch c {
	case CategoryLobby:
		b.Lobby = s
	case CategoryDriveThru:
		b.DriveThru = s
	case CategoryToGo:
		b.ToGo = s
	}
}

// Merge returns the per-category sum of two breakdowns.
func (b CategoryBreakdown) Merge(o CategoryBreakdown) CategoryBreakdown {
	return CategoryBreakdown{
		Lobby:     b.Lobby.Merge(o.Lobby),
		DriveThru: b.DriveThru.Merge(o.DriveThru),
		ToGo:      b.ToGo.Merge(o.ToGo),
	}
}

// TotalOrders sums the Total column across categories.
func (b CategoryBreakdown) TotalOrders() int {
	return b.Lobby.Total + b.DriveThru.Total + b.ToGo.Total
}

// ServiceMix is the percentage distribution of categorized orders. Values
// sum to 100 (within float tolerance) whenever at least one order exists.
type ServiceMix struct {
	Lobby     float64 `json:"Lobby"`
	DriveThru float64 `json:"Drive-Thru"`
	ToGo      float64 `json:"ToGo"`
}

// Get returns the percentage for c.
func (m ServiceMix) Get(c Category) float64 {
	switch c {
	case CategoryLobby:
		return m.Lobby
	case CategoryDriveThru:
		return m.DriveThru
	case CategoryToGo:
		return m.ToGo
	}
	return 0
}

// Set assigns the percentage for c.
func (m *ServiceMix) Set(c Category, v float64) {
	switch c {
	case CategoryLobby:
		m.Lobby = v
	case CategoryDriveThru:
		m.DriveThru = v
	case CategoryToGo:
		m.ToGo = v
	}
}

// Sum returns the total of all three percentages.
func (m ServiceMix) Sum() float64 {
	return m.Lobby + m.DriveThru + m.ToGo
}
