package domain

// WindowsPerDay is the number of fixed 15-minute windows covering the
// 06:00-22:00 business day, half morning and half evening.
const (
	WindowsPerDay   = 64
	WindowsPerShift = 32
)

// AvgFulfillment carries the mean fulfillment minutes per category inside
// one window. Zero-fulfillment readings are excluded from the mean.
type AvgFulfillment struct {
	Lobby     float64 `json:"Lobby"`
	DriveThru float64 `json:"Drive-Thru"`
	ToGo      float64 `json:"ToGo"`
}

// Get returns the average for c.
func (a AvgFulfillment) Get(c Category) float64 {
	switch c {
	case CategoryLobby:
		return a.Lobby
	case CategoryDriveThru:
		return a.DriveThru
	case CategoryToGo:
		return a.ToGo
	}
	return 0
}

// Set replaces the average for c.
func (a *AvgFulfillment) Set(c Category, v float64) {
	switch c {
	case CategoryLobby:
		a.Lobby = v
	case CategoryDriveThru:
		a.DriveThru = v
	case CategoryToGo:
		a.ToGo = v
	}
}

// Timeslot is one graded 15-minute window. All 64 windows are emitted per
// run; windows with no orders carry zeroed stats and grade "N/A".
type Timeslot struct {
	Index           int               `json:"index"`
	TimeWindow      string            `json:"time_window"`
	Shift           Shift             `json:"shift"`
	Stats           CategoryBreakdown `json:"category_stats"`
	AvgFulfillment  AvgFulfillment    `json:"avg_fulfillment"`
	PassRate        float64           `json:"pass_rate"`
	PassedStandards bool              `json:"passed_standards"`
	Grade           string            `json:"grade"`
}

// TotalOrders returns the number of orders assigned to the window.
func (t Timeslot) TotalOrders() int {
	return t.Stats.TotalOrders()
}

// GradeForPassRate maps an overall pass rate to the letter grade scale.
func GradeForPassRate(rate float64) string {
	switch {
	case rate >= 0.95:
		return "A+"
	case rate >= 0.90:
		return "A"
	case rate >= 0.85:
		return "B+"
	case rate >= 0.80:
		return "B"
	case rate >= 0.70:
		return "C+"
	case rate >= 0.60:
		return "C"
	case rate >= 0.50:
		return "D"
	default:
		return "F"
	}
}
