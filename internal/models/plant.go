package models

// PlantStatus mirrors the backend's 0|1 status flag.
type PlantStatus int

const (
	PlantInactive PlantStatus = 0
	PlantActive   PlantStatus = 1
)

// Opacity values used by the plant list to tell inactive plants apart.
const (
	opacityActive   = 1.0
	opacityInactive = 0.5
)

func (s PlantStatus) String() string {
	if s == PlantActive {
		return "active"
	}
	return "inactive"
}

// ParsePlantStatus accepts "active"/"inactive" (and "1"/"0").
func ParsePlantStatus(s string) (PlantStatus, bool) {
	switch s {
	case "active", "1":
		return PlantActive, true
	case "inactive", "0":
		return PlantInactive, true
	}
	return PlantInactive, false
}

// Reading is the latest sample the backend attaches to a plant summary.
type Reading struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Plant is one entry of the plant list.
type Plant struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      PlantStatus `json:"status"`
	LastReading *Reading    `json:"last_reading,omitempty"`
}

// Active reports whether the plant is being monitored.
func (p Plant) Active() bool { return p.Status == PlantActive }

// Opacity is the visual weight of the plant card.
func (p Plant) Opacity() float64 {
	if p.Active() {
		return opacityActive
	}
	return opacityInactive
}

// IntervalType is the unit of a plant's monitoring interval.
type IntervalType int

const (
	IntervalMinutes IntervalType = 1
	IntervalHours   IntervalType = 2
	IntervalDays    IntervalType = 3
)

// Valid reports whether t is one of the known units.
func (t IntervalType) Valid() bool {
	return t >= IntervalMinutes && t <= IntervalDays
}

// Image is an optional picture uploaded with a new plant.
type Image struct {
	Filename string
	Content  []byte
}

// NewPlant is the registration form.
type NewPlant struct {
	Name          string
	Description   string
	IntervalType  IntervalType
	IntervalValue int
	Image         *Image
}
