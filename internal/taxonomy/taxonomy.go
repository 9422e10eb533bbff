// Package taxonomy holds the static catalog of monitored signal categories.
// The catalog is defined at process start and never mutated at runtime; the
// matching pipeline consults it for default-threshold lookups only.
package taxonomy

import "time"

// Phase distinguishes externally observed signals from internal metrics.
type Phase string

const (
	PhaseExternal Phase = "external"
	PhaseInternal Phase = "internal"
)

// MetricType enumerates the shapes a data point can take.
type MetricType string

const (
	MetricPercentage MetricType = "percentage"
	MetricCount      MetricType = "count"
	MetricCurrency   MetricType = "currency"
	MetricScore      MetricType = "score"
	MetricBoolean    MetricType = "boolean"
	MetricText       MetricType = "text"
	MetricTrend      MetricType = "trend"
)

// Operator enumerates threshold comparison operators.
type Operator string

const (
	OpGT       Operator = "gt"
	OpLT       Operator = "lt"
	OpGTE      Operator = "gte"
	OpLTE      Operator = "lte"
	OpEQ       Operator = "eq"
	OpNEQ      Operator = "neq"
	OpContains Operator = "contains"
	OpSpike    Operator = "spike"
	OpDrop     Operator = "drop"
	OpTrend    Operator = "trend"
)

// Threshold is advisory metadata for configuration surfaces. The matching
// pipeline does not evaluate live metric values against it.
type Threshold struct {
	Operator Operator
	Value    float64
	Urgency  string
}

// DataPoint is a measurable quantity within a category.
type DataPoint struct {
	ID               string
	MetricType       MetricType
	Unit             string
	Sources          []string
	DefaultThreshold *Threshold
}

// SignalCategory identifies a domain of monitored signals.
type SignalCategory struct {
	ID              string
	Name            string
	Phase           Phase
	RefreshInterval time.Duration
	DataPoints      []DataPoint
	Playbooks       []string
}

// Categories returns the full catalog.
func Categories() []SignalCategory {
	return catalog
}

// CategoryByID looks up a category by its id.
func CategoryByID(id string) (SignalCategory, bool) {
	for _, cat := range catalog {
		if cat.ID == id {
			return cat, true
		}
	}
	return SignalCategory{}, false
}

// DefaultThreshold returns the default threshold for a data point, if one is
// defined.
func DefaultThreshold(categoryID, dataPointID string) (Threshold, bool) {
	cat, ok := CategoryByID(categoryID)
	if !ok {
		return Threshold{}, false
	}
	for _, dp := range cat.DataPoints {
		if dp.ID == dataPointID && dp.DefaultThreshold != nil {
			return *dp.DefaultThreshold, true
		}
	}
	return Threshold{}, false
}
