package alarms

// Severity grades how far a reading sits outside its configured range.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Valid returns true when the severity is a known grade.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// ClassifySeverity maps a reading against its thresholds. ok is false when
// the value is inside [min, max]; bounds are inclusive, so a value exactly on
// a threshold is in range. Outside the range, the tier depends on how far the
// value sits relative to the threshold span: more than 20% of the span is
// HIGH, more than 10% is MEDIUM, anything else LOW. Both cuts are strict, so
// a delta of exactly 10% of the span is still LOW.
//
// Callers must guarantee min < max; sensor definitions are validated before
// they reach the classifier.
func ClassifySeverity(value, min, max float64) (Severity, bool) {
	if value >= min && value <= max {
		return "", false
	}
	span := max - min
	delta := value - max
	if value < min {
		delta = min - value
	}
	switch {
	case delta > 0.2*span:
		return SeverityHigh, true
	case delta > 0.1*span:
		return SeverityMedium, true
	default:
		return SeverityLow, true
	}
}
