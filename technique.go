package upscale

// Technique selects the upscaling algorithm.
type Technique uint8

const (
	// TechniqueDisabled renders at output resolution without upscaling.
	// Disabling is always valid and owns no GPU buffers.
	TechniqueDisabled Technique = iota

	// TechniqueFSR1 is a spatial upscaler (no history, no motion vectors).
	TechniqueFSR1

	// TechniqueFSR2 is a temporal upscaler driven by jitter and motion vectors.
	TechniqueFSR2

	// TechniqueDLSS is a vendor temporal upscaler.
	TechniqueDLSS

	// TechniqueXeSS is a vendor temporal upscaler.
	TechniqueXeSS
)

// Techniques lists every non-disabled technique in preference order.
var Techniques = []Technique{TechniqueDLSS, TechniqueXeSS, TechniqueFSR2, TechniqueFSR1}

// String returns the technique name.
func (t Technique) String() string {
	switch t {
	case TechniqueDisabled:
		return "Disabled"
	case TechniqueFSR1:
		return "FSR1"
	case TechniqueFSR2:
		return "FSR2"
	case TechniqueDLSS:
		return "DLSS"
	case TechniqueXeSS:
		return "XeSS"
	default:
		return "Unknown"
	}
}

// Enabled reports whether the technique performs upscaling.
func (t Technique) Enabled() bool {
	return t != TechniqueDisabled
}

// Temporal reports whether the technique accumulates history and therefore
// consumes jitter and motion vectors.
func (t Technique) Temporal() bool {
	switch t {
	case TechniqueFSR2, TechniqueDLSS, TechniqueXeSS:
		return true
	default:
		return false
	}
}

// ParseTechnique returns the technique with the given name.
func ParseTechnique(name string) (Technique, bool) {
	for _, t := range append([]Technique{TechniqueDisabled}, Techniques...) {
		if t.String() == name {
			return t, true
		}
	}
	return TechniqueDisabled, false
}

// Quality is a named performance/quality trade-off point.
type Quality uint8

const (
	// QualityAuto lets the backend pick a fixed tier for the output resolution.
	QualityAuto Quality = iota

	// QualityDynamicAuto adjusts the render scale every frame to hit a target
	// frame time.
	QualityDynamicAuto

	// QualityDynamicManual renders at a caller-chosen scale factor.
	QualityDynamicManual

	// QualityNativeAA renders at output resolution and only anti-aliases.
	QualityNativeAA

	QualityUltraQuality
	QualityQuality
	QualityBalanced
	QualityPerformance
	QualityUltraPerformance
)

// String returns the quality tier name.
func (q Quality) String() string {
	switch q {
	case QualityAuto:
		return "Auto"
	case QualityDynamicAuto:
		return "DynamicAuto"
	case QualityDynamicManual:
		return "DynamicManual"
	case QualityNativeAA:
		return "NativeAA"
	case QualityUltraQuality:
		return "UltraQuality"
	case QualityQuality:
		return "Quality"
	case QualityBalanced:
		return "Balanced"
	case QualityPerformance:
		return "Performance"
	case QualityUltraPerformance:
		return "UltraPerformance"
	default:
		return "Unknown"
	}
}

// Dynamic reports whether the tier selects the render scale per frame.
func (q Quality) Dynamic() bool {
	return q == QualityDynamicAuto || q == QualityDynamicManual
}

// Ratio returns the output/input ratio per axis of a fixed tier.
// Auto and dynamic tiers return 0 because their ratio is not fixed.
func (q Quality) Ratio() float64 {
	switch q {
	case QualityNativeAA:
		return 1.0
	case QualityUltraQuality:
		return 1.3
	case QualityQuality:
		return 1.5
	case QualityBalanced:
		return 1.7
	case QualityPerformance:
		return 2.0
	case QualityUltraPerformance:
		return 3.0
	default:
		return 0
	}
}

// ParseQuality returns the quality tier with the given name.
func ParseQuality(name string) (Quality, bool) {
	for q := QualityAuto; q <= QualityUltraPerformance; q++ {
		if q.String() == name {
			return q, true
		}
	}
	return QualityAuto, false
}
