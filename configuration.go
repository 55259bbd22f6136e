package upscale

// Configuration is one snapshot of upscaler settings. The Upscaler keeps a
// desired configuration, mutated by the caller, and an active one that only
// changes through reconciliation.
type Configuration struct {
	Technique Technique
	Quality   Quality

	// OutputResolution is the final display resolution.
	OutputResolution Resolution

	// InputResolution is the render resolution. It is computed, except in
	// QualityDynamicManual where the caller may request one explicitly.
	InputResolution Resolution

	HDR bool

	// Sharpness lies in [0, 1]. Out-of-range values are clamped on commit.
	Sharpness float32

	// DynamicScale is the per-axis render scale for QualityDynamicManual.
	// The zero value means unset and behaves as (1, 1); other values are
	// clamped into [MinDynamicScale, MaxDynamicScale].
	DynamicScale Vec2
}

// DefaultConfiguration returns the baseline desired configuration: FSR2 at
// the Quality tier with a moderate sharpness.
func DefaultConfiguration() Configuration {
	return Configuration{
		Technique: TechniqueFSR2,
		Quality:   QualityQuality,
		Sharpness: 0.5,
	}
}

// EffectiveDynamicScale returns DynamicScale clamped into the valid domain,
// with the unset zero value mapped to full scale.
func (c Configuration) EffectiveDynamicScale() Vec2 {
	if c.DynamicScale.IsZero() {
		return Vec2{X: MaxDynamicScale, Y: MaxDynamicScale}
	}
	return c.DynamicScale.Clamp(MinDynamicScale, MaxDynamicScale)
}

// Disabled returns a copy of c with the technique turned off and the input
// resolution equal to the output resolution.
func (c Configuration) Disabled() Configuration {
	c.Technique = TechniqueDisabled
	c.InputResolution = c.OutputResolution
	return c
}
