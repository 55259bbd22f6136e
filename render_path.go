package upscale

// RenderPath selects how the host's render pipeline hands buffers to the
// upscaler. The reconciliation core is the same for every path; only the
// host-side hooks in package render differ.
type RenderPath int

const (
	// RenderPathLegacy swaps the camera target before and after the main
	// color pass.
	RenderPathLegacy RenderPath = iota

	// RenderPathScriptableGraph imports the slot buffers into a render
	// graph and records the upscale as a graph pass.
	RenderPathScriptableGraph

	// RenderPathCompatibilityGraph records the upscale as a pass but keeps
	// render-target handles instead of imported graph resources.
	RenderPathCompatibilityGraph
)

// String returns the render path name.
func (p RenderPath) String() string {
	switch p {
	case RenderPathLegacy:
		return "Legacy"
	case RenderPathScriptableGraph:
		return "ScriptableGraph"
	case RenderPathCompatibilityGraph:
		return "CompatibilityGraph"
	default:
		return "Unknown"
	}
}

// UsesGraph reports whether the path records the upscale into a render
// graph rather than swapping targets around the color pass.
func (p RenderPath) UsesGraph() bool {
	return p == RenderPathScriptableGraph || p == RenderPathCompatibilityGraph
}
