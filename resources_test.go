package upscale

import (
	"errors"
	"testing"
)

func provisioned(t *testing.T, hdr bool) (*Resources, *fakeAllocator, *fakeBackend, ResourceRequirements) {
	t.Helper()
	alloc := newFakeAllocator()
	b := newFakeBackend()
	r := NewResources(alloc, b)
	req := ResourceRequirements{
		Technique: TechniqueFSR2,
		Quality:   QualityUltraPerformance,
		HDR:       hdr,
		Render:    Res(1280, 720),
		Output:    Res(3840, 2160),
	}
	changed, err := r.Update(ResourceDirty{Technique: true}, req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !changed {
		t.Fatal("Update() changed = false on first provisioning")
	}
	r.ClearOutdated()
	return r, alloc, b, req
}

func TestResourcesProvision(t *testing.T) {
	r, alloc, b, _ := provisioned(t, false)

	tests := []struct {
		slot   Slot
		extent Resolution
	}{
		{SlotInputColor, Res(1280, 720)},
		{SlotDepth, Res(1280, 720)},
		{SlotMotionVectors, Res(1280, 720)},
		{SlotOutputColor, Res(3840, 2160)},
	}
	for _, tt := range tests {
		if got := r.Extent(tt.slot); got != tt.extent {
			t.Errorf("Extent(%s) = %s, want %s", tt.slot, got, tt.extent)
		}
		if r.Texture(tt.slot) == nil {
			t.Errorf("Texture(%s) = nil", tt.slot)
		}
		if b.buffers[tt.slot] != r.Texture(tt.slot).NativeHandle() {
			t.Errorf("backend buffer for %s = %d, want %d", tt.slot, b.buffers[tt.slot], r.Texture(tt.slot).NativeHandle())
		}
	}
	if r.Format(SlotInputColor) != ColorFormatSDR || r.Format(SlotDepth) != DepthFormat ||
		r.Format(SlotMotionVectors) != MotionVectorFormat || r.Format(SlotOutputColor) != ColorFormatSDR {
		t.Error("unexpected slot formats")
	}
	if alloc.created != 4 {
		t.Errorf("created = %d, want 4", alloc.created)
	}
}

func TestResourcesNoChange(t *testing.T) {
	r, alloc, _, req := provisioned(t, false)
	changed, err := r.Update(ResourceDirty{}, req)
	if err != nil || changed {
		t.Errorf("Update(clean) = %t, %v, want false, nil", changed, err)
	}
	if alloc.created != 4 || alloc.destroyed != 0 {
		t.Errorf("created/destroyed = %d/%d, want 4/0", alloc.created, alloc.destroyed)
	}
	if r.Outdated() {
		t.Error("Outdated() = true without changes")
	}
}

func TestResourcesHDRTouchesColorOnly(t *testing.T) {
	r, alloc, _, req := provisioned(t, false)
	depth := r.Texture(SlotDepth)
	motion := r.Texture(SlotMotionVectors)

	req.HDR = true
	if _, err := r.Update(ResourceDirty{HDR: true}, req); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if alloc.created != 6 {
		t.Errorf("created = %d, want 6", alloc.created)
	}
	if r.Texture(SlotDepth) != depth || r.Texture(SlotMotionVectors) != motion {
		t.Error("HDR change recreated depth or motion vectors")
	}
	if r.Format(SlotInputColor) != ColorFormatHDR || r.Format(SlotOutputColor) != ColorFormatHDR {
		t.Error("color slots not recreated in HDR format")
	}
	if !r.Outdated() {
		t.Error("Outdated() = false after recreation")
	}
}

func TestResourcesDynamicModeTouchesInputColor(t *testing.T) {
	r, alloc, _, req := provisioned(t, false)
	if _, err := r.Update(ResourceDirty{DynamicMode: true}, req); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if alloc.created != 5 || alloc.destroyed != 1 {
		t.Errorf("created/destroyed = %d/%d, want 5/1", alloc.created, alloc.destroyed)
	}
}

func TestResourcesReleaseBeforeCreate(t *testing.T) {
	r, alloc, _, req := provisioned(t, false)
	req.Render = Res(1920, 1080)
	if _, err := r.Update(ResourceDirty{Resolution: true}, req); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if alloc.overlap {
		t.Error("a slot held two buffers at once")
	}
	if len(alloc.live) != 4 {
		t.Errorf("live buffers = %d, want 4", len(alloc.live))
	}
}

func TestResourcesSnapshotMismatch(t *testing.T) {
	r, alloc, _, req := provisioned(t, false)
	req.Render = Res(1920, 1080)

	// No dirty flag, but the render size no longer matches.
	if _, err := r.Update(ResourceDirty{}, req); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if r.Extent(SlotInputColor) != req.Render {
		t.Errorf("Extent(InputColor) = %s, want %s", r.Extent(SlotInputColor), req.Render)
	}
	if alloc.created != 7 {
		t.Errorf("created = %d, want 7", alloc.created)
	}
}

func TestResourcesDisableReleasesAll(t *testing.T) {
	r, alloc, b, req := provisioned(t, false)
	req.Technique = TechniqueDisabled
	changed, err := r.Update(ResourceDirty{Technique: true}, req)
	if err != nil || !changed {
		t.Fatalf("Update(disabled) = %t, %v, want true, nil", changed, err)
	}
	if !r.Empty() || len(alloc.live) != 0 {
		t.Errorf("live buffers = %d after disable, want 0", len(alloc.live))
	}
	if len(b.buffers) != 0 {
		t.Errorf("backend still has %d registered buffers", len(b.buffers))
	}
	if !r.Outdated() {
		t.Error("Outdated() = false after release")
	}
}

func TestResourcesFailureReleasesAll(t *testing.T) {
	alloc := newFakeAllocator()
	alloc.fail = func(req TextureRequest) bool { return req.Slot == SlotOutputColor }
	r := NewResources(alloc, newFakeBackend())

	_, err := r.Update(ResourceDirty{Technique: true}, ResourceRequirements{
		Technique: TechniqueFSR2,
		Quality:   QualityQuality,
		Render:    Res(1280, 720),
		Output:    Res(1920, 1080),
	})
	if !errors.Is(err, errFakeOutOfMemory) {
		t.Fatalf("Update() error = %v, want %v", err, errFakeOutOfMemory)
	}
	if !r.Empty() || len(alloc.live) != 0 {
		t.Errorf("live buffers = %d after failure, want 0", len(alloc.live))
	}
}

func TestResourcesZeroExtent(t *testing.T) {
	r := NewResources(newFakeAllocator(), newFakeBackend())
	if _, err := r.ManageDepth(TechniqueFSR2, QualityQuality, Resolution{}); err == nil {
		t.Error("ManageDepth(zero extent) error = nil")
	}
}

func TestResourcesDisabledNoop(t *testing.T) {
	alloc := newFakeAllocator()
	r := NewResources(alloc, newFakeBackend())
	changed, err := r.Update(ResourceDirty{Resolution: true}, ResourceRequirements{Output: Res(1920, 1080)})
	if err != nil || changed {
		t.Errorf("Update(disabled, empty) = %t, %v, want false, nil", changed, err)
	}
	if alloc.created != 0 {
		t.Errorf("created = %d, want 0", alloc.created)
	}
}
