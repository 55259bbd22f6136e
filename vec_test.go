package upscale

import (
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Vec2
		want Vec2
	}{
		{"add", V2(1, 2).Add(V2(3, 4)), V2(4, 6)},
		{"mul", V2(1, -2).Mul(2), V2(2, -4)},
		{"scale", V2(2, 3).Scale(V2(4, 5)), V2(8, 15)},
		{"neg", V2(1, -2).Neg(), V2(-1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestVec2_Clamp(t *testing.T) {
	tests := []struct {
		v, want Vec2
	}{
		{V2(0.75, 0.75), V2(0.75, 0.75)},
		{V2(0.1, 2), V2(0.5, 1)},
		{V2(-1, 0.5), V2(0.5, 0.5)},
	}
	for _, tt := range tests {
		if got := tt.v.Clamp(MinDynamicScale, MaxDynamicScale); got != tt.want {
			t.Errorf("%v.Clamp() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVec2_Predicates(t *testing.T) {
	if !(Vec2{}).IsZero() || V2(0, 1).IsZero() {
		t.Error("IsZero() wrong")
	}
	if !V2(1, 2).IsFinite() || V2(math.NaN(), 0).IsFinite() || V2(0, math.Inf(-1)).IsFinite() {
		t.Error("IsFinite() wrong")
	}
	if !V2(1, 1).Approx(V2(1+1e-12, 1), 1e-9) || V2(1, 1).Approx(V2(1.1, 1), 1e-9) {
		t.Error("Approx() wrong")
	}
}
