package upscale

import (
	"errors"
	"fmt"
	"testing"
)

func TestMakeStatusLayout(t *testing.T) {
	s := MakeStatus(CategorySettings, 4, true)
	if uint32(s) != 0x30000009 {
		t.Errorf("MakeStatus() = %#x, want 0x30000009", uint32(s))
	}
	if s.Category() != CategorySettings || s.Code() != 4 || !s.Recoverable() {
		t.Errorf("fields = %s/%d/%t", s.Category(), s.Code(), s.Recoverable())
	}
	if s != StatusUnsupportedTechnique {
		t.Errorf("MakeStatus(Settings, 4, true) = %s, want UnsupportedTechnique", s)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status      Status
		category    Category
		failed      bool
		recoverable bool
	}{
		{StatusSuccess, CategoryNone, false, false},
		{StatusNoUpscalerSet, CategoryNone, false, true},
		{StatusDeviceNotSupported, CategoryHardware, true, false},
		{StatusDriverOutOfDate, CategorySoftware, true, false},
		{StatusOutOfGPUMemory, CategorySoftware, true, true},
		{StatusInvalidSharpness, CategorySettings, true, true},
		{StatusGenericError, CategoryGeneric, true, false},
		{StatusUnknownError, CategoryUnknown, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Category(); got != tt.category {
				t.Errorf("Category() = %s, want %s", got, tt.category)
			}
			if got := tt.status.Failed(); got != tt.failed {
				t.Errorf("Failed() = %t, want %t", got, tt.failed)
			}
			if got := tt.status.Recoverable(); got != tt.recoverable {
				t.Errorf("Recoverable() = %t, want %t", got, tt.recoverable)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusOutOfGPUMemory.String(); got != "OutOfGPUMemory" {
		t.Errorf("String() = %q, want OutOfGPUMemory", got)
	}
	if got := MakeStatus(CategoryHardware, 77, false).String(); got != "Status(Hardware, code=77, recoverable=false)" {
		t.Errorf("String() = %q", got)
	}
}

func TestStatusError(t *testing.T) {
	if StatusSuccess.Err() != nil || StatusNoUpscalerSet.Err() != nil {
		t.Error("Err() of a non-failure status is not nil")
	}

	err := fmt.Errorf("execute: %w", NewStatusError(StatusOutOfGPUMemory, "heap exhausted"))
	if !errors.Is(err, StatusOutOfGPUMemory.Err()) {
		t.Error("errors.Is() does not match the same status")
	}
	if errors.Is(err, StatusOutOfMemory.Err()) {
		t.Error("errors.Is() matched a different status")
	}
	if got := StatusOf(err); got != StatusOutOfGPUMemory {
		t.Errorf("StatusOf() = %s, want OutOfGPUMemory", got)
	}
	if got := StatusOf(errors.New("plain")); got != StatusUnknownError {
		t.Errorf("StatusOf(plain) = %s, want UnknownError", got)
	}
	if got := StatusOf(nil); got != StatusSuccess {
		t.Errorf("StatusOf(nil) = %s, want Success", got)
	}
	want := "upscale: OutOfGPUMemory: heap exhausted"
	if got := NewStatusError(StatusOutOfGPUMemory, "heap exhausted").Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
