package upscale

import (
	"errors"
	"fmt"
)

// Status is a 32-bit backend or validation result.
//
// Layout: category in bits 28-31, a category-specific code in bits 1-27 and
// a recoverable flag in bit 0. StatusSuccess and StatusNoUpscalerSet are the
// only non-failure values.
type Status uint32

// Category groups statuses by origin.
type Category uint8

const (
	// CategoryNone holds the two non-failure statuses.
	CategoryNone Category = iota

	// CategoryHardware means the device or a required extension is
	// unsupported. Never recoverable.
	CategoryHardware

	// CategorySoftware covers driver, OS, memory and internal errors.
	CategorySoftware

	// CategorySettings means a setting is invalid. Always recoverable.
	CategorySettings

	// CategoryGeneric is a best-guess classification.
	CategoryGeneric

	// CategoryUnknown is used when the backend gives no classification.
	CategoryUnknown Category = 0xF
)

const (
	categoryShift  = 28
	codeShift      = 1
	codeMask       = 1<<27 - 1
	recoverableBit = 1
	categoryMask   = 0xF
)

// MakeStatus assembles a Status from its fields. Codes beyond 27 bits are
// truncated.
func MakeStatus(c Category, code uint32, recoverable bool) Status {
	s := Status(uint32(c&categoryMask)<<categoryShift | (code&codeMask)<<codeShift)
	if recoverable {
		s |= recoverableBit
	}
	return s
}

// Known statuses.
var (
	StatusSuccess       = MakeStatus(CategoryNone, 0, false)
	StatusNoUpscalerSet = MakeStatus(CategoryNone, 1, true)

	StatusDeviceNotSupported           = MakeStatus(CategoryHardware, 1, false)
	StatusDeviceExtensionsNotSupported = MakeStatus(CategoryHardware, 2, false)

	StatusDriverOutOfDate             = MakeStatus(CategorySoftware, 1, false)
	StatusOperatingSystemNotSupported = MakeStatus(CategorySoftware, 2, false)
	StatusOutOfGPUMemory              = MakeStatus(CategorySoftware, 3, true)
	StatusOutOfMemory                 = MakeStatus(CategorySoftware, 4, true)
	StatusCriticalInternalError       = MakeStatus(CategorySoftware, 5, false)
	StatusLibraryNotLoaded            = MakeStatus(CategorySoftware, 6, false)

	StatusInvalidOutputResolution = MakeStatus(CategorySettings, 1, true)
	StatusInvalidInputResolution  = MakeStatus(CategorySettings, 2, true)
	StatusInvalidSharpness        = MakeStatus(CategorySettings, 3, true)
	StatusUnsupportedTechnique    = MakeStatus(CategorySettings, 4, true)
	StatusInvalidQuality          = MakeStatus(CategorySettings, 5, true)
	StatusInvalidDynamicScale     = MakeStatus(CategorySettings, 6, true)

	StatusGenericError = MakeStatus(CategoryGeneric, 1, false)

	StatusUnknownError = MakeStatus(CategoryUnknown, 1, false)
)

var statusNames = map[Status]string{
	StatusSuccess:                      "Success",
	StatusNoUpscalerSet:                "NoUpscalerSet",
	StatusDeviceNotSupported:           "DeviceNotSupported",
	StatusDeviceExtensionsNotSupported: "DeviceExtensionsNotSupported",
	StatusDriverOutOfDate:              "DriverOutOfDate",
	StatusOperatingSystemNotSupported:  "OperatingSystemNotSupported",
	StatusOutOfGPUMemory:               "OutOfGPUMemory",
	StatusOutOfMemory:                  "OutOfMemory",
	StatusCriticalInternalError:        "CriticalInternalError",
	StatusLibraryNotLoaded:             "LibraryNotLoaded",
	StatusInvalidOutputResolution:      "InvalidOutputResolution",
	StatusInvalidInputResolution:       "InvalidInputResolution",
	StatusInvalidSharpness:             "InvalidSharpness",
	StatusUnsupportedTechnique:         "UnsupportedTechnique",
	StatusInvalidQuality:               "InvalidQuality",
	StatusInvalidDynamicScale:          "InvalidDynamicScale",
	StatusGenericError:                 "GenericError",
	StatusUnknownError:                 "UnknownError",
}

// Category returns the status category.
func (s Status) Category() Category {
	return Category(uint32(s)>>categoryShift) & categoryMask
}

// Code returns the category-specific code.
func (s Status) Code() uint32 {
	return uint32(s) >> codeShift & codeMask
}

// Recoverable reports whether changing a setting can resolve the failure.
func (s Status) Recoverable() bool {
	return s&recoverableBit != 0
}

// Failed reports whether s is a failure. Only StatusSuccess and
// StatusNoUpscalerSet are not.
func (s Status) Failed() bool {
	return s != StatusSuccess && s != StatusNoUpscalerSet
}

// String returns the status name, or its fields for unnamed codes.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%s, code=%d, recoverable=%t)", s.Category(), s.Code(), s.Recoverable())
}

// Err returns nil for non-failure statuses and a *StatusError otherwise.
func (s Status) Err() error {
	if !s.Failed() {
		return nil
	}
	return &StatusError{Status: s}
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "None"
	case CategoryHardware:
		return "Hardware"
	case CategorySoftware:
		return "Software"
	case CategorySettings:
		return "Settings"
	case CategoryGeneric:
		return "Generic"
	case CategoryUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// StatusError carries a failing Status and its message.
type StatusError struct {
	Status  Status
	Message string
}

// NewStatusError returns a StatusError for s with the given message.
func NewStatusError(s Status, message string) *StatusError {
	return &StatusError{Status: s, Message: message}
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "upscale: " + e.Status.String()
	}
	return "upscale: " + e.Status.String() + ": " + e.Message
}

// Is matches another *StatusError with the same Status, so that
// errors.Is(err, StatusX.Err()) works.
func (e *StatusError) Is(target error) bool {
	var t *StatusError
	if !errors.As(target, &t) {
		return false
	}
	return t.Status == e.Status
}

// StatusOf extracts the Status from err. A nil error is StatusSuccess and
// errors that carry no status are StatusUnknownError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusUnknownError
}
