package errors

import (
	"errors"
	"fmt"

	"github.com/cloudcopper/buildwatch/lib"
)

// Config errors
const ErrConfigMissing = lib.Error("config is missing")
const ErrConfigMalformed = lib.Error("config is malformed")
const ErrConfigInvalid = lib.Error("config is invalid")

// Cache errors
const ErrCacheUnreadable = lib.Error("cache is unreadable")
const ErrCacheWriteFailed = lib.Error("cache write failed")

// Dispatch errors
const ErrUnsupportedTargetKind = lib.Error("unsupported target kind")
const ErrDispatchTransport = lib.Error("dispatch transport failure")

// Platform errors
const ErrPlatform = lib.Error("platform error")

type ErrNonSuccessStatus struct {
	StatusCode int
	URL        string
}

func (e ErrNonSuccessStatus) Error() string {
	return fmt.Sprintf("non-success status %v from %v", e.StatusCode, e.URL)
}

var Is = errors.Is
var As = errors.As
