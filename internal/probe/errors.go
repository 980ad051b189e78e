package probe

import "errors"

// Sentinel errors for probe runs.
var (
	ErrUnhealthy         = errors.New("service is not healthy")
	ErrContractViolation = errors.New("prediction contract violated")
	ErrInvalidConfig     = errors.New("invalid probe config")
)
