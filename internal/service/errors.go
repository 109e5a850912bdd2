package service

import "errors"

// ErrValidation marks caller mistakes in the interactive API (incomplete
// comparison bounds, oversized periods). The HTTP layer maps it to 400;
// it is never silently defaulted away.
var ErrValidation = errors.New("validation error")

// ErrUnknownReportKind is returned for a report kind outside the supported
// set. Unknown period tokens fall back to the current month, unknown report
// kinds do not get a fallback.
var ErrUnknownReportKind = errors.New("unknown report kind")
