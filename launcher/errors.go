package launcher

import "github.com/kingrea/bootstrap/internal/failure"

// Error kinds returned by Run. Match them with errors.Is.
var (
	ErrMainClassNotSpecified   = failure.ErrMainClassNotSpecified
	ErrInvalidDirectory        = failure.ErrInvalidDirectory
	ErrScan                    = failure.ErrScan
	ErrPathConversion          = failure.ErrPathConversion
	ErrMainClassNotFound       = failure.ErrMainClassNotFound
	ErrMainMethodNotFound      = failure.ErrMainMethodNotFound
	ErrMainMethodNotAccessible = failure.ErrMainMethodNotAccessible
	ErrMainMethodNotStatic     = failure.ErrMainMethodNotStatic
	ErrMainMethodNotVoid       = failure.ErrMainMethodNotVoid
	ErrInvocationSetup         = failure.ErrInvocationSetup
)

// Error is the type of every launcher failure.
type Error = failure.Error
