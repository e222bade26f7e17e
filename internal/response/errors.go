package response

// ErrCode is a typed error code for consistent API error identification.
type ErrCode string

const (
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrConflict       ErrCode = "CONFLICT"
	ErrSwitchMismatch ErrCode = "SWITCH_MISMATCH"

	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUnreadableImage ErrCode = "UNREADABLE_IMAGE"

	ErrUnauthorized ErrCode = "UNAUTHORIZED"
	ErrInternal     ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrSwitchMismatch:
		return "The confirmed program does not match the pending switch."
	case ErrFileRequired:
		return "An image upload is required."
	case ErrFileTooLarge:
		return "The uploaded file is too large."
	case ErrUnreadableImage:
		return "Could not read QR code. Please try again."
	case ErrUnauthorized:
		return "Admin login required."
	case ErrInternal:
		return "Internal server error."
	default:
		return "Unexpected error."
	}
}
