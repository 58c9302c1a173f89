package errutil

type CoreStatus string

const (
	StatusUnknown             CoreStatus = "UNKNOWN"
	StatusBadRequest          CoreStatus = "BAD_REQUEST"
	StatusValidationFailed    CoreStatus = "VALIDATION_FAILED"
	StatusUnauthorized        CoreStatus = "UNAUTHORIZED"
	StatusForbidden           CoreStatus = "FORBIDDEN"
	StatusNotFound            CoreStatus = "NOT_FOUND"
	StatusConflict            CoreStatus = "CONFLICT"
	StatusUnprocessableEntity CoreStatus = "UNPROCESSABLE_ENTITY"
	StatusTooManyRequests     CoreStatus = "TOO_MANY_REQUESTS"
	StatusClientClosedRequest CoreStatus = "CLIENT_CLOSED_REQUEST"
	StatusInternal            CoreStatus = "INTERNAL"
	StatusNotImplemented      CoreStatus = "NOT_IMPLEMENTED"
	StatusUnavailable         CoreStatus = "UNAVAILABLE"
	StatusTimeout             CoreStatus = "TIMEOUT"
)

// ExitCode maps a status onto a process exit code for CLI callers.
func (s CoreStatus) ExitCode() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return 2
	case StatusNotFound:
		return 3
	case StatusConflict, StatusUnprocessableEntity:
		return 4
	case StatusUnavailable, StatusTimeout:
		return 5
	default:
		return 1
	}
}
