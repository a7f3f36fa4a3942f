package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode groups application errors by subsystem.
type ErrorCode int

const (
	// Common errors (1000-1999)
	ErrUnknown          ErrorCode = 1000
	ErrInvalidParam     ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrAlreadyExists    ErrorCode = 1003
	ErrPermissionDenied ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005
	ErrCanceled         ErrorCode = 1006
	ErrNotImplemented   ErrorCode = 1007
	ErrInternal         ErrorCode = 1008

	// Game errors (2000-2999)
	ErrGameNotFound     ErrorCode = 2000
	ErrGameCompleted    ErrorCode = 2001
	ErrGameNotOwned     ErrorCode = 2002
	ErrInsufficientGold ErrorCode = 2003
	ErrNoInsightTokens  ErrorCode = 2004
	ErrGameStateError   ErrorCode = 2005

	// Oracle errors (3000-3999)
	ErrOracleNotFound      ErrorCode = 3000
	ErrOracleDefeated      ErrorCode = 3001
	ErrOracleNotChallenged ErrorCode = 3002
	ErrPuzzleNotFound      ErrorCode = 3003
	ErrPuzzleExpired       ErrorCode = 3004
	ErrBattleNotStarted    ErrorCode = 3005
	ErrBattleFinished      ErrorCode = 3006
	ErrInvalidBattleAction ErrorCode = 3007

	// Transport errors (4000-4999)
	ErrWebSocketConnect ErrorCode = 4000
	ErrWebSocketSend    ErrorCode = 4001
	ErrWebSocketReceive ErrorCode = 4002
	ErrWebSocketClosed  ErrorCode = 4003
	ErrMessageFormat    ErrorCode = 4004

	// Database errors (5000-5999)
	ErrDatabaseConnect ErrorCode = 5000
	ErrDatabaseQuery   ErrorCode = 5001
	ErrDatabaseInsert  ErrorCode = 5002
	ErrDatabaseUpdate  ErrorCode = 5003
	ErrDatabaseDelete  ErrorCode = 5004
	ErrTransaction     ErrorCode = 5005
	ErrDataIntegrity   ErrorCode = 5006

	// Config errors (6000-6999)
	ErrConfigLoad     ErrorCode = 6000
	ErrConfigParse    ErrorCode = 6001
	ErrConfigValidate ErrorCode = 6002
	ErrConfigMissing  ErrorCode = 6003

	// Security errors (7000-7999)
	ErrAuthentication    ErrorCode = 7000
	ErrAuthorization     ErrorCode = 7001
	ErrTokenExpired      ErrorCode = 7002
	ErrTokenInvalid      ErrorCode = 7003
	ErrSessionExpired    ErrorCode = 7004
	ErrRateLimitExceeded ErrorCode = 7005
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:          "unknown error",
	ErrInvalidParam:     "invalid parameter",
	ErrNotFound:         "resource not found",
	ErrAlreadyExists:    "resource already exists",
	ErrPermissionDenied: "permission denied",
	ErrTimeout:          "operation timed out",
	ErrCanceled:         "operation canceled",
	ErrNotImplemented:   "not implemented",
	ErrInternal:         "internal error",

	ErrGameNotFound:     "game not found",
	ErrGameCompleted:    "game already completed",
	ErrGameNotOwned:     "game belongs to another player",
	ErrInsufficientGold: "not enough gold",
	ErrNoInsightTokens:  "no insight tokens available",
	ErrGameStateError:   "invalid game state",

	ErrOracleNotFound:      "oracle not found",
	ErrOracleDefeated:      "oracle already defeated",
	ErrOracleNotChallenged: "oracle has not been challenged",
	ErrPuzzleNotFound:      "no active puzzle",
	ErrPuzzleExpired:       "puzzle time limit expired",
	ErrBattleNotStarted:    "battle has not been started",
	ErrBattleFinished:      "battle already resolved",
	ErrInvalidBattleAction: "invalid battle action",

	ErrWebSocketConnect: "websocket connect failed",
	ErrWebSocketSend:    "websocket send failed",
	ErrWebSocketReceive: "websocket receive failed",
	ErrWebSocketClosed:  "websocket connection closed",
	ErrMessageFormat:    "malformed message",

	ErrDatabaseConnect: "database connect failed",
	ErrDatabaseQuery:   "database query failed",
	ErrDatabaseInsert:  "database insert failed",
	ErrDatabaseUpdate:  "database update failed",
	ErrDatabaseDelete:  "database delete failed",
	ErrTransaction:     "transaction failed",
	ErrDataIntegrity:   "data integrity violation",

	ErrConfigLoad:     "config load failed",
	ErrConfigParse:    "config parse failed",
	ErrConfigValidate: "config validation failed",
	ErrConfigMissing:  "config key missing",

	ErrAuthentication:    "authentication failed",
	ErrAuthorization:     "authorization failed",
	ErrTokenExpired:      "token expired",
	ErrTokenInvalid:      "invalid token",
	ErrSessionExpired:    "session expired",
	ErrRateLimitExceeded: "rate limit exceeded",
}

// AppError carries an error code, human message, and the wrapped cause.
type AppError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details"`
	Cause   error        `json:"-"`
	Stack   []StackFrame `json:"stack,omitempty"`
}

// StackFrame is a single captured call site.
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches additional detail text.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New creates an AppError for the given code.
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	err.captureStack(2)

	return err
}

// Newf creates an AppError with formatted details.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap converts err into an AppError, preserving an existing code.
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr := New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf wraps err with formatted details.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode extracts the error code, or ErrUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}

	return ErrUnknown
}

func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()

		if strings.Contains(frame.Function, "runtime.") ||
			strings.Contains(frame.Function, "Thirteen-Oracles-Of-Astraeum/internal/errors") {
			if !more {
				break
			}
			continue
		}

		e.Stack = append(e.Stack, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})

		if !more || len(e.Stack) >= 10 {
			break
		}
	}
}

// GetStack renders the captured stack for log output.
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus maps the code to an HTTP response status.
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrInvalidParam || e.Code == ErrAlreadyExists:
		return 400
	case e.Code == ErrNotFound || e.Code == ErrGameNotFound ||
		e.Code == ErrOracleNotFound || e.Code == ErrPuzzleNotFound:
		return 404
	case e.Code == ErrPermissionDenied || e.Code == ErrGameNotOwned:
		return 403
	case e.Code == ErrTimeout:
		return 408
	case e.Code >= 7000 && e.Code <= 7004:
		return 401
	case e.Code == ErrRateLimitExceeded:
		return 429
	case e.Code >= 2000 && e.Code <= 3999:
		return 400
	case e.Code >= 5000 && e.Code <= 5999:
		return 503
	default:
		return 500
	}
}

// IsRetryable reports whether the operation is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case ErrTimeout,
		ErrWebSocketConnect,
		ErrDatabaseConnect:
		return true
	default:
		return false
	}
}

// IsCritical reports whether the error should abort startup.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case ErrDatabaseConnect,
		ErrConfigLoad,
		ErrConfigMissing,
		ErrDataIntegrity:
		return true
	default:
		return false
	}
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
