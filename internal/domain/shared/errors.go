package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable, language-neutral code of a domain error.
// Handlers translate kinds to HTTP statuses; surfaces pick the localized
// message. The set is closed: new kinds require a new constant here.
type ErrorKind string

const (
	KindNotFound                ErrorKind = "NOT_FOUND"
	KindForbidden               ErrorKind = "FORBIDDEN"
	KindValidation              ErrorKind = "VALIDATION_ERROR"
	KindInvalidStatusTransition ErrorKind = "INVALID_STATUS_TRANSITION"
	KindInsufficientStock       ErrorKind = "INSUFFICIENT_STOCK"
	KindInvalidProvider         ErrorKind = "INVALID_PROVIDER"
	KindProviderNotConfigured   ErrorKind = "PROVIDER_NOT_CONFIGURED"
	KindProviderError           ErrorKind = "PROVIDER_ERROR"
	KindProviderInitFailed      ErrorKind = "PROVIDER_INIT_FAILED"
	KindInvalidSignature        ErrorKind = "INVALID_SIGNATURE"
	KindMissingTracking         ErrorKind = "MISSING_TRACKING"
	KindNoShipperAvailable      ErrorKind = "NO_SHIPPER_AVAILABLE"
	KindAlreadyAssigned         ErrorKind = "ALREADY_ASSIGNED"
	KindConflict                ErrorKind = "CONFLICT"
	KindRateLimited             ErrorKind = "RATE_LIMITED"
	KindInternal                ErrorKind = "INTERNAL"
)

// httpStatusByKind maps each kind to the HTTP status handlers respond with.
var httpStatusByKind = map[ErrorKind]int{
	KindNotFound:                http.StatusNotFound,
	KindForbidden:               http.StatusForbidden,
	KindValidation:              http.StatusBadRequest,
	KindInvalidStatusTransition: http.StatusUnprocessableEntity,
	KindInsufficientStock:       http.StatusConflict,
	KindInvalidProvider:         http.StatusBadRequest,
	KindProviderNotConfigured:   http.StatusBadRequest,
	KindProviderError:           http.StatusBadGateway,
	KindProviderInitFailed:      http.StatusInternalServerError,
	KindInvalidSignature:        http.StatusUnauthorized,
	KindMissingTracking:         http.StatusBadGateway,
	KindNoShipperAvailable:      http.StatusConflict,
	KindAlreadyAssigned:         http.StatusConflict,
	KindConflict:                http.StatusConflict,
	KindRateLimited:             http.StatusTooManyRequests,
	KindInternal:                http.StatusInternalServerError,
}

// messageVIByKind holds the Vietnamese text shown on customer and shipper
// surfaces when the error carries no specific message.
var messageVIByKind = map[ErrorKind]string{
	KindNotFound:                "Không tìm thấy dữ liệu",
	KindForbidden:               "Bạn không có quyền thực hiện thao tác này",
	KindValidation:              "Dữ liệu không hợp lệ",
	KindInvalidStatusTransition: "Không thể chuyển trạng thái đơn hàng",
	KindInsufficientStock:       "Sản phẩm không đủ hàng",
	KindInvalidProvider:         "Đơn vị vận chuyển không hợp lệ",
	KindProviderNotConfigured:   "Đơn vị vận chuyển chưa được cấu hình",
	KindProviderError:           "Đơn vị vận chuyển đang gặp sự cố",
	KindProviderInitFailed:      "Không khởi tạo được đơn vị vận chuyển",
	KindInvalidSignature:        "Chữ ký không hợp lệ",
	KindMissingTracking:         "Thiếu mã vận đơn",
	KindNoShipperAvailable:      "Hiện không có shipper khả dụng",
	KindAlreadyAssigned:         "Đơn hàng đã được gán shipper",
	KindConflict:                "Dữ liệu đã thay đổi, vui lòng thử lại",
	KindRateLimited:             "Thao tác quá nhanh, vui lòng thử lại sau",
	KindInternal:                "Lỗi hệ thống",
}

// DomainError is the error type produced by the core. It carries a stable
// kind, an English message, and wraps the underlying cause if any.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

// HTTPStatus returns the HTTP status for this error's kind.
func (e *DomainError) HTTPStatus() int {
	if s, ok := httpStatusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// LocalizedMessage returns the Vietnamese message for customer/shipper
// surfaces, falling back to the English message.
func (e *DomainError) LocalizedMessage() string {
	if vi, ok := messageVIByKind[e.Kind]; ok {
		return vi
	}
	return e.Message
}

// NewError creates a DomainError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a DomainError wrapping an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Common constructors

func ErrNotFound(entity, id string) *DomainError {
	return NewError(KindNotFound, "%s %s not found", entity, id)
}

func ErrForbidden(action string) *DomainError {
	return NewError(KindForbidden, "actor may not %s", action)
}

func ErrValidation(field, reason string) *DomainError {
	return NewError(KindValidation, "%s: %s", field, reason)
}

func ErrInvalidTransition(entity, from, to string) *DomainError {
	return NewError(KindInvalidStatusTransition, "%s cannot move from %s to %s", entity, from, to)
}

// KindOf extracts the kind of an error chain, defaulting to KindInternal
// for plain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// AsDomainError returns the DomainError in the chain, or wraps the error as
// an internal one so callers always get a translatable shape.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return &DomainError{Kind: KindInternal, Message: "internal error", Err: err}
}
