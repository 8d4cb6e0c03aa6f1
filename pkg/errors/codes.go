package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeDatabaseError      ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
)

// Short aliases used throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidRequest = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeUnavailable    = ErrCodeServiceUnavailable
	CodeTimeout        = ErrCodeTimeout
	CodeDatabaseError  = ErrCodeDatabaseError
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
)

// Report Module Error Codes
const (
	ErrCodeReportNotFound         ErrorCode = "RPT_001"
	ErrCodeReportInvalidPeriod    ErrorCode = "RPT_002"
	ErrCodeReportInsufficientData ErrorCode = "RPT_003"
	ErrCodeReportPersistFailed    ErrorCode = "RPT_004"
	ErrCodeArtifactNotFound       ErrorCode = "RPT_005"
)

// Analysis Provider Error Codes
const (
	ErrCodeProviderUnavailable   ErrorCode = "PRV_001"
	ErrCodeProviderCallFailed    ErrorCode = "PRV_002"
	ErrCodeProviderBadResponse   ErrorCode = "PRV_003"
	ErrCodeNoProviderAvailable   ErrorCode = "PRV_004"
	ErrCodeProviderNotRegistered ErrorCode = "PRV_005"
)

// Document Renderer Error Codes
const (
	ErrCodeRenderFailed         ErrorCode = "RND_001"
	ErrCodeRendererUnavailable  ErrorCode = "RND_002"
	ErrCodeNoRendererAvailable  ErrorCode = "RND_003"
	ErrCodeArtifactReadFailed   ErrorCode = "RND_004"
	ErrCodeArtifactDeleteFailed ErrorCode = "RND_005"
)

// Subject / Demographics Error Codes
const (
	ErrCodeSubjectNotFound      ErrorCode = "SUB_001"
	ErrCodeDemographicsNotFound ErrorCode = "SUB_002"
)

// Storage Error Codes
const (
	ErrCodeStorageWriteFailed ErrorCode = "STO_001"
	ErrCodeStorageReadFailed  ErrorCode = "STO_002"
	ErrCodeStorageKeyInvalid  ErrorCode = "STO_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeReportNotFound:         http.StatusNotFound,
	ErrCodeReportInvalidPeriod:    http.StatusBadRequest,
	ErrCodeReportInsufficientData: http.StatusBadRequest,
	ErrCodeReportPersistFailed:    http.StatusInternalServerError,
	ErrCodeArtifactNotFound:       http.StatusNotFound,

	ErrCodeProviderUnavailable:   http.StatusServiceUnavailable,
	ErrCodeProviderCallFailed:    http.StatusBadGateway,
	ErrCodeProviderBadResponse:   http.StatusBadGateway,
	ErrCodeNoProviderAvailable:   http.StatusServiceUnavailable,
	ErrCodeProviderNotRegistered: http.StatusInternalServerError,

	ErrCodeRenderFailed:         http.StatusInternalServerError,
	ErrCodeRendererUnavailable:  http.StatusServiceUnavailable,
	ErrCodeNoRendererAvailable:  http.StatusServiceUnavailable,
	ErrCodeArtifactReadFailed:   http.StatusInternalServerError,
	ErrCodeArtifactDeleteFailed: http.StatusInternalServerError,

	ErrCodeSubjectNotFound:      http.StatusNotFound,
	ErrCodeDemographicsNotFound: http.StatusNotFound,

	ErrCodeStorageWriteFailed: http.StatusInternalServerError,
	ErrCodeStorageReadFailed:  http.StatusInternalServerError,
	ErrCodeStorageKeyInvalid:  http.StatusBadRequest,
}

// HTTPStatus returns the HTTP status code associated with c, defaulting to
// 500 for codes without an explicit mapping.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := ErrorCodeHTTPStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
