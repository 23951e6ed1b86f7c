package http

import (
	"net/http"
	"strconv"
)

// Status is an HTTP response status code.
type Status int

// 1xx Informational
const (
	StatusContinue           Status = 100
	StatusSwitchingProtocols Status = 101
	StatusProcessing         Status = 102
)

// 2xx Success
const (
	StatusOK                          Status = 200
	StatusCreated                     Status = 201
	StatusAccepted                    Status = 202
	StatusNonAuthoritativeInformation Status = 203
	StatusNoContent                   Status = 204
	StatusResetContent                Status = 205
	StatusPartialContent              Status = 206
	StatusMultiStatus                 Status = 207
	StatusAlreadyReported             Status = 208
	StatusIMUsed                      Status = 226
)

// 3xx Redirection
const (
	StatusMultipleChoices   Status = 300
	StatusMovedPermanently  Status = 301
	StatusFound             Status = 302
	StatusSeeOther          Status = 303
	StatusNotModified       Status = 304
	StatusUseProxy          Status = 305
	StatusTemporaryRedirect Status = 307
	StatusPermanentRedirect Status = 308
)

// 4xx Client Error
const (
	StatusBadRequest                      Status = 400
	StatusUnauthorized                    Status = 401
	StatusPaymentRequired                 Status = 402
	StatusForbidden                       Status = 403
	StatusNotFound                        Status = 404
	StatusMethodNotAllowed                Status = 405
	StatusNotAcceptable                   Status = 406
	StatusProxyAuthRequired               Status = 407
	StatusRequestTimeout                  Status = 408
	StatusConflict                        Status = 409
	StatusGone                            Status = 410
	StatusLengthRequired                  Status = 411
	StatusPreconditionFailed              Status = 412
	StatusPayloadTooLarge                 Status = 413
	StatusRequestURITooLong               Status = 414
	StatusUnsupportedMediaType            Status = 415
	StatusRequestedRangeNotSatisfiable    Status = 416
	StatusExpectationFailed               Status = 417
	StatusTeapot                          Status = 418
	StatusMisdirectedRequest              Status = 421
	StatusUnprocessableEntity             Status = 422
	StatusLocked                          Status = 423
	StatusFailedDependency                Status = 424
	StatusUpgradeRequired                 Status = 426
	StatusPreconditionRequired            Status = 428
	StatusTooManyRequests                 Status = 429
	StatusRequestHeaderFieldsTooLarge     Status = 431
	StatusConnectionClosedWithoutResponse Status = 444
	StatusUnavailableForLegalReasons      Status = 451
	StatusClientClosedRequest             Status = 499
)

// 5xx Server Error
const (
	StatusInternalServerError           Status = 500
	StatusNotImplemented                Status = 501
	StatusBadGateway                    Status = 502
	StatusServiceUnavailable            Status = 503
	StatusGatewayTimeout                Status = 504
	StatusHTTPVersionNotSupported       Status = 505
	StatusVariantAlsoNegotiates         Status = 506
	StatusInsufficientStorage           Status = 507
	StatusLoopDetected                  Status = 508
	StatusNotExtended                   Status = 510
	StatusNetworkAuthenticationRequired Status = 511
	StatusNetworkConnectTimeoutError    Status = 599
)

// Band groups status codes by their leading digit.
type Band int

const (
	BandUnknown Band = iota
	BandInformational
	BandSuccess
	BandRedirection
	BandClientError
	BandServerError
)

func (b Band) String() string {
	switch b {
	case BandInformational:
		return "informational"
	case BandSuccess:
		return "success"
	case BandRedirection:
		return "redirection"
	case BandClientError:
		return "client error"
	case BandServerError:
		return "server error"
	default:
		return "unknown"
	}
}

// ParseStatus converts a raw code into a Status. Codes outside 100-599 are
// not recognized and report false.
func ParseStatus(code int) (Status, bool) {
	if code < 100 || code > 599 {
		return 0, false
	}
	return Status(code), true
}

// Code returns the numeric status code.
func (s Status) Code() int {
	return int(s)
}

// Band returns the class the status belongs to.
func (s Status) Band() Band {
	switch {
	case s >= 100 && s <= 199:
		return BandInformational
	case s >= 200 && s <= 299:
		return BandSuccess
	case s >= 300 && s <= 399:
		return BandRedirection
	case s >= 400 && s <= 499:
		return BandClientError
	case s >= 500 && s <= 599:
		return BandServerError
	default:
		return BandUnknown
	}
}

func (s Status) IsInformational() bool { return s.Band() == BandInformational }
func (s Status) IsSuccess() bool       { return s.Band() == BandSuccess }
func (s Status) IsRedirection() bool   { return s.Band() == BandRedirection }
func (s Status) IsClientError() bool   { return s.Band() == BandClientError }
func (s Status) IsServerError() bool   { return s.Band() == BandServerError }

func (s Status) String() string {
	if text := http.StatusText(int(s)); text != "" {
		return strconv.Itoa(int(s)) + " " + text
	}
	return strconv.Itoa(int(s))
}
