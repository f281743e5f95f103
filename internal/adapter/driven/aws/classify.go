package aws

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"

	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// AWS API error codes grouped by the failure kind they represent. The same
// taxonomy covers Cost Explorer, EC2, RDS and STS.
var (
	unauthenticatedCodes = map[string]bool{
		"UnrecognizedClientException": true,
		"InvalidClientTokenId":        true,
		"ExpiredToken":                true,
		"ExpiredTokenException":       true,
		"SignatureDoesNotMatch":       true,
		"MissingAuthenticationToken":  true,
		"IncompleteSignature":         true,
		"AuthFailure":                 true,
	}
	unauthorizedCodes = map[string]bool{
		"AccessDenied":          true,
		"AccessDeniedException": true,
		"UnauthorizedOperation": true,
		"OptInRequired":         true,
	}
	retryableCodes = map[string]bool{
		"Throttling":                  true,
		"ThrottlingException":         true,
		"RequestLimitExceeded":        true,
		"TooManyRequestsException":    true,
		"LimitExceededException":      true,
		"ServiceUnavailable":          true,
		"ServiceUnavailableException": true,
		"InternalError":               true,
		"InternalFailure":             true,
		"RequestTimeout":              true,
	}
)

// classify maps an upstream SDK error onto the engine's error taxonomy so
// callers can tell credential problems from transient faults. Errors that
// already carry a kind pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}

	// A caller hanging up is not an upstream fault.
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.E(types.KindUpstreamUnavailable, op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case unauthenticatedCodes[code]:
			return types.E(types.KindUnauthenticated, op, err)
		case unauthorizedCodes[code]:
			return types.E(types.KindUnauthorized, op, err)
		case retryableCodes[code]:
			return types.E(types.KindUpstreamUnavailable, op, err)
		case code == "ValidationException":
			return types.E(types.KindInvalidWindow, op, err)
		case code == "DataUnavailableException":
			// Cost Explorer's way of saying the account is too young to
			// have enough history.
			return types.E(types.KindInsufficientHistory, op, err)
		}
		return types.E(types.KindUnknown, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return types.E(types.KindUpstreamUnavailable, op, err)
	}

	return types.E(types.KindUnknown, op, err)
}
