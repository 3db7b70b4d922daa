// Package delivery holds what the transports share: the mapping from service
// errors to client-facing codes.
package delivery

import (
	"errors"
	"net/http"

	dqErrors "github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/service"
	"google.golang.org/grpc/codes"
)

type Failure struct {
	Code       string
	Message    string
	GRPCCode   codes.Code
	HTTPStatus int
}

type failureKind struct {
	target     error
	code       string
	grpcCode   codes.Code
	httpStatus int
}

var failureKinds = []failureKind{
	{dqErrors.ErrInvalidQueue, "DQ001", codes.InvalidArgument, http.StatusBadRequest},
	{dqErrors.ErrPlayerNotFound, "DQ002", codes.NotFound, http.StatusNotFound},
	{dqErrors.ErrAlreadyInSession, "DQ003", codes.FailedPrecondition, http.StatusConflict},
	{dqErrors.ErrInternalInconsistency, "DQ004", codes.Internal, http.StatusInternalServerError},
	{dqErrors.ErrInReadyCheck, "DQ013", codes.FailedPrecondition, http.StatusConflict},
	{service.ErrPlayerIDRequired, "DQ005", codes.InvalidArgument, http.StatusBadRequest},
	{dqErrors.ErrSessionNotFound, "DQ006", codes.NotFound, http.StatusNotFound},
	{service.ErrSessionIDRequired, "DQ007", codes.InvalidArgument, http.StatusBadRequest},
	{service.ErrTokenEmpty, "DQ010", codes.Unauthenticated, http.StatusUnauthorized},
	{service.ErrTokenInvalid, "DQ010", codes.Unauthenticated, http.StatusUnauthorized},
	{service.ErrTokenInvalidClaims, "DQ010", codes.Unauthenticated, http.StatusUnauthorized},
	{service.ErrTokenRevoked, "DQ011", codes.Unauthenticated, http.StatusUnauthorized},
	{service.ErrRevocationUnavailable, "DQ012", codes.Unimplemented, http.StatusNotImplemented},
}

// MapError classifies err. It reports false for errors that are not part of
// the public error set; those should surface as generic internal errors.
func MapError(err error) (Failure, bool) {
	for _, k := range failureKinds {
		if errors.Is(err, k.target) {
			return Failure{
				Code:       k.code,
				Message:    err.Error(),
				GRPCCode:   k.grpcCode,
				HTTPStatus: k.httpStatus,
			}, true
		}
	}
	return Failure{}, false
}
