package grpc

import (
	"github.com/vogiaan1904/draftqueue/internal/delivery"
	pkgErrors "github.com/vogiaan1904/draftqueue/pkg/errors"
	"google.golang.org/grpc/codes"
)

func errMissingField(field string) error {
	return pkgErrors.NewGRPCError("DQ009", codes.InvalidArgument, "missing field "+field)
}

func (s *grpcService) mapGRPCError(err error) error {
	if f, ok := delivery.MapError(err); ok {
		return pkgErrors.NewGRPCError(f.Code, f.GRPCCode, f.Message)
	}
	return err
}
