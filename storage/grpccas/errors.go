package grpccas

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"anoma.net/arm/storage"
)

// statusCodes pairs each storage sentinel with its status code. Codes are
// shared, so the client tells sentinels apart by their text, which the
// status message always carries.
var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{storage.ErrNotFound, codes.NotFound},
	{storage.ErrInvalidCID, codes.InvalidArgument},
	{storage.ErrNotTransaction, codes.InvalidArgument},
	{storage.ErrNotFinalized, codes.FailedPrecondition},
	{storage.ErrCIDMismatch, codes.DataLoss},
	{storage.ErrImmutable, codes.AlreadyExists},
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return status.Error(sc.code, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus is the inverse of toStatus. Other errors pass through.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, sc := range statusCodes {
		if st.Code() != sc.code || !strings.Contains(st.Message(), sc.err.Error()) {
			continue
		}
		if st.Message() == sc.err.Error() {
			return sc.err
		}
		return &remoteError{sentinel: sc.err, msg: st.Message()}
	}
	return err
}

// remoteError keeps the server's message while matching its sentinel.
type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }
