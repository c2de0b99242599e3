package service

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
	"anoma.net/arm/storage"
)

func codeFor(kind arm.Kind) codes.Code {
	switch kind {
	case arm.KindDecode:
		return codes.InvalidArgument
	case arm.KindPrecondition:
		return codes.FailedPrecondition
	case arm.KindBackend:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// toStatus maps an engine error to a gRPC status. Structured errors carry
// their kind, rule and field in a status detail so the client can rebuild
// them.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *arm.Error
	if !errors.As(err, &e) {
		if storage.IsNotFound(err) {
			return status.Error(codes.NotFound, err.Error())
		}
		return status.Error(codes.Internal, err.Error())
	}
	st := status.New(codeFor(e.Kind), e.Error())
	detail, derr := structpb.NewStruct(map[string]interface{}{
		"kind":    string(e.Kind),
		"rule_id": e.RuleID,
		"field":   e.Field,
		"message": e.Message,
	})
	if derr != nil {
		return st.Err()
	}
	if withDetail, derr := st.WithDetails(detail); derr == nil {
		st = withDetail
	}
	return st.Err()
}

// fromStatus is the inverse of toStatus. Statuses without a detail map to an
// arm error of the kind their code implies.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		s, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		f := s.GetFields()
		return &arm.Error{
			Kind:    arm.Kind(f["kind"].GetStringValue()),
			RuleID:  f["rule_id"].GetStringValue(),
			Field:   f["field"].GetStringValue(),
			Message: f["message"].GetStringValue(),
			Cause:   err,
		}
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return arm.WrapError(arm.KindDecode, "", st.Message(), err)
	case codes.FailedPrecondition:
		return arm.WrapError(arm.KindPrecondition, "", st.Message(), err)
	case codes.Unavailable:
		return arm.WrapError(arm.KindBackend, "", st.Message(), err)
	case codes.NotFound:
		return storage.ErrNotFound
	default:
		return err
	}
}
