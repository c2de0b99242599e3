package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"anoma.net/arm"
	"anoma.net/arm/logx"
)

// RequestIDHeader is the metadata key carrying a caller-chosen request id.
const RequestIDHeader = "x-request-id"

type requestIDKey struct{}

// RequestID returns the id LoggingInterceptor assigned to ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(RequestIDHeader); len(v) > 0 && v[0] != "" {
		return v[0]
	}
	return ""
}

// LoggingInterceptor tags each call with a request id (the caller's
// x-request-id or a fresh UUID) and logs method, outcome and latency. Request
// arguments are never logged.
func LoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	rid := incomingRequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey{}, rid)

	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		e := fromStatus(err)
		var kind arm.Kind
		if ae, ok := e.(*arm.Error); ok {
			kind = ae.Kind
		}
		logx.Warn("RPC", info.FullMethod, " request=", rid, " kind=", kind, " rule=", arm.RuleID(e), " field=", arm.FieldOf(e), " took=", elapsed)
		return resp, err
	}
	logx.Info("RPC", info.FullMethod, " request=", rid, " ok took=", elapsed)
	return resp, nil
}
