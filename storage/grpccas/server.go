package grpccas

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
)

// Server serves an archive. Store admits only what storage.Check accepts,
// so a peer cannot fill the archive with arbitrary blobs.
type Server struct {
	UnimplementedArchiveServer
	Archive *storage.Archive
}

func (s *Server) archive() (*storage.Archive, error) {
	if s == nil || s.Archive == nil || s.Archive.CAS == nil {
		return nil, status.Error(codes.FailedPrecondition, "no archive configured")
	}
	return s.Archive, nil
}

func (s *Server) Store(_ context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	a, err := s.archive()
	if err != nil {
		return nil, err
	}
	id, err := a.StoreEncoded(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(id.String()), nil
}

func (s *Server) Load(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	a, err := s.archive()
	if err != nil {
		return nil, err
	}
	id, err := cidutil.Parse(in.GetValue())
	if err != nil {
		return nil, toStatus(storage.ErrInvalidCID)
	}
	b, err := a.CAS.Get(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Has(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	a, err := s.archive()
	if err != nil {
		return nil, err
	}
	id, err := cidutil.Parse(in.GetValue())
	if err != nil {
		return nil, toStatus(storage.ErrInvalidCID)
	}
	return wrapperspb.Bool(a.Has(id)), nil
}
