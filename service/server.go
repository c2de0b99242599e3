package service

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
	"anoma.net/arm/bridge"
	"anoma.net/arm/compliance"
	"anoma.net/arm/curve"
	"anoma.net/arm/delta"
	"anoma.net/arm/encryption"
	"anoma.net/arm/logic"
	"anoma.net/arm/logx"
	"anoma.net/arm/proving"
	"anoma.net/arm/storage"
	"anoma.net/arm/transaction"
)

// Server exposes the engine operations over the Arm gRPC service.
type Server struct {
	UnimplementedArmServer

	// Prover backs ProveCompliance. Required for that RPC only.
	Prover proving.Prover
	// Verifier, when set, checks finalized transactions before they are
	// archived. A transaction that fails is still returned but not archived.
	Verifier proving.Verifier
	// Archive, when set, stores every finalized transaction.
	Archive *storage.Archive
	// Rand is the randomness source for key generation. Nil uses crypto/rand.
	Rand io.Reader
}

func argPath(i int) string { return fmt.Sprintf("args[%d]", i) }

func unpack(in *structpb.ListValue, n int) ([]*structpb.Value, error) {
	vals := in.GetValues()
	if len(vals) != n {
		return nil, arm.DecodeError("ARM-DEC-120", "args", fmt.Sprintf("expected %d arguments, got %d", n, len(vals)))
	}
	return vals, nil
}

func (s *Server) GenerateKeypair(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	if _, err := unpack(in, 0); err != nil {
		return nil, toStatus(err)
	}
	kp, err := curve.GenerateKeypair(s.Rand)
	if err != nil {
		return nil, toStatus(err)
	}
	return bridge.EncodeKeypair(kp), nil
}

func (s *Server) ComplianceInstance(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 1)
	if err != nil {
		return nil, toStatus(err)
	}
	u, err := bridge.DecodeComplianceUnit(args[0])
	if err != nil {
		return nil, toStatus(err)
	}
	inst, err := compliance.GetInstance(u)
	if err != nil {
		return nil, toStatus(arm.WithField(err, "compliance_unit.instance"))
	}
	return bridge.EncodeComplianceInstance(inst), nil
}

func (s *Server) Encrypt(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 3)
	if err != nil {
		return nil, toStatus(err)
	}
	payload, err := bridge.DecodeBytes(args[0], argPath(0))
	if err != nil {
		return nil, toStatus(err)
	}
	kp, err := bridge.DecodeKeypair(args[1])
	if err != nil {
		return nil, toStatus(err)
	}
	nonce, err := bridge.DecodeBytes(args[2], argPath(2))
	if err != nil {
		return nil, toStatus(err)
	}
	ct, err := encryption.EncryptWithKeypair(payload, kp, nonce)
	if err != nil {
		return nil, toStatus(err)
	}
	return bridge.EncodeCiphertext(ct), nil
}

// Decrypt returns null when the ciphertext does not open under the keypair.
func (s *Server) Decrypt(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 2)
	if err != nil {
		return nil, toStatus(err)
	}
	ct, err := bridge.DecodeBytes(args[0], argPath(0))
	if err != nil {
		return nil, toStatus(err)
	}
	kp, err := bridge.DecodeKeypair(args[1])
	if err != nil {
		return nil, toStatus(err)
	}
	pt, ok := encryption.Decrypt(ct, kp.Secret)
	if !ok {
		return structpb.NewNullValue(), nil
	}
	if pt == nil {
		pt = []byte{}
	}
	return bridge.EncodeOptionalBytes(pt), nil
}

// ProveCompliance proves the decoded witness and wipes it afterwards.
func (s *Server) ProveCompliance(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 1)
	if err != nil {
		return nil, toStatus(err)
	}
	if s.Prover == nil {
		return nil, toStatus(arm.BackendFailure("ARM-BCK-030", "no proving backend configured", nil))
	}
	w, err := bridge.DecodeComplianceWitness(args[0])
	if err != nil {
		return nil, toStatus(err)
	}
	defer w.Zeroize()
	u, err := compliance.Create(&w, s.Prover)
	if err != nil {
		return nil, toStatus(err)
	}
	return bridge.EncodeComplianceUnit(u), nil
}

func (s *Server) ConvertLogicVerifier(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 1)
	if err != nil {
		return nil, toStatus(err)
	}
	lv, err := bridge.DecodeLogicVerifier(args[0])
	if err != nil {
		return nil, toStatus(err)
	}
	inputs, err := logic.Convert(lv)
	if err != nil {
		return nil, toStatus(arm.WithField(err, "logic_verifier"))
	}
	return bridge.EncodeLogicVerifierInputs(inputs), nil
}

func (s *Server) ProveDelta(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 2)
	if err != nil {
		return nil, toStatus(err)
	}
	w, err := bridge.DecodeDeltaWitness(args[0])
	if err != nil {
		return nil, toStatus(err)
	}
	msg, err := bridge.DecodeBytes(args[1], argPath(1))
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := delta.Prove(msg, w)
	if err != nil {
		return nil, toStatus(err)
	}
	return bridge.EncodeDeltaProof(p), nil
}

func (s *Server) FinalizeTransaction(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := unpack(in, 1)
	if err != nil {
		return nil, toStatus(err)
	}
	tx, err := bridge.DecodeTransaction(args[0])
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := transaction.GenerateDeltaProof(tx)
	if err != nil {
		return nil, toStatus(err)
	}
	s.archive(ctx, out)
	return bridge.EncodeTransaction(out), nil
}

// archive stores tx when an archive is configured. Failures are logged and
// never fail the RPC.
func (s *Server) archive(ctx context.Context, tx transaction.Transaction) {
	if s.Archive == nil {
		return
	}
	rid := RequestID(ctx)
	if s.Verifier != nil {
		if err := transaction.Verify(tx, s.Verifier); err != nil {
			logx.Warn("ARCHIVE", "request=", rid, " not archived: rule=", arm.RuleID(err), " field=", arm.FieldOf(err))
			return
		}
	}
	id, err := s.Archive.Store(tx)
	if err != nil {
		logx.Error("ARCHIVE", "request=", rid, " store failed: ", err)
		return
	}
	logx.Info("ARCHIVE", "request=", rid, " stored transaction ", id)
}
