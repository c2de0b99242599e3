package bridge

import (
	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
	"anoma.net/arm/compliance"
	"anoma.net/arm/curve"
	"anoma.net/arm/delta"
	"anoma.net/arm/encryption"
	"anoma.net/arm/journal"
	"anoma.net/arm/logic"
	"anoma.net/arm/merkle"
	"anoma.net/arm/proving"
	"anoma.net/arm/resource"
	"anoma.net/arm/transaction"
)

// Keypair

// EncodeKeypair encodes kp with its secret in the clear; callers own its secrecy.
func EncodeKeypair(kp curve.Keypair) *structpb.Value {
	return record(TagKeypair, map[string]*structpb.Value{
		"secret_key": bytesValue(kp.Secret.Serialize()),
		"public_key": bytesValue(kp.Public.SerializeCompressed()),
	})
}

// DecodeKeypair decodes a keypair. The secret must be a nonzero scalar and
// the public key a valid point; their agreement is not checked.
func DecodeKeypair(v *structpb.Value) (curve.Keypair, error) { return decodeKeypair(v, "keypair") }

func decodeKeypair(v *structpb.Value, path string) (curve.Keypair, error) {
	f, err := openRecord(v, path, TagKeypair)
	if err != nil {
		return curve.Keypair{}, err
	}
	sb, err := f.bytesN("secret_key", curve.ScalarSize)
	if err != nil {
		return curve.Keypair{}, err
	}
	secret, err := curve.ParseSecret(sb)
	if err != nil {
		return curve.Keypair{}, arm.WithField(err, join(path, "secret_key"))
	}
	pb, err := f.bytesN("public_key", curve.PointSize)
	if err != nil {
		return curve.Keypair{}, err
	}
	public, err := curve.ParsePoint(pb)
	if err != nil {
		return curve.Keypair{}, arm.WithField(err, join(path, "public_key"))
	}
	return curve.Keypair{Secret: secret, Public: public}, f.done()
}

// NullifierKey and NullifierKeyCommitment

// EncodeNullifierKey encodes k as a record with a single "inner" field.
func EncodeNullifierKey(k resource.NullifierKey) *structpb.Value {
	return record(TagNullifierKey, map[string]*structpb.Value{"inner": bytesValue(k[:])})
}

// DecodeNullifierKey decodes a 32-byte nullifier key.
func DecodeNullifierKey(v *structpb.Value) (resource.NullifierKey, error) {
	return decodeNullifierKey(v, "nullifier_key")
}

func decodeNullifierKey(v *structpb.Value, path string) (resource.NullifierKey, error) {
	f, err := openRecord(v, path, TagNullifierKey)
	if err != nil {
		return resource.NullifierKey{}, err
	}
	b, err := f.array32("inner")
	if err != nil {
		return resource.NullifierKey{}, err
	}
	return resource.NullifierKey(b), f.done()
}

// EncodeNullifierKeyCommitment encodes c like EncodeNullifierKey.
func EncodeNullifierKeyCommitment(c resource.NullifierKeyCommitment) *structpb.Value {
	return record(TagNullifierKeyCommitment, map[string]*structpb.Value{"inner": bytesValue(c[:])})
}

// DecodeNullifierKeyCommitment decodes a 32-byte commitment.
func DecodeNullifierKeyCommitment(v *structpb.Value) (resource.NullifierKeyCommitment, error) {
	return decodeNullifierKeyCommitment(v, "nullifier_key_commitment")
}

func decodeNullifierKeyCommitment(v *structpb.Value, path string) (resource.NullifierKeyCommitment, error) {
	f, err := openRecord(v, path, TagNullifierKeyCommitment)
	if err != nil {
		return resource.NullifierKeyCommitment{}, err
	}
	b, err := f.array32("inner")
	if err != nil {
		return resource.NullifierKeyCommitment{}, err
	}
	return resource.NullifierKeyCommitment(b), f.done()
}

// Resource

// EncodeResource encodes r as a "resource" record.
func EncodeResource(r resource.Resource) *structpb.Value {
	return record(TagResource, map[string]*structpb.Value{
		"logic_ref":     bytesValue(r.LogicRef[:]),
		"label_ref":     bytesValue(r.LabelRef[:]),
		"value_ref":     bytesValue(r.ValueRef[:]),
		"quantity":      structpb.NewStringValue(r.Quantity.Dec()),
		"is_ephemeral":  structpb.NewBoolValue(r.IsEphemeral),
		"nonce":         bytesValue(r.Nonce[:]),
		"nk_commitment": EncodeNullifierKeyCommitment(r.NkCommitment),
		"rand_seed":     bytesValue(r.RandSeed[:]),
	})
}

// DecodeResource decodes a "resource" record.
func DecodeResource(v *structpb.Value) (resource.Resource, error) { return decodeResource(v, "resource") }

func decodeResource(v *structpb.Value, path string) (resource.Resource, error) {
	var r resource.Resource
	f, err := openRecord(v, path, TagResource)
	if err != nil {
		return r, err
	}
	for _, d := range []struct {
		name string
		dst  *journal.Digest
	}{
		{"logic_ref", &r.LogicRef},
		{"label_ref", &r.LabelRef},
		{"value_ref", &r.ValueRef},
		{"nonce", &r.Nonce},
		{"rand_seed", &r.RandSeed},
	} {
		if *d.dst, err = f.array32(d.name); err != nil {
			return resource.Resource{}, err
		}
	}
	if r.Quantity, err = f.quantity("quantity"); err != nil {
		return resource.Resource{}, err
	}
	if r.IsEphemeral, err = f.boolean("is_ephemeral"); err != nil {
		return resource.Resource{}, err
	}
	sub, sp, err := f.sub("nk_commitment")
	if err != nil {
		return resource.Resource{}, err
	}
	if r.NkCommitment, err = decodeNullifierKeyCommitment(sub, sp); err != nil {
		return resource.Resource{}, err
	}
	return r, f.done()
}

// MerklePath

// EncodeMerklePath encodes p as a list of (sibling, is_right) nodes, leaf first.
func EncodeMerklePath(p merkle.Path) *structpb.Value {
	nodes := make([]*structpb.Value, len(p))
	for i, n := range p {
		nodes[i] = record(TagMerklePathNode, map[string]*structpb.Value{
			"sibling":  digestValue(n.Sibling),
			"is_right": structpb.NewBoolValue(n.IsRight),
		})
	}
	return record(TagMerklePath, map[string]*structpb.Value{"nodes": listValue(nodes)})
}

// DecodeMerklePath decodes a "merkle_path" record.
func DecodeMerklePath(v *structpb.Value) (merkle.Path, error) { return decodeMerklePath(v, "merkle_path") }

func decodeMerklePath(v *structpb.Value, path string) (merkle.Path, error) {
	f, err := openRecord(v, path, TagMerklePath)
	if err != nil {
		return nil, err
	}
	elems, lp, err := f.list("nodes")
	if err != nil {
		return nil, err
	}
	var out merkle.Path
	if len(elems) > 0 {
		out = make(merkle.Path, len(elems))
	}
	for i, e := range elems {
		nf, err := openRecord(e, index(lp, i), TagMerklePathNode)
		if err != nil {
			return nil, err
		}
		if out[i].Sibling, err = nf.digest("sibling"); err != nil {
			return nil, err
		}
		if out[i].IsRight, err = nf.boolean("is_right"); err != nil {
			return nil, err
		}
		if err := nf.done(); err != nil {
			return nil, err
		}
	}
	return out, f.done()
}

// ComplianceWitness

// EncodeComplianceWitness encodes w, including its secret fields.
func EncodeComplianceWitness(w *compliance.Witness) *structpb.Value {
	return record(TagComplianceWitness, map[string]*structpb.Value{
		"consumed_resource": EncodeResource(w.ConsumedResource),
		"merkle_path":       EncodeMerklePath(w.MerklePath),
		"ephemeral_root":    digestValue(w.EphemeralRoot),
		"nf_key":            EncodeNullifierKey(w.NfKey),
		"created_resource":  EncodeResource(w.CreatedResource),
		"rcv":               bytesValue(w.Rcv[:]),
	})
}

// DecodeComplianceWitness decodes a "compliance_witness" record.
func DecodeComplianceWitness(v *structpb.Value) (compliance.Witness, error) {
	return decodeComplianceWitness(v, "compliance_witness")
}

func decodeComplianceWitness(v *structpb.Value, path string) (compliance.Witness, error) {
	var w compliance.Witness
	f, err := openRecord(v, path, TagComplianceWitness)
	if err != nil {
		return w, err
	}
	sub, sp, err := f.sub("consumed_resource")
	if err != nil {
		return compliance.Witness{}, err
	}
	if w.ConsumedResource, err = decodeResource(sub, sp); err != nil {
		return compliance.Witness{}, err
	}
	if sub, sp, err = f.sub("merkle_path"); err != nil {
		return compliance.Witness{}, err
	}
	if w.MerklePath, err = decodeMerklePath(sub, sp); err != nil {
		return compliance.Witness{}, err
	}
	if w.EphemeralRoot, err = f.digest("ephemeral_root"); err != nil {
		return compliance.Witness{}, err
	}
	if sub, sp, err = f.sub("nf_key"); err != nil {
		return compliance.Witness{}, err
	}
	if w.NfKey, err = decodeNullifierKey(sub, sp); err != nil {
		return compliance.Witness{}, err
	}
	if sub, sp, err = f.sub("created_resource"); err != nil {
		return compliance.Witness{}, err
	}
	if w.CreatedResource, err = decodeResource(sub, sp); err != nil {
		return compliance.Witness{}, err
	}
	if w.Rcv, err = f.array32("rcv"); err != nil {
		return compliance.Witness{}, err
	}
	return w, f.done()
}

// ComplianceInstance

// EncodeComplianceInstance encodes i as a "compliance_instance" record.
func EncodeComplianceInstance(i compliance.Instance) *structpb.Value {
	return record(TagComplianceInstance, map[string]*structpb.Value{
		"consumed_nullifier":            digestValue(i.ConsumedNullifier),
		"consumed_logic_ref":            digestValue(i.ConsumedLogicRef),
		"consumed_commitment_tree_root": digestValue(i.ConsumedCommitmentTreeRoot),
		"created_commitment":            digestValue(i.CreatedCommitment),
		"created_logic_ref":             digestValue(i.CreatedLogicRef),
		"delta_x":                       digestValue(i.DeltaX),
		"delta_y":                       digestValue(i.DeltaY),
	})
}

// DecodeComplianceInstance decodes a "compliance_instance" record.
func DecodeComplianceInstance(v *structpb.Value) (compliance.Instance, error) {
	return decodeComplianceInstance(v, "compliance_instance")
}

func decodeComplianceInstance(v *structpb.Value, path string) (compliance.Instance, error) {
	var i compliance.Instance
	f, err := openRecord(v, path, TagComplianceInstance)
	if err != nil {
		return i, err
	}
	for _, d := range []struct {
		name string
		dst  *journal.Digest
	}{
		{"consumed_nullifier", &i.ConsumedNullifier},
		{"consumed_logic_ref", &i.ConsumedLogicRef},
		{"consumed_commitment_tree_root", &i.ConsumedCommitmentTreeRoot},
		{"created_commitment", &i.CreatedCommitment},
		{"created_logic_ref", &i.CreatedLogicRef},
		{"delta_x", &i.DeltaX},
		{"delta_y", &i.DeltaY},
	} {
		if *d.dst, err = f.digest(d.name); err != nil {
			return compliance.Instance{}, err
		}
	}
	return i, f.done()
}

// ComplianceUnit

// EncodeComplianceUnit encodes u as a "compliance_unit" record.
func EncodeComplianceUnit(u compliance.Unit) *structpb.Value {
	return record(TagComplianceUnit, map[string]*structpb.Value{
		"proof":    bytesValue(u.Proof),
		"instance": bytesValue(u.Instance),
	})
}

// DecodeComplianceUnit decodes a "compliance_unit" record.
func DecodeComplianceUnit(v *structpb.Value) (compliance.Unit, error) {
	return decodeComplianceUnit(v, "compliance_unit")
}

func decodeComplianceUnit(v *structpb.Value, path string) (compliance.Unit, error) {
	var u compliance.Unit
	f, err := openRecord(v, path, TagComplianceUnit)
	if err != nil {
		return u, err
	}
	if u.Proof, err = f.bytes("proof"); err != nil {
		return compliance.Unit{}, err
	}
	if u.Instance, err = f.bytes("instance"); err != nil {
		return compliance.Unit{}, err
	}
	return u, f.done()
}

// DeltaWitness, DeltaProof and the Delta sum

// EncodeDeltaWitness encodes the 32-byte signing key of w. A zero key is allowed.
func EncodeDeltaWitness(w delta.Witness) *structpb.Value {
	k := w.Bytes()
	return record(TagDeltaWitness, map[string]*structpb.Value{"signing_key": bytesValue(k[:])})
}

// DecodeDeltaWitness decodes a signing key below the group order, zero included.
func DecodeDeltaWitness(v *structpb.Value) (delta.Witness, error) {
	return decodeDeltaWitness(v, "delta_witness")
}

func decodeDeltaWitness(v *structpb.Value, path string) (delta.Witness, error) {
	f, err := openRecord(v, path, TagDeltaWitness)
	if err != nil {
		return delta.Witness{}, err
	}
	b, err := f.bytesN("signing_key", curve.ScalarSize)
	if err != nil {
		return delta.Witness{}, err
	}
	w, err := delta.NewWitness(b)
	if err != nil {
		return delta.Witness{}, arm.WithField(err, join(path, "signing_key"))
	}
	return w, f.done()
}

// EncodeDeltaProof encodes p as its signature and recovery id.
func EncodeDeltaProof(p delta.Proof) *structpb.Value {
	return record(TagDeltaProof, map[string]*structpb.Value{
		"signature":   bytesValue(p.Signature[:]),
		"recovery_id": structpb.NewNumberValue(float64(p.RecoveryID)),
	})
}

// DecodeDeltaProof decodes a signature whose recovery id is in [0, 3].
func DecodeDeltaProof(v *structpb.Value) (delta.Proof, error) { return decodeDeltaProof(v, "delta_proof") }

func decodeDeltaProof(v *structpb.Value, path string) (delta.Proof, error) {
	var p delta.Proof
	f, err := openRecord(v, path, TagDeltaProof)
	if err != nil {
		return p, err
	}
	sig, err := f.bytesN("signature", delta.SignatureSize)
	if err != nil {
		return delta.Proof{}, err
	}
	copy(p.Signature[:], sig)
	rid, err := f.u32("recovery_id")
	if err != nil {
		return delta.Proof{}, err
	}
	if rid > 3 {
		return delta.Proof{}, arm.DecodeError("ARM-DEC-108", join(path, "recovery_id"), "recovery id must be 0..3")
	}
	p.RecoveryID = byte(rid)
	return p, f.done()
}

// EncodeDelta encodes the active form of d. The record tag tells the forms
// apart.
func EncodeDelta(d transaction.Delta) *structpb.Value {
	switch d := d.(type) {
	case transaction.WitnessDelta:
		return EncodeDeltaWitness(d.Witness)
	case transaction.ProofDelta:
		return EncodeDeltaProof(d.Proof)
	default:
		return structpb.NewNullValue()
	}
}

// DecodeDelta decodes either delta record, dispatching on its tag.
func DecodeDelta(v *structpb.Value) (transaction.Delta, error) { return decodeDelta(v, "delta") }

func decodeDelta(v *structpb.Value, path string) (transaction.Delta, error) {
	if v.GetStructValue() == nil {
		return nil, arm.DecodeError("ARM-DEC-100", path, "expected a delta witness or delta proof struct")
	}
	switch Tag(v.GetStructValue().GetFields()[TagField].GetStringValue()) {
	case TagDeltaWitness:
		w, err := decodeDeltaWitness(v, path)
		if err != nil {
			return nil, err
		}
		return transaction.WitnessDelta{Witness: w}, nil
	case TagDeltaProof:
		p, err := decodeDeltaProof(v, path)
		if err != nil {
			return nil, err
		}
		return transaction.ProofDelta{Proof: p}, nil
	default:
		return nil, arm.DecodeError("ARM-DEC-101", join(path, TagField), "expected a delta witness or delta proof tag")
	}
}

// ExpirableBlob and AppData

// EncodeExpirableBlob encodes b as an "expirable_blob" record.
func EncodeExpirableBlob(b logic.ExpirableBlob) *structpb.Value {
	return record(TagExpirableBlob, map[string]*structpb.Value{
		"blob":               wordsValue(b.Blob),
		"deletion_criterion": structpb.NewNumberValue(float64(b.DeletionCriterion)),
	})
}

// DecodeExpirableBlob decodes an "expirable_blob" record. An empty blob decodes as nil.
func DecodeExpirableBlob(v *structpb.Value) (logic.ExpirableBlob, error) {
	return decodeExpirableBlob(v, "expirable_blob")
}

func decodeExpirableBlob(v *structpb.Value, path string) (logic.ExpirableBlob, error) {
	var b logic.ExpirableBlob
	f, err := openRecord(v, path, TagExpirableBlob)
	if err != nil {
		return b, err
	}
	if b.Blob, err = f.words("blob"); err != nil {
		return logic.ExpirableBlob{}, err
	}
	if b.DeletionCriterion, err = f.u32("deletion_criterion"); err != nil {
		return logic.ExpirableBlob{}, err
	}
	return b, f.done()
}

func blobsValue(bs []logic.ExpirableBlob) *structpb.Value {
	vals := make([]*structpb.Value, len(bs))
	for i, b := range bs {
		vals[i] = EncodeExpirableBlob(b)
	}
	return listValue(vals)
}

func (f *fields) blobs(name string) ([]logic.ExpirableBlob, error) {
	elems, lp, err := f.list(name)
	if err != nil || len(elems) == 0 {
		return nil, err
	}
	out := make([]logic.ExpirableBlob, len(elems))
	for i, e := range elems {
		if out[i], err = decodeExpirableBlob(e, index(lp, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeAppData encodes the four payload lists of a.
func EncodeAppData(a logic.AppData) *structpb.Value {
	return record(TagAppData, map[string]*structpb.Value{
		"resource_payload":    blobsValue(a.ResourcePayload),
		"discovery_payload":   blobsValue(a.DiscoveryPayload),
		"external_payload":    blobsValue(a.ExternalPayload),
		"application_payload": blobsValue(a.ApplicationPayload),
	})
}

// DecodeAppData decodes an "app_data" record.
func DecodeAppData(v *structpb.Value) (logic.AppData, error) { return decodeAppData(v, "app_data") }

func decodeAppData(v *structpb.Value, path string) (logic.AppData, error) {
	var a logic.AppData
	f, err := openRecord(v, path, TagAppData)
	if err != nil {
		return a, err
	}
	if a.ResourcePayload, err = f.blobs("resource_payload"); err != nil {
		return logic.AppData{}, err
	}
	if a.DiscoveryPayload, err = f.blobs("discovery_payload"); err != nil {
		return logic.AppData{}, err
	}
	if a.ExternalPayload, err = f.blobs("external_payload"); err != nil {
		return logic.AppData{}, err
	}
	if a.ApplicationPayload, err = f.blobs("application_payload"); err != nil {
		return logic.AppData{}, err
	}
	return a, f.done()
}

// LogicVerifier and LogicVerifierInputs

// EncodeLogicVerifier encodes lv as a "logic_verifier" record.
func EncodeLogicVerifier(lv logic.Verifier) *structpb.Value {
	return record(TagLogicVerifier, map[string]*structpb.Value{
		"proof":         bytesValue(lv.Proof),
		"instance":      bytesValue(lv.Instance),
		"verifying_key": wordsValue(lv.VerifyingKey),
	})
}

// DecodeLogicVerifier decodes a "logic_verifier" record.
func DecodeLogicVerifier(v *structpb.Value) (logic.Verifier, error) {
	return decodeLogicVerifier(v, "logic_verifier")
}

func decodeLogicVerifier(v *structpb.Value, path string) (logic.Verifier, error) {
	var lv logic.Verifier
	f, err := openRecord(v, path, TagLogicVerifier)
	if err != nil {
		return lv, err
	}
	if lv.Proof, err = f.bytes("proof"); err != nil {
		return logic.Verifier{}, err
	}
	if lv.Instance, err = f.bytes("instance"); err != nil {
		return logic.Verifier{}, err
	}
	w, err := f.words("verifying_key")
	if err != nil {
		return logic.Verifier{}, err
	}
	lv.VerifyingKey = proving.VerifyingKey(w)
	return lv, f.done()
}

// EncodeLogicVerifierInputs encodes in as a "logic_verifier_inputs" record.
func EncodeLogicVerifierInputs(in logic.VerifierInputs) *structpb.Value {
	return record(TagLogicVerifierInputs, map[string]*structpb.Value{
		"tag":           digestValue(in.Tag),
		"verifying_key": wordsValue(in.VerifyingKey),
		"app_data":      EncodeAppData(in.AppData),
		"proof":         bytesValue(in.Proof),
	})
}

// DecodeLogicVerifierInputs decodes a "logic_verifier_inputs" record.
func DecodeLogicVerifierInputs(v *structpb.Value) (logic.VerifierInputs, error) {
	return decodeLogicVerifierInputs(v, "logic_verifier_inputs")
}

func decodeLogicVerifierInputs(v *structpb.Value, path string) (logic.VerifierInputs, error) {
	var in logic.VerifierInputs
	f, err := openRecord(v, path, TagLogicVerifierInputs)
	if err != nil {
		return in, err
	}
	if in.Tag, err = f.digest("tag"); err != nil {
		return logic.VerifierInputs{}, err
	}
	w, err := f.words("verifying_key")
	if err != nil {
		return logic.VerifierInputs{}, err
	}
	in.VerifyingKey = proving.VerifyingKey(w)
	sub, sp, err := f.sub("app_data")
	if err != nil {
		return logic.VerifierInputs{}, err
	}
	if in.AppData, err = decodeAppData(sub, sp); err != nil {
		return logic.VerifierInputs{}, err
	}
	if in.Proof, err = f.bytes("proof"); err != nil {
		return logic.VerifierInputs{}, err
	}
	return in, f.done()
}

// Action and Transaction

// EncodeAction encodes a as an "action" record.
func EncodeAction(a transaction.Action) *structpb.Value {
	units := make([]*structpb.Value, len(a.ComplianceUnits))
	for i, u := range a.ComplianceUnits {
		units[i] = EncodeComplianceUnit(u)
	}
	inputs := make([]*structpb.Value, len(a.LogicVerifierInputs))
	for i, in := range a.LogicVerifierInputs {
		inputs[i] = EncodeLogicVerifierInputs(in)
	}
	return record(TagAction, map[string]*structpb.Value{
		"compliance_units":      listValue(units),
		"logic_verifier_inputs": listValue(inputs),
	})
}

// DecodeAction decodes an "action" record.
func DecodeAction(v *structpb.Value) (transaction.Action, error) { return decodeAction(v, "action") }

func decodeAction(v *structpb.Value, path string) (transaction.Action, error) {
	var a transaction.Action
	f, err := openRecord(v, path, TagAction)
	if err != nil {
		return a, err
	}
	elems, lp, err := f.list("compliance_units")
	if err != nil {
		return transaction.Action{}, err
	}
	if len(elems) > 0 {
		a.ComplianceUnits = make([]compliance.Unit, len(elems))
	}
	for i, e := range elems {
		if a.ComplianceUnits[i], err = decodeComplianceUnit(e, index(lp, i)); err != nil {
			return transaction.Action{}, err
		}
	}
	if elems, lp, err = f.list("logic_verifier_inputs"); err != nil {
		return transaction.Action{}, err
	}
	if len(elems) > 0 {
		a.LogicVerifierInputs = make([]logic.VerifierInputs, len(elems))
	}
	for i, e := range elems {
		if a.LogicVerifierInputs[i], err = decodeLogicVerifierInputs(e, index(lp, i)); err != nil {
			return transaction.Action{}, err
		}
	}
	return a, f.done()
}

// EncodeTransaction encodes tx, with a null expected_balance when it is nil.
func EncodeTransaction(tx transaction.Transaction) *structpb.Value {
	actions := make([]*structpb.Value, len(tx.Actions))
	for i, a := range tx.Actions {
		actions[i] = EncodeAction(a)
	}
	return record(TagTransaction, map[string]*structpb.Value{
		"actions":          listValue(actions),
		"delta_proof":      EncodeDelta(tx.Delta),
		"expected_balance": optBytesValue(tx.ExpectedBalance),
	})
}

// DecodeTransaction decodes a "transaction" record.
func DecodeTransaction(v *structpb.Value) (transaction.Transaction, error) {
	return decodeTransaction(v, "transaction")
}

func decodeTransaction(v *structpb.Value, path string) (transaction.Transaction, error) {
	var tx transaction.Transaction
	f, err := openRecord(v, path, TagTransaction)
	if err != nil {
		return tx, err
	}
	elems, lp, err := f.list("actions")
	if err != nil {
		return transaction.Transaction{}, err
	}
	if len(elems) > 0 {
		tx.Actions = make([]transaction.Action, len(elems))
	}
	for i, e := range elems {
		if tx.Actions[i], err = decodeAction(e, index(lp, i)); err != nil {
			return transaction.Transaction{}, err
		}
	}
	sub, sp, err := f.sub("delta_proof")
	if err != nil {
		return transaction.Transaction{}, err
	}
	if tx.Delta, err = decodeDelta(sub, sp); err != nil {
		return transaction.Transaction{}, err
	}
	if tx.ExpectedBalance, err = f.optBytes("expected_balance"); err != nil {
		return transaction.Transaction{}, err
	}
	return tx, f.done()
}

// Ciphertext

// EncodeCiphertext encodes ct under a "cipher" field.
func EncodeCiphertext(ct encryption.Ciphertext) *structpb.Value {
	return record(TagCiphertext, map[string]*structpb.Value{"cipher": bytesValue(ct)})
}

// DecodeCiphertext decodes a "ciphertext" record without opening it.
func DecodeCiphertext(v *structpb.Value) (encryption.Ciphertext, error) {
	return decodeCiphertext(v, "ciphertext")
}

func decodeCiphertext(v *structpb.Value, path string) (encryption.Ciphertext, error) {
	f, err := openRecord(v, path, TagCiphertext)
	if err != nil {
		return nil, err
	}
	b, err := f.bytes("cipher")
	if err != nil {
		return nil, err
	}
	return encryption.Ciphertext(b), f.done()
}
