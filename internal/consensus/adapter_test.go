package consensus

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/BitForge-Labs/accel_layer/internal/accel"
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
)

func testKey(t *testing.T, seed byte) *btcec.PrivateKey {
	t.Helper()
	var b [32]byte
	for i := range b {
		b[i] = seed ^ byte(i*3+1)
	}
	priv, _ := btcec.PrivKeyFromBytes(b[:])
	return priv
}

func schnorrCheck(t *testing.T, seed byte) SchnorrCheck {
	t.Helper()
	priv := testKey(t, seed)
	msg := sha256.Sum256([]byte{seed})
	sig, err := schnorr.Sign(priv, msg[:])
	if err != nil {
		t.Fatalf("schnorr.Sign: %v", err)
	}
	var check SchnorrCheck
	check.Message = msg
	copy(check.PubKey[:], schnorr.SerializePubKey(priv.PubKey()))
	copy(check.Signature[:], sig.Serialize())
	return check
}

func ecdsaCheck(t *testing.T, seed byte) ECDSACheck {
	t.Helper()
	priv := testKey(t, seed)
	msg := sha256.Sum256([]byte{seed, seed})
	sig := btcecdsa.Sign(priv, msg[:])
	var check ECDSACheck
	check.Message = msg
	copy(check.PubKey[:], priv.PubKey().SerializeCompressed())
	check.Signature = sig.Serialize()
	return check
}

func taggedHash(tag string, chunks ...[]byte) [32]byte {
	tagSum := sha256.Sum256([]byte(tag))
	buf := append([]byte(nil), tagSum[:]...)
	buf = append(buf, tagSum[:]...)
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return sha256.Sum256(buf)
}

func taprootCheck(t *testing.T, seed byte) TaprootCheck {
	t.Helper()
	priv := testKey(t, seed)
	internalKey := schnorr.SerializePubKey(priv.PubKey())
	tweakSum := taggedHash("TapTweak", internalKey)

	var tweak btcec.ModNScalar
	tweak.SetByteSlice(tweakSum[:])

	internal, err := schnorr.ParsePubKey(internalKey)
	if err != nil {
		t.Fatalf("parse internal key: %v", err)
	}
	var point, tweakPoint btcec.JacobianPoint
	internal.AsJacobian(&point)
	btcec.ScalarBaseMultNonConst(&tweak, &tweakPoint)
	btcec.AddNonConst(&point, &tweakPoint, &point)
	point.ToAffine()

	var check TaprootCheck
	copy(check.InternalKey[:], internalKey)
	copy(check.OutputKey[:], schnorr.SerializePubKey(btcec.NewPublicKey(&point.X, &point.Y)))
	check.ParityOdd = point.Y.IsOdd()
	return check
}

func doubleSHA256(left, right [32]byte) [32]byte {
	buf := append(append([]byte(nil), left[:]...), right[:]...)
	first := sha256.Sum256(buf)
	return sha256.Sum256(first[:])
}

// merkleProof builds a depth-2 proof for leaf index 0 and returns it with its
// root.
func merkleProof(t *testing.T) MerkleProof {
	t.Helper()
	leaf := sha256.Sum256([]byte("leaf"))
	sib0 := sha256.Sum256([]byte("sibling-0"))
	sib1 := sha256.Sum256([]byte("sibling-1"))
	level1 := doubleSHA256(leaf, sib0)
	root := doubleSHA256(level1, sib1)
	return MerkleProof{
		Leaf:     leaf,
		Root:     root,
		Index:    0,
		Siblings: [][32]byte{sib0, sib1},
	}
}

func validTransaction(t *testing.T) Transaction {
	t.Helper()
	return Transaction{
		ID:            "tx-valid",
		SchnorrChecks: []SchnorrCheck{schnorrCheck(t, 1), schnorrCheck(t, 2)},
		ECDSAChecks:   []ECDSACheck{ecdsaCheck(t, 3)},
		TaprootChecks: []TaprootCheck{taprootCheck(t, 4)},
		ScriptChecks: []ScriptCheck{
			// OP_1 OP_1 OP_EQUAL
			{SigHash: sha256.Sum256([]byte("sighash")), Script: []byte{0x51, 0x51, 0x87}},
		},
	}
}

// backendMatrix pins capability snapshots covering every optimizer family.
func backendMatrix() map[string]hardware.Capabilities {
	return map[string]hardware.Capabilities{
		"generic bare x86_64": {
			Architecture: hardware.ArchX86_64,
			Vendor:       hardware.VendorOther,
			CoreCount:    2, ThreadCount: 2,
		},
		"intel sha-ni": {
			Architecture:     hardware.ArchX86_64,
			Vendor:           hardware.VendorIntel,
			CoreCount:        8, ThreadCount: 16,
			VectorExtensions: []string{"AVX2", "AVX512F"},
			CryptoExtensions: []string{"SHA", "AESNI"},
		},
		"amd zen": {
			Architecture:     hardware.ArchX86_64,
			Vendor:           hardware.VendorAMD,
			CoreCount:        16, ThreadCount: 32,
			VectorExtensions: []string{"AVX2"},
			CryptoExtensions: []string{"SHA"},
			Topology:         "zen-ccx",
		},
		"arm neon": {
			Architecture:     hardware.ArchAArch64,
			Vendor:           hardware.VendorARM,
			CoreCount:        8, ThreadCount: 8,
			VectorExtensions: []string{"NEON"},
		},
		"riscv vector": {
			Architecture:     hardware.ArchRISCV64,
			Vendor:           hardware.VendorRISCV,
			CoreCount:        4, ThreadCount: 4,
			VectorExtensions: []string{"RVV"},
		},
	}
}

// TestVerdictInvariantAcrossBackends drives the same transactions through
// every backend family and requires identical accept/reject decisions.
func TestVerdictInvariantAcrossBackends(t *testing.T) {
	valid := validTransaction(t)

	invalid := validTransaction(t)
	invalid.ID = "tx-invalid"
	invalid.SchnorrChecks[0].Signature[5] ^= 0xff

	for name, caps := range backendMatrix() {
		t.Run(name, func(t *testing.T) {
			engine := accel.New(accel.WithCapabilities(caps))
			validator := NewValidator(NewValidationContext(engine), nil)

			ok, err := validator.ValidateTransaction(valid)
			if err != nil {
				t.Fatalf("valid transaction errored: %v", err)
			}
			if !ok {
				t.Errorf("backend %s rejected a valid transaction", engine.Backend())
			}

			ok, err = validator.ValidateTransaction(invalid)
			if err != nil {
				t.Fatalf("invalid transaction errored: %v", err)
			}
			if ok {
				t.Errorf("backend %s accepted an invalid transaction", engine.Backend())
			}
		})
	}
}

func TestValidateBlock(t *testing.T) {
	engine := accel.New()
	validator := NewValidator(NewValidationContext(engine), nil)

	proof := merkleProof(t)
	block := Block{
		Height:       840000,
		MerkleRoot:   proof.Root,
		Transactions: []Transaction{validTransaction(t)},
		Proofs:       []MerkleProof{proof},
	}

	ok, err := validator.ValidateBlock(block)
	if err != nil {
		t.Fatalf("ValidateBlock: %v", err)
	}
	if !ok {
		t.Fatal("valid block rejected")
	}

	tampered := block
	tampered.MerkleRoot[0] ^= 0x01
	ok, err = validator.ValidateBlock(tampered)
	if err != nil {
		t.Fatalf("ValidateBlock tampered: %v", err)
	}
	if ok {
		t.Fatal("block with mismatched root accepted")
	}

	badProof := block
	badProof.Proofs = []MerkleProof{{
		Leaf:     proof.Leaf,
		Root:     proof.Root,
		Index:    1, // wrong orientation
		Siblings: proof.Siblings,
	}}
	ok, err = validator.ValidateBlock(badProof)
	if err != nil {
		t.Fatalf("ValidateBlock bad proof: %v", err)
	}
	if ok {
		t.Fatal("block with wrong proof orientation accepted")
	}
}

func TestValidateScriptRejection(t *testing.T) {
	engine := accel.New()
	validator := NewValidator(NewValidationContext(engine), nil)

	tx := Transaction{
		ID: "tx-script-fail",
		ScriptChecks: []ScriptCheck{
			// OP_1 OP_2 OP_EQUAL leaves false on the stack.
			{SigHash: sha256.Sum256([]byte("s")), Script: []byte{0x51, 0x52, 0x87}},
		},
	}
	ok, err := validator.ValidateTransaction(tx)
	if err != nil {
		t.Fatalf("ValidateTransaction: %v", err)
	}
	if ok {
		t.Fatal("failing script accepted")
	}

	// Tapscript routing: an OP_SUCCESS byte validates only under tapscript.
	base := Transaction{ID: "base", ScriptChecks: []ScriptCheck{{Script: []byte{0xbb}}}}
	tap := Transaction{ID: "tap", ScriptChecks: []ScriptCheck{{Script: []byte{0xbb}, Tapscript: true}}}

	if ok, _ := validator.ValidateTransaction(base); ok {
		t.Error("unknown opcode accepted in base mode")
	}
	if ok, err := validator.ValidateTransaction(tap); err != nil || !ok {
		t.Errorf("tapscript OP_SUCCESS: got ok=%v err=%v", ok, err)
	}
}

func TestValidatorWithoutContext(t *testing.T) {
	validator := NewValidator(nil, nil)
	if _, err := validator.ValidateTransaction(Transaction{}); err != ErrNoContext {
		t.Errorf("got %v, want ErrNoContext", err)
	}
	if _, err := validator.ValidateBlock(Block{}); err != ErrNoContext {
		t.Errorf("got %v, want ErrNoContext", err)
	}
}
