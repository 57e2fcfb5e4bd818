package accel

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Deterministic input builders shared by the benchmark suite and the
// equivalence corpus. Key material is derived from fixed seeds so vectors
// are reproducible across runs and machines.

func seededPrivKey(seed byte) *btcec.PrivateKey {
	var b [32]byte
	for i := range b {
		b[i] = seed ^ byte(i*7+1)
	}
	// A seed pattern can only fall outside the group order with negligible
	// probability; PrivKeyFromBytes reduces it in that case.
	priv, _ := btcec.PrivKeyFromBytes(b[:])
	return priv
}

func seededMessage(seed byte) [32]byte {
	var msg [32]byte
	for i := range msg {
		msg[i] = seed + byte(i*13)
	}
	return stdSHA256(msg[:])
}

// validSchnorrInput builds a verifying schnorr_verify wire input.
func validSchnorrInput(seed byte) []byte {
	priv := seededPrivKey(seed)
	msg := seededMessage(seed)
	sig, err := schnorr.Sign(priv, msg[:])
	if err != nil {
		panic(err)
	}
	in := make([]byte, 0, schnorrInputLen)
	in = append(in, msg[:]...)
	in = append(in, schnorr.SerializePubKey(priv.PubKey())...)
	in = append(in, sig.Serialize()...)
	return in
}

// validECDSAInput builds a verifying ecdsa_verify wire input.
func validECDSAInput(seed byte) []byte {
	priv := seededPrivKey(seed)
	msg := seededMessage(seed)
	sig := btcecdsa.Sign(priv, msg[:])
	in := make([]byte, 0, 32+33+72)
	in = append(in, msg[:]...)
	in = append(in, priv.PubKey().SerializeCompressed()...)
	in = append(in, sig.Serialize()...)
	return in
}

// validBatchInput builds a batch of n verifying schnorr triples.
func validBatchInput(n int) []byte {
	in := make([]byte, 4, 4+n*schnorrInputLen)
	binary.BigEndian.PutUint32(in, uint32(n))
	for i := 0; i < n; i++ {
		in = append(in, validSchnorrInput(byte(i+1))...)
	}
	return in
}

// validMerkleInput builds an inclusion proof of the given depth that commits
// leaf index 0 under a freshly computed root.
func validMerkleInput(depth int) []byte {
	leaf := seededMessage(0xA5)
	node := leaf
	siblings := make([]byte, 0, depth*32)
	buf := make([]byte, 64)
	for i := 0; i < depth; i++ {
		sibling := seededMessage(byte(0xB0 + i))
		siblings = append(siblings, sibling[:]...)
		copy(buf[:32], node[:])
		copy(buf[32:], sibling[:])
		node = stdSHA256(buf)
		node = stdSHA256(node[:])
	}
	in := make([]byte, 0, merkleMinInputLen+depth*32)
	in = append(in, leaf[:]...)
	in = append(in, node[:]...)
	in = append(in, 0, 0, 0, 0)
	in = append(in, siblings...)
	return in
}

// validTaprootInput builds a key-path (or script-path, when withRoot is set)
// taproot_verify wire input whose commitment holds.
func validTaprootInput(seed byte, withRoot bool) []byte {
	priv := seededPrivKey(seed)
	internalKey := schnorr.SerializePubKey(priv.PubKey())

	cfg := genericKernel()
	var merkleRoot []byte
	chunks := [][]byte{internalKey}
	if withRoot {
		root := seededMessage(seed ^ 0x3C)
		merkleRoot = root[:]
		chunks = append(chunks, merkleRoot)
	}
	tweakSum := taggedHash(cfg, "TapTweak", chunks...)

	var tweak btcec.ModNScalar
	tweak.SetByteSlice(tweakSum[:])

	internal, err := schnorr.ParsePubKey(internalKey)
	if err != nil {
		panic(err)
	}
	var point, tweakPoint btcec.JacobianPoint
	internal.AsJacobian(&point)
	btcec.ScalarBaseMultNonConst(&tweak, &tweakPoint)
	btcec.AddNonConst(&point, &tweakPoint, &point)
	point.ToAffine()
	outputKey := schnorr.SerializePubKey(btcec.NewPublicKey(&point.X, &point.Y))

	parity := byte(0)
	if point.Y.IsOdd() {
		parity = 1
	}

	in := make([]byte, 0, taprootScriptLen)
	in = append(in, internalKey...)
	in = append(in, outputKey...)
	in = append(in, parity)
	in = append(in, merkleRoot...)
	return in
}

// validScriptInput frames a script that leaves a truthy value on the stack.
func validScriptInput(scriptBody []byte) []byte {
	sigHash := seededMessage(0x55)
	in := make([]byte, 0, scriptHeaderLen+len(scriptBody))
	in = append(in, sigHash[:]...)
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(scriptBody)))
	in = append(in, lenBytes[:]...)
	in = append(in, scriptBody...)
	return in
}

// representativeInput returns a canonical valid input for op, used by the
// benchmark suite and as the base of the fuzz corpus.
func representativeInput(op Operation) []byte {
	switch op {
	case OpSchnorrVerify:
		return validSchnorrInput(1)
	case OpECDSAVerify:
		return validECDSAInput(2)
	case OpSHA256, OpSHA512:
		msg := seededMessage(3)
		return append(msg[:], msg[:]...)
	case OpBatchVerify:
		return validBatchInput(4)
	case OpScriptExecute, OpTapscriptExecute:
		// OP_1 OP_1 OP_EQUAL
		return validScriptInput([]byte{0x51, 0x51, 0x87})
	case OpMerkleVerify:
		return validMerkleInput(5)
	case OpTaprootVerify:
		return validTaprootInput(6, true)
	default:
		return nil
	}
}
