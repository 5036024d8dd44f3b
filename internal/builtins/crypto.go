package builtins

import (
	"crypto/sha512"
	"encoding/hex"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"

	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// registerCryptoFuncs wires the reference table's crypto family: a
// hash builtin and a signature-verification builtin, standing in for
// the host-provided cryptographic builtins a real deployment supplies.
func registerCryptoFuncs(t map[string]entry) {
	// sha256 is named for the builtin a real policy-evaluation runtime
	// exposes under that name; this reference implementation hashes
	// with SHA3-256 (golang.org/x/crypto/sha3) rather than pulling in
	// the stdlib sha256 package, since the point of this table is to
	// exercise the pack's own crypto dependency.
	registerGlobal(t, "sha256", 1, func(args []value.Value) (value.Value, error) {
		s, err := wantString(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		sum := sha3.Sum256([]byte(s))
		return value.String(hex.EncodeToString(sum[:])), nil
	})

	registerGlobal(t, "ed25519_verify", 3, func(args []value.Value) (value.Value, error) {
		pubHex, err := wantString(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		sigHex, err := wantString(args, 1)
		if err != nil {
			return value.Undefined(), err
		}
		msg, err := wantString(args, 2)
		if err != nil {
			return value.Undefined(), err
		}
		ok, err := ed25519Verify(pubHex, sigHex, msg)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Bool(ok), nil
	})
}

// ed25519Verify checks a detached signature against a message using
// edwards25519 point/scalar arithmetic directly, the same algorithm
// crypto/ed25519 implements internally, rather than depending on a
// ready-made Verify entry point.
func ed25519Verify(pubHex, sigHex, msg string) (bool, error) {
	pub, err := hex.DecodeString(pubHex)
	if err != nil || len(pub) != 32 {
		return false, vmerr.New(vmerr.BuiltinArgumentMismatch, "ed25519_verify: public key must be 32 hex-encoded bytes")
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != 64 {
		return false, vmerr.New(vmerr.BuiltinArgumentMismatch, "ed25519_verify: signature must be 64 hex-encoded bytes")
	}

	A, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return false, nil
	}
	R, err := new(edwards25519.Point).SetBytes(sig[:32])
	if err != nil {
		return false, nil
	}
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(sig[32:])
	if err != nil {
		return false, nil
	}

	h := sha512.New()
	h.Write(sig[:32])
	h.Write(pub)
	h.Write([]byte(msg))
	k, err := new(edwards25519.Scalar).SetUniformBytes(h.Sum(nil))
	if err != nil {
		return false, err
	}

	sB := new(edwards25519.Point).ScalarBaseMult(s)
	kA := new(edwards25519.Point).ScalarMult(k, A)
	check := new(edwards25519.Point).Subtract(sB, kA)

	return check.Equal(R) == 1, nil
}
