package signature_test

import (
	"testing"

	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
)

func Test_SignAndVerify(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("should be able to generate a keypair: %s", err)
	}

	digest := []byte("canonical-hash-of-a-transaction")

	sig := signature.Sign(digest, priv)
	if err := signature.VerifySignature(digest, sig, pub); err != nil {
		t.Fatalf("should verify a signature made with its own key: %s", err)
	}
}

func Test_FlippedByteFailsVerification(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("should be able to generate a keypair: %s", err)
	}

	digest := []byte("canonical-hash-of-a-transaction")
	sig := signature.Sign(digest, priv)

	flipped := append([]byte(nil), digest...)
	flipped[0] ^= 0xff
	if err := signature.VerifySignature(flipped, sig, pub); err == nil {
		t.Fatalf("flipping a digest byte should invalidate the signature")
	}

	badSig := append([]byte(nil), sig...)
	badSig[0] ^= 0xff
	if err := signature.VerifySignature(digest, badSig, pub); err == nil {
		t.Fatalf("flipping a signature byte should invalidate the signature")
	}
}

func Test_AddressDerivationIsDeterministic(t *testing.T) {
	pub, _, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("should be able to generate a keypair: %s", err)
	}

	addr1 := signature.AddressFromPublicKey(pub)
	addr2 := signature.AddressFromPublicKey(pub)

	if addr1 != addr2 {
		t.Fatalf("same public key should derive the same address: %s != %s", addr1, addr2)
	}

	if len(addr1) != 2+signature.AddressHexLen {
		t.Fatalf("address should be 0x plus %d hex chars, got %q", signature.AddressHexLen, addr1)
	}

	if err := signature.MatchesAddress(pub, addr1); err != nil {
		t.Fatalf("public key should match its own derived address: %s", err)
	}
}

func Test_MismatchedAddress(t *testing.T) {
	pub1, _, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("should be able to generate a keypair: %s", err)
	}

	pub2, _, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("should be able to generate a keypair: %s", err)
	}

	addr2 := signature.AddressFromPublicKey(pub2)

	if err := signature.MatchesAddress(pub1, addr2); err == nil {
		t.Fatalf("a different public key should not match another wallet's address")
	}
}
