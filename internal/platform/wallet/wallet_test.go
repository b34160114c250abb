package wallet

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func signOwnership(t *testing.T, patientID string) (address, sigHex string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sig, err := crypto.Sign(personalHash(OwnershipMessage(patientID)), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestVerifyOwnership(t *testing.T) {
	addr, sigHex := signOwnership(t, "patient-1")

	ok, err := VerifyOwnership("patient-1", addr, sigHex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected signature to verify")
	}
}

func TestVerifyOwnership_CaseInsensitiveAddress(t *testing.T) {
	addr, sigHex := signOwnership(t, "patient-1")

	ok, err := VerifyOwnership("patient-1", strings.ToLower(addr), sigHex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected lowercase address to verify")
	}
}

func TestVerifyOwnership_WrongPatient(t *testing.T) {
	addr, sigHex := signOwnership(t, "patient-1")

	ok, err := VerifyOwnership("patient-2", addr, sigHex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected signature over a different message to fail")
	}
}

func TestVerifyOwnership_MalformedSignature(t *testing.T) {
	if _, err := VerifyOwnership("patient-1", "0xabc", "not-hex"); err == nil {
		t.Error("expected error for non-hex signature")
	}
	if _, err := VerifyOwnership("patient-1", "0xabc", "0x1234"); err == nil {
		t.Error("expected error for short signature")
	}
}

func TestRecoverAddress_LegacyVValue(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	msg := OwnershipMessage("patient-1")
	sig, err := crypto.Sign(personalHash(msg), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	// Browser wallets emit V as 27/28 rather than 0/1.
	sig[64] += 27

	recovered, err := RecoverAddress(msg, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered != crypto.PubkeyToAddress(key.PublicKey).Hex() {
		t.Error("expected recovered address to match signer")
	}
}

func TestRecordHash_Deterministic(t *testing.T) {
	a := RecordHash([]byte(`{"diagnosis":"flu"}`))
	b := RecordHash([]byte(`{"diagnosis":"flu"}`))
	if a != b {
		t.Error("expected identical input to hash identically")
	}
	if !strings.HasPrefix(a, "0x") || len(a) != 66 {
		t.Errorf("expected 0x-prefixed 32-byte hash, got %s", a)
	}
}
