// Package wallet verifies Ethereum wallet signatures used to attach a
// cryptographic identity to a patient profile. The wallet signs an
// EIP-191 personal message client-side; this package recovers the signer
// address and compares it to the claimed one.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// OwnershipMessage returns the canonical message a patient's wallet must sign
// to prove control of its address. Both sides build the exact same string.
func OwnershipMessage(patientID string) string {
	return fmt.Sprintf("Verify wallet ownership for patient ID: %s", patientID)
}

// personalHash applies the EIP-191 "\x19Ethereum Signed Message" envelope
// before hashing, matching what browser wallets sign.
func personalHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// RecoverAddress returns the checksummed address that produced the given
// 65-byte signature over message. Wallets emit V as 27/28; go-ethereum wants
// 0/1, so both forms are accepted.
func RecoverAddress(message string, signature []byte) (string, error) {
	if len(signature) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(signature))
	}

	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(personalHash(message), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// SignOwnership produces the EIP-191 personal signature a wallet would emit
// over the ownership message for patientID. The server never holds patient
// keys; this exists for tests and local tooling.
func SignOwnership(patientID string, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(personalHash(OwnershipMessage(patientID)), key)
}

// VerifyOwnership checks that sigHex (a 0x-prefixed hex signature) over the
// ownership message for patientID was produced by claimedAddress.
func VerifyOwnership(patientID, claimedAddress, sigHex string) (bool, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	recovered, err := RecoverAddress(OwnershipMessage(patientID), sig)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered, claimedAddress), nil
}

// RecordHash returns the 0x-prefixed keccak256 hash of canonical record
// content. Stored alongside medical records so their integrity can later be
// anchored or checked externally.
func RecordHash(canonical []byte) string {
	return hexutil.Encode(crypto.Keccak256(canonical))
}
