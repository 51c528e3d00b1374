package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()
	secretKey := "my-secret-key"
	payload := "POST|/api/v1/batches|1708092000|abc123nonce|{\"trade_count\":120}"

	signature := svc.Sign(secretKey, payload)

	// Should be lowercase hex
	assert.Regexp(t, `^[0-9a-f]{64}$`, signature, "signature should be 64-char lowercase hex (SHA-256)")

	// Verify with correct key
	assert.True(t, svc.Verify(secretKey, payload, signature))
}

func TestHMACSignatureService_VerifyFails_WrongKey(t *testing.T) {
	svc := NewHMACSignatureService()
	payload := "test payload"

	signature := svc.Sign("correct-key", payload)
	assert.False(t, svc.Verify("wrong-key", payload, signature))
}

func TestHMACSignatureService_VerifyFails_WrongPayload(t *testing.T) {
	svc := NewHMACSignatureService()
	secretKey := "my-key"

	signature := svc.Sign(secretKey, "original payload")
	assert.False(t, svc.Verify(secretKey, "tampered payload", signature))
}

func TestHMACSignatureService_DeterministicSign(t *testing.T) {
	svc := NewHMACSignatureService()

	sig1 := svc.Sign("key", "data")
	sig2 := svc.Sign("key", "data")

	assert.Equal(t, sig1, sig2, "same key+payload should produce same signature")
}

func TestHMACSignatureService_BuildCanonicalString(t *testing.T) {
	svc := NewHMACSignatureService()

	result := svc.BuildCanonicalString("POST", "/api/v1/payouts", 1708092000, "abc123", `{"recipient":"acct-1"}`)

	expected := "POST|/api/v1/payouts|1708092000|abc123|{\"recipient\":\"acct-1\"}"
	assert.Equal(t, expected, result)
}

func TestHMACSignatureService_EmptyBody(t *testing.T) {
	svc := NewHMACSignatureService()

	result := svc.BuildCanonicalString("GET", "/api/v1/traders/x/nonce", 1708092000, "nonce1", "")
	expected := "GET|/api/v1/traders/x/nonce|1708092000|nonce1|"
	assert.Equal(t, expected, result)
}

func TestHMACSignatureService_BuildPayoutInstruction(t *testing.T) {
	svc := NewHMACSignatureService()
	traderID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	result := svc.BuildPayoutInstruction("SETTLE-PROD", traderID, "acct-777", "batch-abc", 12)

	expected := "PAYOUT|SETTLE-PROD|6ba7b810-9dad-11d1-80b4-00c04fd430c8|acct-777|batch-abc|12"
	assert.Equal(t, expected, result)
}

// Every field of the instruction is signature-relevant: changing any one of
// them must invalidate the signature.
func TestHMACSignatureService_InstructionFieldsBind(t *testing.T) {
	svc := NewHMACSignatureService()
	traderID := uuid.New()

	base := svc.BuildPayoutInstruction("SETTLE-PROD", traderID, "acct-777", "batch-abc", 5)
	sig := svc.Sign("secret", base)

	variants := []string{
		svc.BuildPayoutInstruction("SETTLE-STAGING", traderID, "acct-777", "batch-abc", 5),
		svc.BuildPayoutInstruction("SETTLE-PROD", uuid.New(), "acct-777", "batch-abc", 5),
		svc.BuildPayoutInstruction("SETTLE-PROD", traderID, "acct-999", "batch-abc", 5),
		svc.BuildPayoutInstruction("SETTLE-PROD", traderID, "acct-777", "batch-xyz", 5),
		svc.BuildPayoutInstruction("SETTLE-PROD", traderID, "acct-777", "batch-abc", 6),
	}
	for i, v := range variants {
		assert.False(t, svc.Verify("secret", v, sig), "variant %d should not verify", i)
	}
	assert.True(t, svc.Verify("secret", base, sig))
}
