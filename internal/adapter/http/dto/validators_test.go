package dto

import (
	"testing"

	"settlement-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username: "  alice  ",
		Password: "  pass1234  ",
		Name:     " Ops Desk ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
	assert.Equal(t, "Ops Desk", req.Name)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := SubmitBatchRequest{
		BatchHash:  "deadbeef",
		MerkleRoot: "cafebabe",
		Metadata:   "desk <script>alert('x')</script> export",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Metadata, "&lt;script&gt;")
	assert.NotContains(t, req.Metadata, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	url := "  https://example.com/webhook  "
	req := RegisterRequest{
		Username:   "bob",
		Password:   "password123",
		Name:       "Bob Desk",
		WebhookURL: &url,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "https://example.com/webhook", *req.WebhookURL)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := RegisterRequest{
		Username:   "carol",
		Password:   "password123",
		Name:       "Carol Desk",
		WebhookURL: nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.WebhookURL)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"T-001",
		"TRADE_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"T 001",       // space
		"T<001>",      // angle brackets
		"T;DROP",      // semicolon
		"",            // empty
		"hello world", // space
		"T\n001",      // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

// --- Mapping tests ---

func TestTradeDTO_ToTrade(t *testing.T) {
	dto := TradeDTO{
		TraderID:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		TradeID:    "T-001",
		Symbol:     "EURUSD",
		Side:       "SHORT",
		Size:       1000,
		EntryPrice: 108500,
		ExitPrice:  108100,
		PnL:        -400,
		Fee:        20,
		Timestamp:  1700000000,
	}

	trade := dto.ToTrade()
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", trade.TraderID.String())
	assert.Equal(t, domain.TradeSideShort, trade.Side)
	assert.Equal(t, int64(-400), trade.PnL)
}

func TestFromPayout_ExecutedAtOmittedWhenNil(t *testing.T) {
	p := &domain.PayoutRequest{Status: domain.PayoutStatusVerified}
	resp := FromPayout(p)
	assert.Nil(t, resp.ExecutedAt)
	assert.Equal(t, "VERIFIED", resp.Status)
}
