package freedompay

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleParams() map[string]string {
	return map[string]string{
		"pg_order_id":    "12345678",
		"pg_amount":      "3000",
		"pg_merchant_id": "552170",
		"pg_salt":        "abc123",
		"pg_description": "Order #12345678",
	}
}

func TestSign_MatchesDocumentedRecipe(t *testing.T) {
	params := map[string]string{
		"pg_order_id": "23",
		"pg_amount":   "25",
		"pg_salt":     "some random string",
	}

	raw := "init_payment.php;25;23;some random string;secret"
	sum := md5.Sum([]byte(raw))

	assert.Equal(t, hex.EncodeToString(sum[:]), Sign(params, "secret", "init_payment.php"))
}

func TestSign_IgnoresExistingSignature(t *testing.T) {
	params := sampleParams()
	want := Sign(params, "secret", "result")

	params[SignatureField] = "whatever"
	assert.Equal(t, want, Sign(params, "secret", "result"))
}

func TestSign_Deterministic(t *testing.T) {
	params := sampleParams()

	first := Sign(params, "secret", "check")
	second := Sign(params, "secret", "check")

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", first)
}

func TestSign_OrderIndependent(t *testing.T) {
	a := map[string]string{}
	a["pg_salt"] = "s"
	a["pg_amount"] = "100"
	a["pg_order_id"] = "1"

	b := map[string]string{}
	b["pg_order_id"] = "1"
	b["pg_amount"] = "100"
	b["pg_salt"] = "s"

	assert.Equal(t, Sign(a, "k", "check"), Sign(b, "k", "check"))
}

func TestVerify_RoundTrip(t *testing.T) {
	params := sampleParams()
	params[SignatureField] = Sign(params, "secret", "result")

	assert.True(t, Verify(params, "secret", "result"))
}

func TestVerify_RejectsMutation(t *testing.T) {
	params := sampleParams()
	params[SignatureField] = Sign(params, "secret", "result")

	for key := range sampleParams() {
		mutated := make(map[string]string, len(params))
		for k, v := range params {
			mutated[k] = v
		}
		mutated[key] = mutated[key] + "x"
		assert.False(t, Verify(mutated, "secret", "result"), "mutating %s must invalidate the signature", key)
	}
}

func TestVerify_WrongSecretOrScript(t *testing.T) {
	params := sampleParams()
	params[SignatureField] = Sign(params, "secret", "result")

	assert.False(t, Verify(params, "other", "result"))
	assert.False(t, Verify(params, "secret", "check"))
}

func TestVerify_MissingSignature(t *testing.T) {
	assert.False(t, Verify(sampleParams(), "secret", "result"))
}

func TestScriptName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://shop.example.com/payments/check", "check"},
		{"https://shop.example.com/payments/result/", "result"},
		{"https://shop.example.com/wallet/process-top-up?x=1", "process-top-up"},
		{"init_payment.php", "init_payment.php"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScriptName(tt.in), tt.in)
	}
}

func TestSignerReply_IsVerifiable(t *testing.T) {
	signer := NewSigner("secret")

	reply := signer.Reply(StatusRejected, "amount mismatch", "check")

	assert.Equal(t, StatusRejected, reply.Status)
	assert.NotEmpty(t, reply.Salt)
	assert.True(t, signer.Verify(reply.SignedParams(), "check"))
}

func TestReply_Marshal(t *testing.T) {
	reply := NewSigner("secret").Reply(StatusOK, "accepted", "result")

	body, err := reply.Marshal()

	assert.NoError(t, err)
	assert.Contains(t, string(body), "<response>")
	assert.Contains(t, string(body), "<pg_status>ok</pg_status>")
	assert.Contains(t, string(body), "<pg_sig>"+reply.Sig+"</pg_sig>")
}
