package freedompay

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"path"
	"sort"
	"strings"
)

// SignatureField is the parameter that carries the request/response signature.
const SignatureField = "pg_sig"

// Sign computes the gateway signature for params.
//
// The signed string is the script name, every parameter value ordered by key,
// and the secret key, joined with ";". pg_sig itself is never part of it.
func Sign(params map[string]string, secretKey, scriptName string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == SignatureField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(scriptName)
	b.WriteString(";")
	for _, k := range keys {
		b.WriteString(params[k])
		b.WriteString(";")
	}
	b.WriteString(secretKey)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether params carry a valid pg_sig for the given script name.
func Verify(params map[string]string, secretKey, scriptName string) bool {
	got, ok := params[SignatureField]
	if !ok || got == "" {
		return false
	}
	want := Sign(params, secretKey, scriptName)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// ScriptName returns the last path segment of a callback URL, which the
// gateway uses as the script name when signing that callback.
func ScriptName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return path.Base(strings.TrimRight(rawURL, "/"))
	}
	return path.Base(strings.TrimRight(u.Path, "/"))
}

// Signer binds the merchant secret so callers do not pass it around.
type Signer struct {
	SecretKey string
}

func NewSigner(secretKey string) Signer {
	return Signer{SecretKey: secretKey}
}

func (s Signer) Sign(params map[string]string, scriptName string) string {
	return Sign(params, s.SecretKey, scriptName)
}

func (s Signer) Verify(params map[string]string, scriptName string) bool {
	return Verify(params, s.SecretKey, scriptName)
}

// Reply builds a signed callback response.
func (s Signer) Reply(status ReplyStatus, description, scriptName string) *Reply {
	r := &Reply{
		Status:      status,
		Description: description,
		Salt:        NewSalt(),
	}
	r.Sig = s.Sign(r.Params(), scriptName)
	return r
}
