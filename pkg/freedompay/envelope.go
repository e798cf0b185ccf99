package freedompay

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/xml"
	"strconv"
	"time"
)

type ReplyStatus string

const (
	StatusOK       ReplyStatus = "ok"
	StatusRejected ReplyStatus = "rejected"
	StatusError    ReplyStatus = "error"
)

// ContentType is what the gateway expects on callback responses.
const ContentType = "application/xml"

// Reply is the envelope returned to check/result callbacks.
type Reply struct {
	XMLName     xml.Name    `xml:"response"`
	Status      ReplyStatus `xml:"pg_status"`
	Description string      `xml:"pg_description"`
	Salt        string      `xml:"pg_salt"`
	Sig         string      `xml:"pg_sig"`
}

// Params returns the fields covered by the signature.
func (r *Reply) Params() map[string]string {
	return map[string]string{
		"pg_status":      string(r.Status),
		"pg_description": r.Description,
		"pg_salt":        r.Salt,
	}
}

// SignedParams returns Params plus pg_sig.
func (r *Reply) SignedParams() map[string]string {
	p := r.Params()
	p[SignatureField] = r.Sig
	return p
}

func (r *Reply) Marshal() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// NewSalt returns a random hex salt. It falls back to a base36 timestamp
// if the system randomness source fails.
func NewSalt() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
