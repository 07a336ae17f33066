package httphandler

import (
	"net/http"

	gh "github.com/google/go-github/v82/github"
)

const (
	signatureHeader256 = "X-Hub-Signature-256"
	signatureHeader    = "X-Hub-Signature"
)

// VerifySignature reports whether signature is the HMAC of body keyed with
// secret. The value carries its algorithm prefix ("sha1=" or "sha256=") and is
// compared in constant time. An empty signature never verifies.
func VerifySignature(body []byte, signature string, secret []byte) bool {
	if signature == "" || len(secret) == 0 {
		return false
	}
	return gh.ValidateSignature(signature, body, secret) == nil
}

// requestSignature returns the strongest signature GitHub attached to r.
func requestSignature(r *http.Request) string {
	if sig := r.Header.Get(signatureHeader256); sig != "" {
		return sig
	}
	return r.Header.Get(signatureHeader)
}
