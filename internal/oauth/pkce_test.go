package oauth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

// s256Challenge is the code challenge the server recomputes from a verifier.
func s256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func TestS256Challenge_RFC7636Vector(t *testing.T) {
	// Appendix B of RFC 7636.
	assert.Equal(t,
		"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		s256Challenge("dBjftJeZ4CK-1gsUStFvsoKtMiYJkQtQ0XcrITxSx9M"),
	)
}

func TestGenerateVerifier_Charset(t *testing.T) {
	v := GenerateVerifier()
	assert.GreaterOrEqual(t, len(v), 43)
	assert.LessOrEqual(t, len(v), 128)
	assert.Regexp(t, `^[A-Za-z0-9\-._~]+$`, v)
}
