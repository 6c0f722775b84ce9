package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
)

// SignatureVerifier validates x-hook0-signature headers. The HMAC is
// computed over the exact raw payload bytes as received; any
// re-serialization before verification invalidates the signature.
type SignatureVerifier struct {
	secret string
	now    func() time.Time
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: secret, now: time.Now}
}

// Verify checks the v1 HMAC-SHA256 digest of "t.payload" and enforces the
// five-minute replay window on t.
func (v *SignatureVerifier) Verify(payload []byte, header string) error {
	fields := parseSignatureHeader(header)
	ts, okT := fields["t"]
	sig, okV := fields["v1"]
	if !okT || !okV {
		return domain.ErrMalformedSignature
	}

	tsec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return domain.ErrMalformedSignature
	}
	drift := v.now().Unix() - tsec
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(signatureTolerance/time.Second) {
		return domain.ErrStaleSignature
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal runs in constant time.
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return domain.ErrSignatureMismatch
	}
	return nil
}

// parseSignatureHeader splits "k=v;k=v" into a map, skipping segments
// without exactly one separator.
func parseSignatureHeader(header string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		fields[kv[0]] = kv[1]
	}
	return fields
}
