package coinbase

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
)

type apiClaims struct {
	URI string `json:"uri"`
	jwt.RegisteredClaims
}

// TokenSigner mints the short-lived ES256 token attached to every Payment
// Link API call. Each token is bound to one METHOD+path pair and carries a
// random nonce in its header, so two tokens for the same call within the
// same second still differ.
type TokenSigner struct {
	keyName string
	key     *ecdsa.PrivateKey
	now     func() time.Time
}

// NewTokenSigner parses the CDP EC private key. Escaped newlines from
// textarea or env input are normalized before parsing.
func NewTokenSigner(keyName, privateKeyPEM string) (*TokenSigner, error) {
	pemText := strings.ReplaceAll(privateKeyPEM, `\n`, "\n")
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(pemText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return &TokenSigner{keyName: keyName, key: key, now: time.Now}, nil
}

// Sign returns a signed token whose uri claim is
// "METHOD business.coinbase.com/path". The host is fixed to the provider's
// domain rather than derived from the request.
func (s *TokenSigner) Sign(method, path string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	now := s.now()
	claims := apiClaims{
		URI: method + " " + apiHost + path,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.keyName,
			Issuer:    tokenIssuer,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = s.keyName
	tok.Header["nonce"] = hex.EncodeToString(nonce)

	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return signed, nil
}
