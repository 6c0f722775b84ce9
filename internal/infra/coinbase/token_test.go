package coinbase

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
)

func testKeyPEM(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	var b strings.Builder
	if err := pem.Encode(&b, &pem.Block{Type: "EC PRIVATE KEY", Bytes: der}); err != nil {
		t.Fatalf("encode pem: %v", err)
	}
	return b.String(), key
}

type parsedClaims struct {
	URI string `json:"uri"`
	jwt.RegisteredClaims
}

func parseToken(t *testing.T, signed string, key *ecdsa.PrivateKey) (*parsedClaims, map[string]any) {
	t.Helper()
	claims := &parsedClaims{}
	tok, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !tok.Valid {
		t.Fatal("token did not validate")
	}
	return claims, tok.Header
}

func TestTokenSigner_Sign(t *testing.T) {
	pemText, key := testKeyPEM(t)
	const keyName = "organizations/abc/apiKeys/def"

	t.Run("should bind method, host and path with a 120s lifetime", func(t *testing.T) {
		signer, err := NewTokenSigner(keyName, pemText)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		signed, err := signer.Sign("POST", "/api/v1/payment-links")
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}

		claims, header := parseToken(t, signed, key)
		if claims.URI != "POST business.coinbase.com/api/v1/payment-links" {
			t.Errorf("unexpected uri claim: %q", claims.URI)
		}
		if claims.Subject != keyName {
			t.Errorf("expected sub %q, got %q", keyName, claims.Subject)
		}
		if claims.Issuer != "cdp" {
			t.Errorf("expected iss cdp, got %q", claims.Issuer)
		}
		if got := claims.ExpiresAt.Sub(claims.NotBefore.Time); got != 120*time.Second {
			t.Errorf("expected exp-nbf of 120s, got %s", got)
		}
		if header["kid"] != keyName {
			t.Errorf("expected kid header %q, got %v", keyName, header["kid"])
		}
		nonce, _ := header["nonce"].(string)
		if len(nonce) != 32 {
			t.Errorf("expected 32-char hex nonce, got %q", nonce)
		}
	})

	t.Run("should produce distinct tokens within the same second", func(t *testing.T) {
		signer, err := NewTokenSigner(keyName, pemText)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		fixed := time.Now()
		signer.now = func() time.Time { return fixed }

		a, err := signer.Sign("GET", "/api/v1/payment-links/pl_1")
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		b, err := signer.Sign("GET", "/api/v1/payment-links/pl_1")
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		if a == b {
			t.Error("expected two tokens for the same call to differ")
		}

		_, headerA := parseToken(t, a, key)
		_, headerB := parseToken(t, b, key)
		if headerA["nonce"] == headerB["nonce"] {
			t.Error("expected distinct nonces")
		}
	})

	t.Run("should normalize escaped newlines in the PEM", func(t *testing.T) {
		escaped := strings.ReplaceAll(pemText, "\n", `\n`)
		if _, err := NewTokenSigner(keyName, escaped); err != nil {
			t.Fatalf("expected escaped PEM to parse, got: %v", err)
		}
	})

	t.Run("should reject an unusable private key", func(t *testing.T) {
		_, err := NewTokenSigner(keyName, "not a pem")
		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if !errors.Is(err, domain.ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey, got %v", err)
		}
	})
}
