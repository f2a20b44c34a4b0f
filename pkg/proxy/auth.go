package proxy

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthType selects how requests to the backend are authenticated.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeAPIKey AuthType = "apikey"
	AuthTypeJWT    AuthType = "jwt"
)

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	AddAuthHeaders(req *http.Request, method, path, body string) error
}

// APIKeyAuthenticator sends a static token with every request.
type APIKeyAuthenticator struct {
	token string
}

func NewAPIKeyAuthenticator(token string) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{token: token}
}

func (a *APIKeyAuthenticator) AddAuthHeaders(req *http.Request, method, path, body string) error {
	req.Header.Set("X-API-Key", a.token)
	return nil
}

// JWTAuthenticator mints a short-lived ES256 bearer token per request, for
// backends that validate signed keys instead of static tokens.
type JWTAuthenticator struct {
	keyName    string
	privateKey *ecdsa.PrivateKey
}

func NewJWTAuthenticator(keyName, privateKeyPEM string) (*JWTAuthenticator, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block containing the private key")
	}

	privateKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC private key: %w", err)
		}
		var ok bool
		privateKey, ok = key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("not an EC private key")
		}
	}

	return &JWTAuthenticator{
		keyName:    keyName,
		privateKey: privateKey,
	}, nil
}

func (j *JWTAuthenticator) AddAuthHeaders(req *http.Request, method, path, body string) error {
	token, err := j.mintToken(method, req.Host, path)
	if err != nil {
		return fmt.Errorf("mint JWT: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (j *JWTAuthenticator) mintToken(method, host, path string) (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   j.keyName,
		"iss":   "ai-trader",
		"nbf":   now.Unix(),
		"exp":   now.Add(2 * time.Minute).Unix(),
		"uri":   method + " " + host + path,
		"nonce": nonce,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = j.keyName
	token.Header["nonce"] = nonce

	signed, err := token.SignedString(j.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
