package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for anything that does not decode to a valid session.
	ErrTokenInvalid = errors.New("token inválido")
)

// Session is the identity carried by a session token.
type Session struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// TokenService issues and decodes opaque session tokens: an HS256 JWT
// sealed with XChaCha20-Poly1305 and encoded as unpadded base64url so it
// can travel as a path segment.
type TokenService struct {
	signKey []byte
	sealKey [32]byte
	ttl     time.Duration
}

// NewTokenService creates a TokenService whose tokens live for ttl.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		signKey: []byte(secret),
		sealKey: sha256.Sum256([]byte("marcha/session:" + secret)),
		ttl:     ttl,
	}
}

// Issue returns a new token for the given user.
func (s *TokenService) Issue(userID, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      now.Add(s.ttl).Unix(),
		"iat":      now.Unix(),
	})
	signed, err := token.SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.sealKey[:])
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(signed)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(signed), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens and validates a token. Expired tokens yield ErrTokenExpired,
// every other failure yields ErrTokenInvalid.
func (s *TokenService) Decode(tokenString string) (*Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	aead, err := chacha20poly1305.NewX(s.sealKey[:])
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return nil, ErrTokenInvalid
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	signed, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.Parse(string(signed), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signKey, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	exp, _ := claims["exp"].(float64)
	if userID == "" {
		return nil, ErrTokenInvalid
	}
	return &Session{
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
