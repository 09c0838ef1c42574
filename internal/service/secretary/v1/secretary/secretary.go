// Package secretary provides methods for ciphering and token handling.
package secretary

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/stampmart/stampmart/internal/config"
	"github.com/stampmart/stampmart/internal/models/modelclaims"
)

const tokenLifetime = 30 * time.Minute

// Secretary defines object structure and its attributes.
type Secretary struct {
	aesgcm cipher.AEAD
	nonce  []byte
	key    []byte
}

// NewSecretaryService initializes a secretary service with ciphering functionality.
func NewSecretaryService(c *config.SecretConfig) (*Secretary, error) {
	key := sha256.Sum256([]byte(c.SecretKey))
	aesblock, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(aesblock)
	if err != nil {
		return nil, err
	}
	nonce := key[len(key)-aesgcm.NonceSize():]
	return &Secretary{
		aesgcm: aesgcm,
		nonce:  nonce,
		key:    []byte(c.SecretKey),
	}, nil
}

// Encode ciphers data using the previously established cipher.
func (s *Secretary) Encode(data string) string {
	encoded := s.aesgcm.Seal(nil, s.nonce, []byte(data), nil)
	return hex.EncodeToString(encoded)
}

// Decode deciphers data using the previously established cipher.
func (s *Secretary) Decode(msg string) (string, error) {
	msgBytes, err := hex.DecodeString(msg)
	if err != nil {
		return "", err
	}
	decoded, err := s.aesgcm.Open(nil, s.nonce, msgBytes, nil)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// NewToken generates a new userID and a signed access token carrying it with the given role.
func (s *Secretary) NewToken(role string) (string, string, error) {
	userID := uuid.New().String()
	accessToken, err := s.GetTokenForUser(userID, role)
	if err != nil {
		return "", "", err
	}
	return accessToken, userID, nil
}

// GetTokenForUser generates a signed access token for an existing userID.
func (s *Secretary) GetTokenForUser(userID string, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &modelclaims.LedgerClaims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(tokenLifetime).Unix(),
		},
	})
	return token.SignedString(s.key)
}

// ValidateToken verifies a token signature and expiry and returns its claims.
func (s *Secretary) ValidateToken(accessToken string) (*modelclaims.LedgerClaims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &modelclaims.LedgerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*modelclaims.LedgerClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid access token")
}
