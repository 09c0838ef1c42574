// Package secretary provides methods for ciphering and token handling.
package secretary

import (
	"github.com/stampmart/stampmart/internal/models/modelclaims"
)

// Secretary defines a set of methods for types implementing Secretary.
type Secretary interface {
	Encode(data string) string
	Decode(msg string) (string, error)
	NewToken(role string) (string, string, error)
	GetTokenForUser(userID string, role string) (string, error)
	ValidateToken(accessToken string) (*modelclaims.LedgerClaims, error)
}
