package utils

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/splitpot/backend/internal/models"
)

const signingKeySalt = "splitpot-session-signing"

var (
	signingKey         = deriveSigningKey("change-me-in-production")
	jwtExpirationHours = 24 * 30
)

// Claims is the session payload carried in every member token. There are no
// passwords in the system: a token is minted when a group is created, when a
// unique name joins, or when a verification poll observes approval.
type Claims struct {
	MemberID uuid.UUID `json:"memberID"`
	GroupID  uuid.UUID `json:"groupID"`
	Name     string    `json:"name"`
	IsAdmin  bool      `json:"isAdmin"`
	jwt.RegisteredClaims
}

// ConfigureJWT derives the HMAC signing key from the application secret and
// sets the token lifetime.
func ConfigureJWT(secret string, expirationHours int) {
	if secret != "" {
		signingKey = deriveSigningKey(secret)
	}
	if expirationHours > 0 {
		jwtExpirationHours = expirationHours
	}
}

func deriveSigningKey(secret string) []byte {
	reader := hkdf.New(sha256.New, []byte(secret), []byte(signingKeySalt), []byte("session-key"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		panic(fmt.Sprintf("failed to derive signing key: %v", err))
	}
	return key
}

func GenerateToken(member *models.Member) (string, error) {
	expiresAt := time.Now().Add(time.Duration(jwtExpirationHours) * time.Hour)
	claims := Claims{
		MemberID: member.ID,
		GroupID:  member.GroupID,
		Name:     member.Name,
		IsAdmin:  member.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   member.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
