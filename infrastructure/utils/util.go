package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"idle-fm-api/domain/model"
	"idle-fm-api/infrastructure/logger"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// SessionTTL is the lifetime of the session token and its cookie.
const SessionTTL = 7 * 24 * time.Hour

// ErrMissingSecret is returned when no signing key is configured.
var ErrMissingSecret = errors.New("session secret key is empty")

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateSessionToken signs claims for user with HS256.
func GenerateSessionToken(user *model.User, secretKey string, now time.Time) (string, error) {
	if secretKey == "" {
		return "", ErrMissingSecret
	}
	claims := model.UserClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(SessionTTL).Unix(),
			Issuer:    "idle.fm",
		},
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// ParseSessionToken verifies tokenString and returns its claims.
func ParseSessionToken(tokenString, secretKey string) (*model.UserClaims, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}
	var claims model.UserClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid session token")
	}
	return &claims, nil
}

// NewOpaqueToken returns a random token for mailed links and the sha256 hex
// digest that is stored in its place.
func NewOpaqueToken() (token, hash string) {
	token = uuid.NewString() + uuid.NewString()
	return token, HashToken(token)
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
