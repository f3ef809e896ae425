package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/models"
)

const UserIDKey = "user_id"

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrTokenFormat  = errors.New("invalid authorization header format")
	ErrNoSubject    = errors.New("missing user id in token")
)

// BearerToken pulls the token out of an Authorization header. URL-encoded
// tokens are decoded.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrTokenFormat
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrTokenFormat
	}
	if decoded, err := url.QueryUnescape(token); err == nil {
		token = decoded
	}
	return token, nil
}

// ParseSubject validates a Supabase HS256 token and returns its sub claim.
func ParseSubject(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		if secret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		// Supabase JWT secret is used directly as the signing key
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid - check JWT secret"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed - ensure you're using a valid Supabase JWT token"
	}
	return err.Error()
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
			return
		}

		sub, err := ParseSubject(cfg.SupabaseJWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid token",
				Message: tokenErrorMessage(err),
			})
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}
