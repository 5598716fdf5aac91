package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-lms-api/internal/utils"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// AccessClaims are the claims carried by API access tokens. The user id is read
// from user_id, falling back to the numeric subject.
type AccessClaims struct {
	UserID uint   `json:"user_id,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c AccessClaims) userID() (uint, error) {
	if c.UserID != 0 {
		return c.UserID, nil
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Subject), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("token has no user id")
	}
	return uint(parsed), nil
}

// JWTProtected validates HS256 bearer tokens and stores the user id and role in
// the request locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authorization header missing", nil)
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid authorization header", nil)
		}

		claims := &AccessClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(authorization[len(bearer):]), claims, keyFunc)
		if err != nil || !token.Valid {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token", nil)
		}

		userID, err := claims.userID()
		if err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token claims", nil)
		}

		c.Locals(localUserID, userID)
		c.Locals(localUserRole, strings.ToLower(strings.TrimSpace(claims.Role)))
		return c.Next()
	}
}

// IssueToken signs an access token for the given user.
func IssueToken(secret string, userID uint, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// UserID returns the authenticated user id stored by JWTProtected.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok && id != 0
}

// UserRole returns the authenticated user's role in lower case.
func UserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(localUserRole).(string)
	return strings.ToLower(strings.TrimSpace(role))
}
