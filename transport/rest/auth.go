package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/confcentral/central"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const identityLocalsKey = "identity"

// IdentityClaims are the claims of a bearer token issued by the sign-in
// service. The subject is the caller's stable user id.
type IdentityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IdentityProvider resolves the caller from an HS256 bearer token signed
// with secret. Requests without an Authorization header pass through
// anonymous; a bad token is rejected with 401.
func IdentityProvider(secret []byte) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}

	return func(ctx *fiber.Ctx) error {
		auth := ctx.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return ctx.Next()
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return fiber.NewError(fiber.StatusBadRequest, "invalid auth type")
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		var claims IdentityClaims
		if _, err := parser.ParseWithClaims(token, &claims, keyFunc); err != nil {
			requestLog(ctx).WithError(err).Infoln("Invalid bearer token.")
			return fiber.ErrUnauthorized
		}
		if claims.Subject == "" {
			return fiber.ErrUnauthorized
		}

		ctx.Locals(identityLocalsKey, central.Identity{
			UserId: central.UserId(claims.Subject),
			Email:  central.Email(claims.Email),
		})
		return ctx.Next()
	}
}

// identityOf returns the caller's identity or the zero Identity for
// anonymous requests.
func identityOf(ctx *fiber.Ctx) central.Identity {
	identity, _ := ctx.Locals(identityLocalsKey).(central.Identity)
	return identity
}

// SignIdentity issues a bearer token accepted by IdentityProvider.
func SignIdentity(secret []byte, identity central.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Email: string(identity.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(identity.UserId),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
