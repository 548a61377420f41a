package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// PrincipalKey is the gin context key holding the resolved domain.Principal
const PrincipalKey = "principal"

var errBadToken = errors.New("invalid or expired token")

// ResolvePrincipal reads an optional bearer token issued by the identity
// provider and stores the principal from its subject. Requests without a
// token continue as anonymous; a token that does not verify is rejected.
func ResolvePrincipal(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(PrincipalKey, domain.Anonymous())
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errBadToken.Error()})
			return
		}

		subject, err := parseSubject(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errBadToken.Error()})
			return
		}

		c.Set(PrincipalKey, domain.NewPrincipal(subject))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after ResolvePrincipal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).Present() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by ResolvePrincipal, anonymous if none
func PrincipalFrom(c *gin.Context) domain.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return domain.Anonymous()
	}
	p, _ := v.(domain.Principal)
	return p
}

func parseSubject(raw string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errBadToken
	}
	return subject, nil
}
