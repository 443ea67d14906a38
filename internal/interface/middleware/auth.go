package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	repo "github.com/oksasatya/go-diagram-workspace/internal/domain/repository"
)

// CtxPrincipalKey holds the *entity.Principal in the gin context.
const CtxPrincipalKey = "principal"

// TokenVerifier returns the subject (username) of a valid token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Gate resolves the bearer token into a principal. It never rejects: a
// missing or bad token leaves the request anonymous and Authorize decides.
// The principal is re-read from the store on every request so role changes
// and deleted accounts take effect before the token expires.
func Gate(tokens TokenVerifier, users repo.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := bearer(header)
		if !ok {
			logger.WithField("request_id", c.GetString("request_id")).Debug("authorization header is not a bearer token")
			c.Next()
			return
		}

		subject, err := tokens.Verify(token)
		if err != nil {
			entry := logger.WithField("request_id", c.GetString("request_id"))
			var te *errs.TokenError
			if errors.As(err, &te) {
				entry = entry.WithField("cause", te.Cause)
			}
			entry.WithError(err).Debug("token rejected")
			c.Next()
			return
		}

		u, err := users.GetByUsername(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				logger.WithField("subject", subject).Debug("token subject no longer exists")
			} else {
				logger.WithError(err).WithField("subject", subject).Warn("principal lookup failed")
			}
			c.Next()
			return
		}

		p := u.Principal()
		c.Set(CtxPrincipalKey, p)
		c.Request = c.Request.WithContext(entity.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// PrincipalFrom returns the principal Gate attached, or nil.
func PrincipalFrom(c *gin.Context) *entity.Principal {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*entity.Principal)
	return p
}
