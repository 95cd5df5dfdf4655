package auth

import (
	"errors"
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/config"
	"github.com/intranet-suite/survey-service/internal/utils"
)

// ContextUserID is the gin context key handlers read the caller identity from.
const ContextUserID = "user_id"

// Verifier checks a bearer token and returns the user id it identifies.
type Verifier interface {
	Verify(token string) (string, error)
}

// CasdoorVerifier validates token signatures against the configured Casdoor
// application certificate.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg *config.Config) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &CasdoorVerifier{client: client}
}

func (v *CasdoorVerifier) Verify(token string) (string, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return "", NewAuthError("token verification failed: " + err.Error())
	}
	if claims.User.Id != "" {
		return claims.User.Id, nil
	}
	return claims.User.Name, nil
}

// LocalVerifier decodes the token without verifying its signature, matching
// the portal's client-side contract. Used when no identity provider is
// configured.
type LocalVerifier struct{}

func (LocalVerifier) Verify(token string) (string, error) {
	return UserIDFromToken(token)
}

// Middleware extracts the bearer token, resolves the caller identity through
// the given verifier, and stores both on the request context. Requests
// without a decodable token are rejected.
func Middleware(verifier Verifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		userID, err := resolveUser(verifier, token)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				logger.Warn("rejected unauthenticated request",
					"path", c.Request.URL.Path,
					"reason", authErr.Reason)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "authentication required",
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Set("bearer_token", token)
		c.Next()
	}
}

func resolveUser(verifier Verifier, token string) (string, error) {
	if token == "" {
		return "", NewAuthError("missing token")
	}
	return verifier.Verify(token)
}
