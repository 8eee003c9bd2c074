package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// ContextKeyClaims is the gin context key of the caller's claims.
const ContextKeyClaims = "claims"

const (
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultAdminRole     = "admin"
)

// Claims identify the caller. The gateway in front of the service
// authenticates the user and forwards the subject and roles as headers.
type Claims struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the caller holds role.
func (c *Claims) HasRole(role string) bool {
	return c != nil && slices.Contains(c.Roles, role)
}

// Identity reads the caller's claims from the gateway headers. The subject
// becomes the history owner; callers without one are anonymous. When auth
// is enabled a missing subject is rejected with 401.
func Identity(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)
		c.Set(ContextKeyClaims, claims)

		if claims.Subject == "" {
			if cfg != nil && cfg.Enabled {
				dto.AbortWithCode(c, dto.ErrorCodeUnauthorized, "authentication required")
				return
			}
			c.Next()
			return
		}

		ctx := ContextWithUserID(c.Request.Context(), claims.Subject)
		ctx = logging.With(ctx, "user_id", claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects callers without role with 403. An empty role means
// the configured admin role.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	if role == "" {
		role = defaultAdminRole
		if cfg != nil && cfg.AdminRole != "" {
			role = cfg.AdminRole
		}
	}

	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			claims = ExtractClaims(c, cfg)
		}

		if !claims.HasRole(role) {
			dto.AbortWithCode(c, dto.ErrorCodeForbidden, "role "+role+" required")
			return
		}

		c.Next()
	}
}

// ExtractClaims reads the subject and comma separated roles headers.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader, rolesHeader := defaultSubjectHeader, defaultRolesHeader
	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}
		if cfg.RolesHeader != "" {
			rolesHeader = cfg.RolesHeader
		}
	}

	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(subjectHeader))}
	if !validID(claims.Subject) {
		claims.Subject = ""
	}

	for r := range strings.SplitSeq(c.GetHeader(rolesHeader), ",") {
		if r = strings.TrimSpace(r); r != "" {
			claims.Roles = append(claims.Roles, r)
		}
	}

	return claims
}

// GetClaims returns the claims stored by Identity, or nil.
func GetClaims(c *gin.Context) *Claims {
	v, _ := c.Get(ContextKeyClaims)
	claims, _ := v.(*Claims)

	return claims
}

// UserID returns the caller's subject, or "" for anonymous callers.
func UserID(c *gin.Context) string {
	return UserIDFromContext(c.Request.Context())
}
