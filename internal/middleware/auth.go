package middleware

import (
	"net/http"
	"os"
	"strings"

	"standardops/internal/tenant"
	"standardops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only, DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// tenantSvc holds the tenant service reference for auth middleware, set via InitAuthMiddleware
var tenantSvc *tenant.Service

// InitAuthMiddleware sets the tenant service used for permission checks
func InitAuthMiddleware(svc *tenant.Service) {
	tenantSvc = svc
}

// authenticate validates the JWT from cookie or Authorization header and
// returns the caller's user id. Aborts the request on any failure.
func authenticate(c *gin.Context) (uuid.UUID, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return uuid.Nil, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return uuid.Nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return uuid.Nil, false
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
		return uuid.Nil, false
	}

	c.Set("userID", userID.String())
	return userID, true
}

// resolveTenant computes the caller's tenant context and attaches it to the
// request. The context is derived fresh from current user/role state every
// request; it is never cached. A user with no resolvable context gets a
// deny-all context downstream, not an error.
func resolveTenant(c *gin.Context, userID uuid.UUID) *tenant.TenantContext {
	tc, err := tenantSvc.ComputeTenantContext(c.Request.Context(), userID)
	if err != nil || tc == nil {
		return nil
	}
	c.Set("tenantContext", tc)
	c.Request = c.Request.WithContext(tenant.WithContext(c.Request.Context(), tc))
	return tc
}

// RequireAuth validates the JWT and attaches userID plus tenant context
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c)
		if !ok {
			return
		}
		resolveTenant(c, userID)
		c.Next()
	}
}

// RequirePermission validates the JWT and checks that the caller holds every
// named permission. Superusers pass unconditionally; everyone else needs the
// tokens in their computed permission set.
func RequirePermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c)
		if !ok {
			return
		}

		for _, required := range requiredPerms {
			if !tenantSvc.HasPermission(c.Request.Context(), userID, required, nil) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
				return
			}
		}

		resolveTenant(c, userID)
		c.Next()
	}
}

// GetTenantContext returns the tenant context attached by RequireAuth or
// RequirePermission. It reads the gin key first and falls back to the value
// resolveTenant injected into the request context, so code holding only the
// context.Context (services, repositories) resolves the same decision. The
// second return is false when no context was resolved; callers must treat
// that as deny.
func GetTenantContext(c *gin.Context) (*tenant.TenantContext, bool) {
	if v, exists := c.Get("tenantContext"); exists {
		tc, ok := v.(*tenant.TenantContext)
		return tc, ok && tc != nil
	}
	return tenant.FromContext(c.Request.Context())
}

// CurrentUserID returns the authenticated caller's id
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	idStr, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
