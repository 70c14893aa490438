package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// TenantIDKey is the gin context key for the resolved tenant ID
const TenantIDKey = "tenant_id"

// TenantResolver resolves the tenant for each request. JWT claims take
// precedence; the X-Tenant-ID header is accepted as a fallback for
// unauthenticated or internal traffic. When required is true, requests
// without a resolvable tenant are rejected.
func TenantResolver(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := GetJWTTenantID(c)
		if !ok {
			if header := c.GetHeader("X-Tenant-ID"); header != "" {
				parsed, err := uuid.Parse(header)
				if err != nil {
					c.AbortWithStatusJSON(http.StatusBadRequest,
						dto.NewErrorResponse(dto.ErrCodeBadRequest, "invalid X-Tenant-ID header"))
					return
				}
				tenantID, ok = parsed, true
			}
		}

		if !ok {
			if required {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponse(dto.ErrCodeBadRequest, "tenant could not be determined"))
				return
			}
			c.Next()
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by TenantResolver
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
