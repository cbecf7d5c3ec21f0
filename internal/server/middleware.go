package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/fiscalware/fiscalway/pkg/tenantctx"
)

const taxpayerHeader = "X-Taxpayer-ID"

// TenantMiddleware propagates the calling taxpayer's identity into the
// request context. The header is optional: device-scoped endpoints resolve
// the tenant from the device record instead.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(taxpayerHeader)
		if raw != "" {
			if id, err := snowflake.ParseString(raw); err == nil {
				ctx := tenantctx.WithTaxpayerID(c.Request.Context(), int64(id))
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}
