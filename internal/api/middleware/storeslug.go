package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ryangomba/abunco/internal/api/graph"
	"github.com/ryangomba/abunco/internal/auth"
	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

// StoreSlugHeader names the header every inbound request must carry to
// identify its tenant.
const StoreSlugHeader = "Abunco-Store-Slug"

// StoreSlugMiddleware resolves the tenant for the request and attaches a
// fresh unit of work (credentials + empty record cache) to the request
// context before the GraphQL handler runs.
func StoreSlugMiddleware(tenants *auth.Tenants, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeSlug := c.GetHeader(StoreSlugHeader)
		if storeSlug == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "no store ID specified in request"}},
			})
			c.Abort()
			return
		}

		rc, err := auth.NewContextForRequest(tenants, storeSlug, logger)
		if err != nil {
			status := http.StatusInternalServerError
			var notFound *apperrors.ErrNotFound
			if errors.As(err, &notFound) {
				status = http.StatusNotFound
			}
			logger.Warn("Failed to resolve store slug",
				zap.String("storeSlug", storeSlug),
				zap.Error(err),
			)
			c.JSON(status, gin.H{
				"errors": []gin.H{{"message": err.Error()}},
			})
			c.Abort()
			return
		}

		ctx := graph.WithRequestContext(c.Request.Context(), rc)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
