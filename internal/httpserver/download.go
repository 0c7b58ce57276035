package httpserver

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"notes-store/internal/domain"

	"github.com/gin-gonic/gin"
)

// downloadHandler redeems a single-use grant token and streams the backing
// file. The token is opaque; raw file names in the URL are never honored.
func downloadHandler(svc CheckoutService, filesDir string, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.String(http.StatusNotFound, "file not found")
			return
		}

		fileKey, err := svc.RedeemDownload(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Printf("download: redeem failed: %v", err)
			}
			c.String(http.StatusNotFound, "file not found")
			return
		}

		// The stored key is reduced to its base name before touching disk.
		name := filepath.Base(fileKey)
		path := filepath.Join(filesDir, name)
		if _, err := os.Stat(path); err != nil {
			logger.Printf("download: missing artifact %s", name)
			c.String(http.StatusNotFound, "file not found")
			return
		}

		c.FileAttachment(path, name)
	}
}
