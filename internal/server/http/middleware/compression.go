package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxInflatedBody bounds a decompressed request body. Orders and catalog
// writes are small.
const maxInflatedBody = 1 << 20

// DecompressRequest inflates gzip request bodies before binding.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
			c.Next()
			return
		}

		compressed := c.Request.Body
		defer compressed.Close()

		reader, err := gzip.NewReader(compressed)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid input", "malformed gzip body")
			return
		}
		defer reader.Close()

		c.Request.Body = http.MaxBytesReader(c.Writer, reader, maxInflatedBody)
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
