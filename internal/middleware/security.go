package middleware

import (
	"strings"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds common security headers to all responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

var dangerousPatterns = []string{
	"<script",
	"javascript:",
	"onerror=",
	"onload=",
	"document.cookie",
}

// InputSanitizer rejects query parameters carrying script injection patterns.
// Request bodies are stored verbatim and escaped by the UI.
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		for key, values := range c.Request.URL.Query() {
			for _, v := range values {
				if containsDangerous(v) {
					common.HandleServiceError(c, common.NewValidationError(key, "허용되지 않는 입력입니다"))
					c.Abort()
					return
				}
			}
		}
		c.Next()
	}
}

func containsDangerous(v string) bool {
	lower := strings.ToLower(v)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// NoStore marks responses as uncacheable (exports, personal data)
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

