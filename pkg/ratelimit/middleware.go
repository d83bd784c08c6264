package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"ticketly/internal/shared/utils/response"
	"ticketly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware limits every route by the bucket its path falls into
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		enforce(c, rateLimiter, getRateLimitType(c.FullPath()))
	}
}

// ForType limits a route group by one fixed bucket, e.g. the booking write paths
func ForType(rateLimiter *RateLimiter, limitType RateLimitType) gin.HandlerFunc {
	return func(c *gin.Context) {
		enforce(c, rateLimiter, limitType)
	}
}

func enforce(c *gin.Context, rateLimiter *RateLimiter, limitType RateLimitType) {
	clientIP := getClientIP(c)

	result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
	if err != nil {
		logger.GetDefault().WithError(err).ErrorContext(c.Request.Context(), "rate limit check failed", "ip", clientIP)
		response.RespondJSON(c, "error", http.StatusInternalServerError,
			"Rate limit check failed", nil, nil)
		c.Abort()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

	if !result.Allowed {
		logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
		response.RespondJSON(c, "error", http.StatusTooManyRequests,
			"Rate limit exceeded", nil, map[string]interface{}{
				"limit":      result.Limit,
				"reset_time": result.ResetTime,
			})
		c.Abort()
		return
	}

	c.Next()
}

func getRateLimitType(path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"):
		return RateLimitTypeHealth

	// booking writes are limited separately by ForType
	case strings.Contains(path, "/bookings"),
		strings.Contains(path, "/users/me/bookings"):
		return RateLimitTypeBooking

	case strings.Contains(path, "/materialize"),
		strings.Contains(path, "/cancel"):
		return RateLimitTypeOrganizer

	case strings.Contains(path, "/events"),
		strings.Contains(path, "/sessions"),
		strings.Contains(path, "/venues"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	if xForwardedFor := c.GetHeader("X-Forwarded-For"); xForwardedFor != "" {
		ip, _, _ := strings.Cut(xForwardedFor, ",")
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
