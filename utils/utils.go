package utils

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"pothole-backend/types"

	"github.com/gofiber/fiber/v2"
)

var (
	// Pattern: /^(?:\+91)?[6-9][0-9]{9}$/
	// Allows: 10-digit mobile numbers with an optional +91 country prefix
	phonePattern = regexp.MustCompile(`^(?:\+91)?[6-9][0-9]{9}$`)

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePhoneNumber validates a citizen phone number
func ValidatePhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// ValidateEmail validates an authority email address
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Request body fields that must never reach the log table.
var redactedFields = []string{"password", "otp", "captcha_text", "captcha_input"}

// sanitizeRequestBody strips credential material from a JSON request body
// before it is persisted by the async logger.
func sanitizeRequestBody(body string) string {
	if body == "" {
		return body
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return body
	}

	redacted := false
	for _, field := range redactedFields {
		if _, ok := payload[field]; ok {
			payload[field] = "[REDACTED]"
			redacted = true
		}
	}
	if !redacted {
		return body
	}

	if sanitized, err := json.Marshal(payload); err == nil {
		return string(sanitized)
	}
	return "[UNLOGGABLE_REQUEST_BODY]"
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// the async logger. Credential fields in the request body are redacted and
// all buffers are copied out of fiber's reusable contexts.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	clientIP := string([]byte(c.IP()))
	requestBody := sanitizeRequestBody(string(c.Body()))
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		ClientIP:        clientIP,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}
