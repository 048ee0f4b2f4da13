package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{"9990001111", "+919990001111", "  8123456789 "}
	for _, phone := range valid {
		assert.True(t, ValidatePhoneNumber(phone), phone)
	}

	invalid := []string{"", "12345", "1234567890", "99900011112", "abcdefghij"}
	for _, phone := range invalid {
		assert.False(t, ValidatePhoneNumber(phone), phone)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("a@x.com"))
	assert.True(t, ValidateEmail("meera.nair+pwd@city.gov.in"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestSanitizeRequestBodyRedactsCredentials(t *testing.T) {
	body := `{"email":"a@x.com","password":"secret","otp":"123456"}`
	sanitized := sanitizeRequestBody(body)

	assert.Contains(t, sanitized, "a@x.com")
	assert.Contains(t, sanitized, "[REDACTED]")
	assert.NotContains(t, sanitized, "secret")
	assert.NotContains(t, sanitized, "123456")
}

func TestAuthorityTokenRoundtrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateAuthorityToken("a@x.com")
	require.NoError(t, err)

	claims, err := ParseAuthorityToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims["email"])
}
