package authority

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pothole-backend/database"
	authorityModel "pothole-backend/models/authority"
	secretModel "pothole-backend/models/secret"
	secretService "pothole-backend/services/secret"
	authorityTypes "pothole-backend/types/authority"
	"pothole-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:authority_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func signupRequest() authorityTypes.SignupRequest {
	return authorityTypes.SignupRequest{
		Email:       "a@x.com",
		FullName:    "Meera Nair",
		Designation: "Assistant Engineer",
		Department:  "Public Works Department",
		Password:    "correct horse battery",
	}
}

func TestSignupStagesVerification(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	staging, err := svc.Signup(signupRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, staging.Token)
	assert.NotEqual(t, "correct horse battery", staging.PasswordHash)
	assert.True(t, utils.CheckPassword(staging.PasswordHash, "correct horse battery"))
	assert.WithinDuration(t, time.Now().Add(secretService.TokenTTL), staging.ExpiresAt, 5*time.Second)
}

func TestSignupWhilePendingIsRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.Signup(signupRequest())
	require.NoError(t, err)

	_, err = svc.Signup(signupRequest())
	assert.ErrorIs(t, err, ErrSignupPending)
}

func TestSignupAfterExpiredPendingIssuesFreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	first, err := svc.Signup(signupRequest())
	require.NoError(t, err)

	require.NoError(t, db.Model(&authorityModel.Verification{}).
		Where("id = ?", first.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	second, err := svc.Signup(signupRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// The stale token is gone along with its staging row.
	_, err = svc.VerifyToken(first.Token)
	assert.ErrorIs(t, err, secretService.ErrNotFound)
}

func TestSignupForActiveAccountIsRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	staging, err := svc.Signup(signupRequest())
	require.NoError(t, err)
	_, err = svc.VerifyToken(staging.Token)
	require.NoError(t, err)

	_, err = svc.Signup(signupRequest())
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestVerifyTokenPromotesAndRemovesStaging(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	staging, err := svc.Signup(signupRequest())
	require.NoError(t, err)

	account, err := svc.VerifyToken(staging.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, "Meera Nair", account.FullName)

	var stagingCount int64
	require.NoError(t, db.Model(&authorityModel.Verification{}).Count(&stagingCount).Error)
	assert.Equal(t, int64(0), stagingCount)

	// Replaying the link finds nothing.
	_, err = svc.VerifyToken(staging.Token)
	assert.ErrorIs(t, err, secretService.ErrNotFound)
}

func TestVerifyTokenExpired(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	staging, err := svc.Signup(signupRequest())
	require.NoError(t, err)

	require.NoError(t, db.Model(&authorityModel.Verification{}).
		Where("id = ?", staging.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = svc.VerifyToken(staging.Token)
	assert.ErrorIs(t, err, secretService.ErrExpired)
}

func TestVerifyTokenUnknown(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.VerifyToken("not-a-real-token")
	assert.ErrorIs(t, err, secretService.ErrNotFound)
}

func activateAccount(t *testing.T, svc *Service) *authorityModel.Authority {
	t.Helper()
	staging, err := svc.Signup(signupRequest())
	require.NoError(t, err)
	account, err := svc.VerifyToken(staging.Token)
	require.NoError(t, err)
	return account
}

func TestLoginRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	activateAccount(t, svc)

	account, err := svc.Login("a@x.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
}

func TestLoginFailureIsUniform(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	activateAccount(t, svc)

	// Wrong password and unknown account yield the identical error value.
	_, wrongPassErr := svc.Login("a@x.com", "wrong")
	_, noAccountErr := svc.Login("noone@x.com", "anything")

	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.ErrorIs(t, noAccountErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr.Error(), noAccountErr.Error())
}

func TestLoginOTPFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	activateAccount(t, svc)

	record, err := svc.SendLoginOTP("a@x.com", "X7KQ")
	require.NoError(t, err)

	_, err = svc.VerifyLoginOTP("a@x.com", record.Code, "WRONG")
	assert.ErrorIs(t, err, secretService.ErrCaptchaMismatch)

	account, err := svc.VerifyLoginOTP("a@x.com", record.Code, "X7KQ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)

	_, err = svc.VerifyLoginOTP("a@x.com", record.Code, "X7KQ")
	assert.ErrorIs(t, err, secretService.ErrAlreadyConsumed)
}

func TestLoginOTPRetryBudgetSurvivesRollback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	activateAccount(t, svc)

	record, err := svc.SendLoginOTP("a@x.com", "X7KQ")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == record.Code {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		_, err = svc.VerifyLoginOTP("a@x.com", wrong, "X7KQ")
		assert.ErrorIs(t, err, secretService.ErrMismatch)
	}

	// The failed attempts persisted even though each verification
	// transaction rolled back.
	var stored secretModel.Secret
	require.NoError(t, db.First(&stored, record.ID).Error)
	assert.Equal(t, 3, stored.RetryCount)
	assert.True(t, stored.IsUsed)

	// The budget is spent; the correct code no longer logs in.
	_, err = svc.VerifyLoginOTP("a@x.com", record.Code, "X7KQ")
	assert.ErrorIs(t, err, secretService.ErrAlreadyConsumed)
}

func TestLoginOTPRequiresActiveAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.SendLoginOTP("noone@x.com", "X7KQ")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
