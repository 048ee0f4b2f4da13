package citizen

import (
	"fmt"
	"sync/atomic"
	"testing"

	"pothole-backend/database"
	citizenModel "pothole-backend/models/citizen"
	secretModel "pothole-backend/models/secret"
	secretService "pothole-backend/services/secret"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:citizen_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRegisterHappyPath(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	record, err := svc.SendRegistrationOTP("9990001111")
	require.NoError(t, err)

	account, err := svc.Register("9990001111", record.Code, "Asha")
	require.NoError(t, err)
	assert.Equal(t, "Asha", account.FullName)
	assert.Equal(t, "9990001111", account.PhoneNumber)

	var count int64
	require.NoError(t, db.Model(&citizenModel.Citizen{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterReplayFailsAlreadyConsumed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	record, err := svc.SendRegistrationOTP("9990001111")
	require.NoError(t, err)

	_, err = svc.Register("9990001111", record.Code, "Asha")
	require.NoError(t, err)

	_, err = svc.Register("9990001111", record.Code, "Asha")
	assert.ErrorIs(t, err, secretService.ErrAlreadyConsumed)

	var count int64
	require.NoError(t, db.Model(&citizenModel.Citizen{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterWrongOTPLeavesSecretPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	record, err := svc.SendRegistrationOTP("9990001111")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == record.Code {
		wrong = "000001"
	}

	_, err = svc.Register("9990001111", wrong, "Asha")
	assert.ErrorIs(t, err, secretService.ErrMismatch)

	// The secret is still pending; the right code goes through afterwards.
	_, err = svc.Register("9990001111", record.Code, "Asha")
	assert.NoError(t, err)
}

func TestRegisterDuplicateAccountRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	require.NoError(t, db.Create(&citizenModel.Citizen{
		FullName:    "Asha",
		PhoneNumber: "9990001111",
	}).Error)

	record, err := svc.SendRegistrationOTP("9990001111")
	require.NoError(t, err)

	_, err = svc.Register("9990001111", record.Code, "Someone Else")
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	// The failed promotion must not have consumed the secret.
	active, err := svc.Secrets.ActiveSecret("9990001111", secretModel.PurposeCitizenRegistration)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, record.ID, active.ID)

	var count int64
	require.NoError(t, db.Model(&citizenModel.Citizen{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterRetryBudgetSurvivesRollback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	record, err := svc.SendRegistrationOTP("9990001111")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == record.Code {
		wrong = "000001"
	}

	for i := 0; i < 4; i++ {
		_, err = svc.Register("9990001111", wrong, "Asha")
		require.Error(t, err)
	}

	// Each failed registration rolled its transaction back, but the
	// attempts must still be counted and audited.
	var stored secretModel.Secret
	require.NoError(t, db.First(&stored, record.ID).Error)
	assert.Equal(t, 3, stored.RetryCount)
	assert.True(t, stored.IsUsed)

	var mismatches int64
	require.NoError(t, db.Model(&secretModel.SecretEvent{}).
		Where("secret_id = ? AND event_type = ?", record.ID, secretModel.EventMismatch).
		Count(&mismatches).Error)
	assert.Equal(t, int64(3), mismatches)

	// The budget is spent; even the correct code no longer registers.
	_, err = svc.Register("9990001111", record.Code, "Asha")
	assert.ErrorIs(t, err, secretService.ErrAlreadyConsumed)

	var count int64
	require.NoError(t, db.Model(&citizenModel.Citizen{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDoubleSubmitHasExactlyOneWinner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	record, err := svc.SendRegistrationOTP("9990001111")
	require.NoError(t, err)

	first, firstErr := svc.Register("9990001111", record.Code, "Asha")
	_, secondErr := svc.Register("9990001111", record.Code, "Asha")

	require.NoError(t, firstErr)
	require.NotNil(t, first)
	assert.ErrorIs(t, secondErr, secretService.ErrAlreadyConsumed)

	var count int64
	require.NoError(t, db.Model(&citizenModel.Citizen{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
