package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyra/complyra/internal/auth"
)

const testSecret = "test-secret-that-is-at-least-32ch"

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	companyID := uuid.New()

	token, err := auth.IssueAccessToken(testSecret, userID, &companyID, "client_admin", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, companyID.String(), claims.CompanyID)
	assert.Equal(t, "client_admin", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "complyra", claims.Issuer)
}

func TestIssueAccessToken_NoCompany(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testSecret, uuid.New(), nil, "staff_admin", time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Empty(t, claims.CompanyID, "platform staff carry no company claim")
}

func TestIssueRefreshToken_Type(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueRefreshToken(testSecret, uuid.New(), nil, "contributor", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testSecret, uuid.New(), nil, "contributor", time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken("another-secret-also-32-chars-long!!", token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testSecret, uuid.New(), nil, "contributor", -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := auth.ValidateToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
