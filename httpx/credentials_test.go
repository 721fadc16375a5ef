package httpx

import (
	"testing"

	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlopes/apreciador/config"
)

func testVerifier(t *testing.T) oauth.CredentialsVerifier {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	return CredentialsVerifier(config.Config{
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
	})
}

func TestValidateUser(t *testing.T) {
	v := testVerifier(t)

	assert.NoError(t, v.ValidateUser("admin", "s3cret", "", nil))
	assert.Error(t, v.ValidateUser("admin", "wrong", "", nil))
	assert.Error(t, v.ValidateUser("nobody", "s3cret", "", nil))
}

func TestRefreshTokenSingleUse(t *testing.T) {
	v := testVerifier(t)

	require.NoError(t, v.StoreTokenID(oauth.UserToken, "admin", "tok-1", "ref-1"))

	assert.NoError(t, v.ValidateTokenID(oauth.UserToken, "admin", "tok-1", "ref-1"))
	// second use of the same refresh token must fail
	assert.Error(t, v.ValidateTokenID(oauth.UserToken, "admin", "tok-1", "ref-1"))
}

func TestValidateTokenIDMismatch(t *testing.T) {
	v := testVerifier(t)

	require.NoError(t, v.StoreTokenID(oauth.UserToken, "admin", "tok-1", "ref-1"))
	assert.Error(t, v.ValidateTokenID(oauth.UserToken, "admin", "tok-1", "ref-other"))
	assert.Error(t, v.ValidateTokenID(oauth.UserToken, "admin", "tok-unknown", "ref-1"))
}

func TestAddClaimsGrantsAdminRole(t *testing.T) {
	v := testVerifier(t)

	claims, err := v.AddClaims(oauth.UserToken, "admin", "tok-1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["roles"])
}
