package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccount_Normalizes(t *testing.T) {
	got, err := ValidateAccount(AccountInput{Email: "  Ana@Example.COM ", Name: "  Ana  ", Password: "s3gredo!!"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "s3gredo!!", got.Password)
}

func TestValidateAccount_ReportsEveryField(t *testing.T) {
	_, err := ValidateAccount(AccountInput{Email: "not-an-email", Name: "A", Password: "short"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "account", ve.Subject)
	assert.True(t, ve.Has("email"))
	assert.True(t, ve.Has("name"))
	assert.True(t, ve.Has("password"))
}

func TestValidateAccount_PasswordByteLimit(t *testing.T) {
	// 40 two-byte runes: within the rune limit, over bcrypt's byte limit.
	pw := strings.Repeat("é", 40)
	_, err := ValidateAccount(AccountInput{Email: "a@b.co", Name: "Ana", Password: pw})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ReasonConstraint, ve.Reason("password"))
}

func TestValidateName(t *testing.T) {
	got, err := ValidateName("  Bia ")
	require.NoError(t, err)
	assert.Equal(t, "Bia", got)

	_, err = ValidateName(" x ")
	require.Error(t, err)
	_, err = ValidateName(strings.Repeat("a", NameMaxRunes+1))
	require.Error(t, err)
	_, err = ValidateName(strings.Repeat("ã", NameMaxRunes))
	require.NoError(t, err)
}
