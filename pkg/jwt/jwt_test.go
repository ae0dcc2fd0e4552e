package jwt_test

import (
	"testing"

	"github.com/jhoicas/sanse-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateYParse(t *testing.T) {
	token, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", Username: "ana", Role: jwt.RoleEditor}, "sanse", 5)
	require.NoError(t, err)

	id, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "ana", id.Username)
	assert.Equal(t, jwt.RoleEditor, id.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", Role: jwt.RoleAdmin}, "sanse", 5)
	require.NoError(t, err)
	_, err = jwt.Parse("otro-secret", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", Role: jwt.RoleAdmin}, "sanse", -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, token)
	assert.Error(t, err)
}

func TestParse_SinRol(t *testing.T) {
	token, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1"}, "sanse", 5)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, token)
	assert.Error(t, err, "un token sin role no autentica")
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", jwt.Identity{UserID: "u"}, "sanse", 5)
	assert.Error(t, err)
	_, err = jwt.Parse("", "x")
	assert.Error(t, err)
}
