package service

import (
	"testing"

	"loteamento/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, 3.5, DecodeValue("3.5", domain.ConfigNumber))
	assert.Equal(t, "abc", DecodeValue("abc", domain.ConfigNumber))
	assert.Equal(t, true, DecodeValue("1", domain.ConfigBoolean))
	assert.Equal(t, true, DecodeValue("true", domain.ConfigBoolean))
	assert.Equal(t, false, DecodeValue("yes", domain.ConfigBoolean))
	assert.Equal(t, map[string]any{"a": 1.0}, DecodeValue(`{"a":1}`, domain.ConfigJSON))
	assert.Equal(t, "{broken", DecodeValue("{broken", domain.ConfigJSON))
	assert.Equal(t, "plain", DecodeValue("plain", domain.ConfigString))
}

func TestEncodeValue(t *testing.T) {
	assert.Equal(t, "true", EncodeValue(true, domain.ConfigBoolean))
	assert.Equal(t, "true", EncodeValue("1", domain.ConfigBoolean))
	assert.Equal(t, "12.5", EncodeValue(12.5, domain.ConfigNumber))
	assert.Equal(t, `{"a":[1,2]}`, EncodeValue(map[string]any{"a": []any{1.0, 2.0}}, domain.ConfigJSON))
	assert.Equal(t, "texto", EncodeValue("texto", domain.ConfigString))
	assert.Equal(t, "", EncodeValue(nil, domain.ConfigString))
}

func TestInferType(t *testing.T) {
	assert.Equal(t, domain.ConfigBoolean, InferType(false))
	assert.Equal(t, domain.ConfigNumber, InferType(2.0))
	assert.Equal(t, domain.ConfigJSON, InferType(map[string]any{}))
	assert.Equal(t, domain.ConfigJSON, InferType([]any{}))
	assert.Equal(t, domain.ConfigString, InferType("x"))
}

func TestConfigService_CRUD(t *testing.T) {
	env := newTestEnv(t)

	e, err := env.configs.Create(testActor, ConfigInput{Key: "max_fotos", Value: 8.0, Type: domain.ConfigNumber})
	require.NoError(t, err)
	assert.Equal(t, "8", e.Value)

	_, err = env.configs.Create(testActor, ConfigInput{Key: "max_fotos", Value: 9.0})
	assert.ErrorIs(t, err, ErrConfigKeyExists)

	_, err = env.configs.Create(testActor, ConfigInput{Key: "x", Value: "y", Type: "date"})
	assert.ErrorIs(t, err, ErrInvalidConfigType)

	view, err := env.configs.Get("max_fotos")
	require.NoError(t, err)
	assert.Equal(t, 8.0, view.Decoded)

	_, err = env.configs.Update(testActor, "max_fotos", ConfigUpdate{Value: 10.0})
	require.NoError(t, err)
	view, err = env.configs.Get("max_fotos")
	require.NoError(t, err)
	assert.Equal(t, 10.0, view.Decoded)

	require.NoError(t, env.configs.Delete(testActor, "max_fotos"))
	_, err = env.configs.Get("max_fotos")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfigService_Bulk(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.configs.Bulk(testActor, map[string]any{
		"telefone":       "(34) 3333-3333",
		"mostrar_precos": true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Created)

	created, err := env.configs.Get("mostrar_precos")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfigBoolean, created.Type)
	assert.Equal(t, true, created.Decoded)

	values, _, err := env.configs.All()
	require.NoError(t, err)
	assert.Equal(t, "(34) 3333-3333", values["telefone"])
	assert.Equal(t, int64(1), countActions(t, env.db, domain.ActionBulkUpdate))
}

func TestConfigService_PublicKeysOnly(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.configs.Create(testActor, ConfigInput{Key: "smtp_senha", Value: "secret"})
	require.NoError(t, err)

	pub, err := env.configs.Public()
	require.NoError(t, err)
	assert.Len(t, pub, len(domain.PublicConfigKeys))
	assert.NotContains(t, pub, "smtp_senha")
	assert.Equal(t, "Loteamento Ibiza", pub["titulo_site"])
}
