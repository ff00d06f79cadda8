package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// createTestLogger creates a logger for testing
func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func TestReplaceKeyReferences_Simple(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"gemini-api-key": "sk-12345"}

	input := "api_key = {gemini-api-key}"
	expected := "api_key = sk-12345"

	result := ReplaceKeyReferences(input, kvMap, logger)
	assert.Equal(t, expected, result)
}

func TestReplaceKeyReferences_Multiple(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{
		"key1": "val1",
		"key2": "val2",
		"key3": "val3",
	}

	input := "key1={key1}, key2={key2}, key3={key3}"
	expected := "key1=val1, key2=val2, key3=val3"

	result := ReplaceKeyReferences(input, kvMap, logger)
	assert.Equal(t, expected, result)
}

func TestReplaceKeyReferences_MissingKey(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"other-key": "value"}

	input := "api_key = {missing-key}"
	expected := "api_key = {missing-key}" // Unchanged

	result := ReplaceKeyReferences(input, kvMap, logger)
	assert.Equal(t, expected, result)
}

func TestReplaceKeyReferences_InvalidSyntax(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"invalid key": "value"}

	// Space in key name - doesn't match regex
	input := "api_key = {invalid key}"
	expected := "api_key = {invalid key}" // Unchanged

	result := ReplaceKeyReferences(input, kvMap, logger)
	assert.Equal(t, expected, result)
}

func TestReplaceKeyReferences_Empty(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"key": "value"}

	result := ReplaceKeyReferences("", kvMap, logger)
	assert.Equal(t, "", result)
}

func TestReplaceInStruct_StringFields(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{
		"gemini-api-key": "sk-gem-123",
		"claude-api-key": "sk-cld-456",
	}

	type providerConfig struct {
		APIKey string
		Model  string
	}
	type testConfig struct {
		Gemini providerConfig
		Claude providerConfig
	}

	cfg := &testConfig{
		Gemini: providerConfig{APIKey: "{gemini-api-key}", Model: "gemini-2.0-flash"},
		Claude: providerConfig{APIKey: "{claude-api-key}", Model: "claude-haiku"},
	}

	err := ReplaceInStruct(cfg, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "sk-gem-123", cfg.Gemini.APIKey)
	assert.Equal(t, "sk-cld-456", cfg.Claude.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model, "non-reference values should be untouched")
}

func TestReplaceInStruct_SliceField(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"primary-lang": "eng"}

	type testConfig struct {
		Languages []string
	}

	cfg := &testConfig{Languages: []string{"{primary-lang}", "chi_tra"}}

	err := ReplaceInStruct(cfg, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"eng", "chi_tra"}, cfg.Languages)
}

func TestReplaceInStruct_MapField(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"token": "abc-xyz"}

	type testConfig struct {
		Headers map[string]string
	}

	cfg := &testConfig{Headers: map[string]string{"Authorization": "Bearer {token}"}}

	err := ReplaceInStruct(cfg, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc-xyz", cfg.Headers["Authorization"])
}

func TestReplaceInStruct_PointerField(t *testing.T) {
	logger := createTestLogger()
	kvMap := map[string]string{"db-password": "secret"}

	type inner struct {
		Password string
	}
	type testConfig struct {
		Postgres *inner
		Nil      *inner
	}

	cfg := &testConfig{Postgres: &inner{Password: "{db-password}"}}

	err := ReplaceInStruct(cfg, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Postgres.Password)
	assert.Nil(t, cfg.Nil)
}

func TestReplaceInStruct_RequiresPointer(t *testing.T) {
	logger := createTestLogger()

	type testConfig struct {
		Value string
	}

	err := ReplaceInStruct(testConfig{Value: "{key}"}, map[string]string{}, logger)
	assert.Error(t, err)
}
