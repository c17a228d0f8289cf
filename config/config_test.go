package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_JSONRoundTrip(t *testing.T) {
	raw := `[["boundary", "administrative"], ["admin_level", null]]`

	var filters []Filter
	require.NoError(t, json.Unmarshal([]byte(raw), &filters))

	require.Len(t, filters, 2)
	assert.Equal(t, "boundary", filters[0].Key)
	require.NotNil(t, filters[0].Value)
	assert.Equal(t, "administrative", *filters[0].Value)

	assert.Equal(t, "admin_level", filters[1].Key)
	assert.Nil(t, filters[1].Value)

	encoded, err := json.Marshal(filters)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestFilter_Matches(t *testing.T) {
	value := "administrative"
	withValue := Filter{Key: "boundary", Value: &value}
	keyOnly := Filter{Key: "admin_level"}

	tags := map[string]string{"boundary": "administrative", "admin_level": "2"}

	assert.True(t, withValue.Matches(tags))
	assert.True(t, keyOnly.Matches(tags))
	assert.False(t, withValue.Matches(map[string]string{"boundary": "other"}))
	assert.False(t, keyOnly.Matches(map[string]string{}))
}

func TestConfig_MatchesAll(t *testing.T) {
	adminValue := "administrative"
	cfg := &Config{
		Filters: []Filter{
			{Key: "boundary", Value: &adminValue},
			{Key: "admin_level"},
		},
	}

	assert.True(t, cfg.MatchesAll(map[string]string{"boundary": "administrative", "admin_level": "2"}))
	assert.False(t, cfg.MatchesAll(map[string]string{"boundary": "administrative"}))
}

func TestConfig_ExtractTags_Renaming(t *testing.T) {
	renamed := "country_code"
	cfg := &Config{
		ExtractProperties: []PropertyMapping{
			{SourceKey: "ISO3166-1"},
			{SourceKey: "name", RenamedKey: &renamed},
		},
	}

	tags := map[string]string{"ISO3166-1": "DE", "name": "Germany", "unused": "x"}
	result := cfg.ExtractTags(tags)

	assert.Equal(t, "DE", result["ISO3166-1"])
	assert.Equal(t, "Germany", result["country_code"])
	assert.NotContains(t, result, "unused")
	assert.NotContains(t, result, "name")
}

func TestConfig_FullDocumentParse(t *testing.T) {
	doc := `{
		"filters": [["boundary", "administrative"], ["admin_level", "2"]],
		"extract_properties": [["ISO3166-1", null], ["name", "country_name"]],
		"process_property_name": "ISO3166-1"
	}`

	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(doc), &cfg))

	assert.Equal(t, "ISO3166-1", cfg.ProcessPropertyName)
	require.Len(t, cfg.Filters, 2)
	require.Len(t, cfg.ExtractProperties, 2)
	assert.Equal(t, "country_name", cfg.ExtractProperties[1].OutputKey())
}
