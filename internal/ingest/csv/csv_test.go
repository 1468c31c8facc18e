package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_DefaultMapping(t *testing.T) {
	input := "timestamp,service,level,message\n" +
		"2025-01-01T00:00:00Z,api,ERROR,boom\n" +
		"2025-01-01T00:01:00Z,db,WARN,slow query\n"

	a, err := NewFromReader(strings.NewReader(input), ',')
	require.NoError(t, err)

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "api", rec["service"])
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "boom", rec["message"])

	rec, ok, err = a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "db", rec["service"])

	_, ok, err = a.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdapter_AliasHeadersMapToSameField(t *testing.T) {
	input := "app,msg,severity\napi,boom,critical\n"
	a, err := NewFromReader(strings.NewReader(input), ',')
	require.NoError(t, err)

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "api", rec["service"])
	assert.Equal(t, "boom", rec["message"])
	assert.Equal(t, "critical", rec["severity"])
}

func TestAdapter_UnknownHeaderCarriedVerbatim(t *testing.T) {
	input := "service,custom_field\napi,hello\n"
	a, err := NewFromReader(strings.NewReader(input), ',')
	require.NoError(t, err)

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", rec["custom_field"])
}

func TestAdapter_CustomDelimiter(t *testing.T) {
	input := "service;message\napi;boom\n"
	a, err := NewFromReader(strings.NewReader(input), ';')
	require.NoError(t, err)

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "boom", rec["message"])
}

func TestAdapter_EmptyFileHasNoHeader(t *testing.T) {
	_, err := NewFromReader(strings.NewReader(""), ',')
	require.Error(t, err)
}
