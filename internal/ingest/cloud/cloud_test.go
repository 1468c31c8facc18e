package cloud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns one page from pages per call, in order, always
// reporting the next index as its page token until pages are
// exhausted.
func fakeFetcher(pages [][]LogEntry) FetchFunc {
	i := 0
	return func(ctx context.Context) ([]LogEntry, string, error) {
		if i >= len(pages) {
			return nil, "", nil
		}
		page := pages[i]
		i++
		token := ""
		if i < len(pages) {
			token = "more"
		}
		return page, token, nil
	}
}

func TestCloudWatchAdapter_DrainsMultiplePages(t *testing.T) {
	pages := [][]LogEntry{
		{{Service: "checkout", Severity: "INFO", Message: "started"}},
		{{Service: "checkout", Severity: "ERROR", Message: "failed"}},
	}
	a := NewCloudWatchAdapter(fakeFetcher(pages))

	var messages []string
	for {
		rec, ok, err := a.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		messages = append(messages, rec["message"].(string))
	}
	assert.Equal(t, []string{"started", "failed"}, messages)
}

func TestCloudWatchAdapter_EmptyFinalPageStopsCleanly(t *testing.T) {
	pages := [][]LogEntry{
		{{Service: "svc", Severity: "INFO", Message: "one"}},
		{},
	}
	a := NewCloudWatchAdapter(fakeFetcher(pages))

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", rec["message"])

	_, ok, err = a.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCloudWatchAdapter_PropagatesFetchError(t *testing.T) {
	fetch := func(ctx context.Context) ([]LogEntry, string, error) {
		return nil, "", errors.New("throttled")
	}
	a := NewCloudWatchAdapter(fetch)

	_, ok, err := a.Next(context.Background())
	assert.False(t, ok)
	assert.EqualError(t, err, "throttled")
}

func TestCloudWatchAdapter_MapsEntryShapeAndProviderTag(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pages := [][]LogEntry{
		{{
			Timestamp: ts,
			Severity:  "WARN",
			Service:   "api",
			Message:   "slow query",
			Metadata:  map[string]interface{}{"log_group": "/api/prod"},
		}},
	}
	a := NewCloudWatchAdapter(fakeFetcher(pages))

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "api", rec["service"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "slow query", rec["message"])
	assert.Equal(t, "cloudwatch", rec["cloud_provider"])
	assert.Equal(t, "/api/prod", rec["log_group"])
	assert.Equal(t, ts.Format(time.RFC3339Nano), rec["timestamp"])
}

func TestCloudLoggingAdapter_UsesCloudLoggingProviderTag(t *testing.T) {
	pages := [][]LogEntry{{{Service: "billing", Message: "ok"}}}
	a := NewCloudLoggingAdapter(fakeFetcher(pages))

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cloudlogging", rec["cloud_provider"])
}

func TestAzureMonitorAdapter_UsesAzureMonitorProviderTag(t *testing.T) {
	pages := [][]LogEntry{{{Service: "billing", Message: "ok"}}}
	a := NewAzureMonitorAdapter(fakeFetcher(pages))

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "azuremonitor", rec["cloud_provider"])
}

func TestPagingAdapter_ZeroEntryPageWithTokenKeepsPolling(t *testing.T) {
	pages := [][]LogEntry{
		{},
		{{Service: "svc", Message: "eventually"}},
	}
	a := NewCloudWatchAdapter(fakeFetcher(pages))

	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "eventually", rec["message"])
}

func TestPagingAdapter_ExtensionsIsNilForFileLessAdapter(t *testing.T) {
	a := NewCloudWatchAdapter(fakeFetcher(nil))
	assert.Nil(t, a.Extensions())
}
