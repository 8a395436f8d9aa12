package gamma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gammaServer(t *testing.T, markets []map[string]any) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(markets))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestGetTokenPairs_DecodesNestedJSONStrings(t *testing.T) {
	srv, captured := gammaServer(t, []map[string]any{
		{
			"conditionId":  "cond1",
			"clobTokenIds": `["111","222"]`,
			"closed":       false,
		},
	})
	c := NewClient(srv.URL, 5*time.Second)

	pairs, err := c.GetTokenPairs(context.Background(), []string{"cond1"})
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, "111", pairs["cond1"].Token0)
	assert.Equal(t, "222", pairs["cond1"].Token1)
	assert.Equal(t, "/markets", captured.URL.Path)
	assert.Equal(t, []string{"cond1"}, captured.URL.Query()["condition_ids"])
}

func TestGetTokenPairs_SkipsMalformedMarkets(t *testing.T) {
	srv, _ := gammaServer(t, []map[string]any{
		{"conditionId": "bad-list", "clobTokenIds": `["only-one"]`},
		{"conditionId": "not-json", "clobTokenIds": `garbage`},
		{"conditionId": "cond1", "clobTokenIds": `["111","222"]`},
	})
	c := NewClient(srv.URL, 5*time.Second)

	pairs, err := c.GetTokenPairs(context.Background(), []string{"bad-list", "not-json", "cond1"})
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Contains(t, pairs, "cond1")
}

func TestGetResolutions_ClosedMarketCarriesPayouts(t *testing.T) {
	srv, captured := gammaServer(t, []map[string]any{
		{
			"conditionId":   "cond1",
			"clobTokenIds":  `["111","222"]`,
			"outcomePrices": `["1","0"]`,
			"closed":        true,
		},
	})
	c := NewClient(srv.URL, 5*time.Second)

	res, err := c.GetResolutions(context.Background(), []string{"111", "222"})
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.True(t, res["111"].IsResolved)
	assert.Equal(t, [2]float64{1, 0}, res["111"].PayoutFractions)
	assert.Equal(t, res["111"], res["222"])
	assert.Equal(t, []string{"111", "222"}, captured.URL.Query()["clob_token_ids"])
}

func TestGetResolutions_OpenMarketIsUnresolved(t *testing.T) {
	srv, _ := gammaServer(t, []map[string]any{
		{
			"conditionId":  "cond1",
			"clobTokenIds": `["111","222"]`,
			"closed":       false,
		},
	})
	c := NewClient(srv.URL, 5*time.Second)

	res, err := c.GetResolutions(context.Background(), []string{"111"})
	require.NoError(t, err)

	require.Contains(t, res, "111")
	assert.False(t, res["111"].IsResolved)
	assert.Equal(t, "cond1", res["111"].ConditionID)
}

func TestFetchMarkets_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.GetTokenPairs(context.Background(), []string{"cond1"})

	assert.Error(t, err)
}

func TestGetTokenPairs_EmptyInputSkipsRequest(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)

	pairs, err := c.GetTokenPairs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, pairs)
}
