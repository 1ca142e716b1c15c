package occurrence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBox() BBox {
	return BBox{MinLon: 5, MinLat: 45, MaxLon: 15, MaxLat: 55}
}

type pageResult struct {
	Key              int64   `json:"key"`
	Species          string  `json:"species"`
	DecimalLongitude float64 `json:"decimalLongitude"`
	DecimalLatitude  float64 `json:"decimalLatitude"`
	Year             int     `json:"year"`
	BasisOfRecord    string  `json:"basisOfRecord"`
	HasCoordinate    bool    `json:"hasCoordinate"`
}

// gbifStub serves two pages of three records each.
func gbifStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("hasCoordinate"))
		assert.NotEmpty(t, r.URL.Query().Get("scientificName"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		page := map[string]any{
			"offset":       offset,
			"limit":        3,
			"count":        6,
			"endOfRecords": offset >= 3,
		}
		var results []pageResult
		for i := 0; i < 3; i++ {
			key := int64(offset + i)
			results = append(results, pageResult{
				Key:              key,
				Species:          "Saxicola rubetra",
				DecimalLongitude: 10,
				DecimalLatitude:  50,
				Year:             2020,
				BasisOfRecord:    "HUMAN_OBSERVATION",
				HasCoordinate:    true,
			})
		}
		page["results"] = results
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
}

func TestClient_Fetch(t *testing.T) {
	t.Parallel()
	srv := gbifStub(t)
	defer srv.Close()

	c := NewClientWith(srv.Client(), srv.URL)
	recs, err := c.Fetch(context.Background(), Query{
		ScientificName: "Saxicola rubetra",
		Box:            testBox(),
	})
	require.NoError(t, err)
	assert.Len(t, recs, 6)
	assert.Equal(t, int64(0), recs[0].Key)
	assert.Equal(t, int64(5), recs[5].Key)
	assert.Equal(t, "Saxicola rubetra", recs[0].Species)
}

func TestClient_FetchRecordCap(t *testing.T) {
	t.Parallel()
	srv := gbifStub(t)
	defer srv.Close()

	c := NewClientWith(srv.Client(), srv.URL)
	recs, err := c.Fetch(context.Background(), Query{
		ScientificName: "Saxicola rubetra",
		Box:            testBox(),
		MaxRecords:     4,
	})
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestClient_FetchDropsBadRecords(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := map[string]any{
			"offset": 0, "limit": 3, "count": 3, "endOfRecords": true,
			"results": []pageResult{
				{Key: 1, DecimalLongitude: 10, DecimalLatitude: 50, HasCoordinate: true},
				{Key: 2, HasCoordinate: false},                                        // no coordinate
				{Key: 3, DecimalLongitude: 120, DecimalLatitude: 5, HasCoordinate: true}, // outside box
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client(), srv.URL)
	recs, err := c.Fetch(context.Background(), Query{ScientificName: "x", Box: testBox()})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0].Key)
}

func TestClient_FetchErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient().Fetch(context.Background(), Query{Box: testBox()})
		assert.ErrorContains(t, err, "scientific name")
	})

	t.Run("bad box", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient().Fetch(context.Background(), Query{ScientificName: "x"})
		assert.ErrorContains(t, err, "no area")
	})

	t.Run("server error aborts", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()
		c := NewClientWith(srv.Client(), srv.URL)
		_, err := c.Fetch(context.Background(), Query{ScientificName: "x", Box: testBox()})
		assert.ErrorContains(t, err, "status 502")
	})

	t.Run("empty result set", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"endOfRecords": true}))
		}))
		defer srv.Close()
		c := NewClientWith(srv.Client(), srv.URL)
		_, err := c.Fetch(context.Background(), Query{ScientificName: "x", Box: testBox()})
		assert.ErrorIs(t, err, ErrNoRecords)
	})
}

func TestBBox(t *testing.T) {
	t.Parallel()

	b := testBox()
	assert.True(t, b.Contains(10, 50))
	assert.False(t, b.Contains(20, 50))
	assert.NoError(t, b.Validate())
	assert.Error(t, BBox{}.Validate())
}
