package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questmap/worldroute/internal/config"
	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/snapshot"
	"github.com/questmap/worldroute/internal/teleport"
)

func testSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	present := make(map[grid.Coord]struct{})
	var coords []grid.Coord
	for x := int32(0); x <= 9; x++ {
		c := grid.Coord{X: x, Y: 0}
		present[c] = struct{}{}
		coords = append(coords, c)
	}
	tiles := make([]grid.Tile, 0, len(coords))
	for _, c := range coords {
		mask := grid.ComputeWalkMask(grid.Collision{}, func(d grid.Direction) (grid.Collision, bool) {
			_, ok := present[c.Step(d)]
			return grid.Collision{}, ok
		})
		tiles = append(tiles, grid.Tile{Coord: c, Walk: mask, Block: ^mask})
	}
	reg, err := teleport.NewRegistry(nil)
	require.NoError(t, err)
	s, err := snapshot.Build(context.Background(), grid.NewGrid(tiles), &teleport.Set{}, reg,
		snapshot.Options{Landmarks: 16, Workers: 1})
	require.NoError(t, err)
	return s
}

func testServer(t *testing.T, snap *snapshot.Snapshot, reload ReloadFunc) *Server {
	t.Helper()
	return New(config.DefaultRouteServer(), snapshot.NewHandle(snap), reload)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestStatusWithoutSnapshot(t *testing.T) {
	s := testServer(t, nil, nil)
	w := doJSON(t, s, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusReportsVersion(t *testing.T) {
	s := testServer(t, testSnapshot(t), nil)
	w := doJSON(t, s, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Snapshot   snapshot.Version `json:"snapshot"`
		Generation uint64           `json:"generation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Snapshot.Tiles)
	assert.NotEmpty(t, resp.Snapshot.Hash)
	assert.Equal(t, uint64(1), resp.Generation)
}

func TestRouteFoundWithGeometry(t *testing.T) {
	s := testServer(t, testSnapshot(t), nil)
	w := doJSON(t, s, http.MethodPost, "/route", routeRequest{
		Start:          coordJSON{X: 0, Y: 0},
		Goal:           coordJSON{X: 9, Y: 0},
		ReturnGeometry: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp routeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "found", resp.Status)
	assert.Equal(t, int32(9*grid.StraightCost), resp.Cost)
	require.Len(t, resp.Waypoints, 2)
	assert.Equal(t, coordJSON{X: 9, Y: 0}, resp.Waypoints[1])
	require.Len(t, resp.Segments, 1)
	assert.Equal(t, "walk", resp.Segments[0].Kind)
}

func TestRouteWithoutGeometry(t *testing.T) {
	s := testServer(t, testSnapshot(t), nil)
	w := doJSON(t, s, http.MethodPost, "/route", routeRequest{
		Start: coordJSON{X: 0, Y: 0},
		Goal:  coordJSON{X: 9, Y: 0},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp routeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "found", resp.Status)
	assert.Empty(t, resp.Waypoints)
	assert.Empty(t, resp.Segments)
}

func TestRouteUnreachableEndpoint(t *testing.T) {
	s := testServer(t, testSnapshot(t), nil)
	w := doJSON(t, s, http.MethodPost, "/route", routeRequest{
		Start: coordJSON{X: 0, Y: 0},
		Goal:  coordJSON{X: 500, Y: 500},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp routeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unreachable", resp.Status)
	assert.Empty(t, resp.Segments)
}

func TestRouteRejectsMalformedBody(t *testing.T) {
	s := testServer(t, testSnapshot(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/route", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReloadSwapsSnapshot(t *testing.T) {
	snap := testSnapshot(t)
	s := testServer(t, snap, func(context.Context) (*snapshot.Snapshot, error) {
		return snap, nil
	})

	w := doJSON(t, s, http.MethodPost, "/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Generation uint64 `json:"generation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(2), resp.Generation)
}

func TestReloadFailureKeepsCurrent(t *testing.T) {
	snap := testSnapshot(t)
	s := testServer(t, snap, func(context.Context) (*snapshot.Snapshot, error) {
		return nil, errors.New("dataset unavailable")
	})

	w := doJSON(t, s, http.MethodPost, "/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The previously published snapshot still serves.
	w = doJSON(t, s, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
