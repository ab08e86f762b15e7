package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/search"
)

type coordJSON struct {
	X     int32 `json:"x"`
	Y     int32 `json:"y"`
	Plane int32 `json:"plane"`
}

func (c coordJSON) coord() grid.Coord {
	return grid.Coord{X: c.X, Y: c.Y, Plane: c.Plane}
}

func toCoordJSON(c grid.Coord) coordJSON {
	return coordJSON{X: c.X, Y: c.Y, Plane: c.Plane}
}

type routeRequest struct {
	Start          coordJSON        `json:"start"`
	Goal           coordJSON        `json:"goal"`
	Profile        map[string]int64 `json:"profile"`
	ReturnGeometry bool             `json:"return_geometry"`
}

type segmentJSON struct {
	Kind      string      `json:"kind"`
	From      coordJSON   `json:"from"`
	To        coordJSON   `json:"to"`
	Cost      int32       `json:"cost"`
	Teleport  string      `json:"teleport,omitempty"`
	Waypoints []coordJSON `json:"waypoints,omitempty"`
}

type routeResponse struct {
	Status    string        `json:"status"`
	Cost      int32         `json:"cost"`
	Length    int32         `json:"length"`
	Expanded  int           `json:"expanded"`
	Waypoints []coordJSON   `json:"waypoints,omitempty"`
	Segments  []segmentJSON `json:"segments,omitempty"`
}

func (s *Server) handleRoute(c *gin.Context) {
	snap := s.handle.Acquire()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot published"})
		return
	}

	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryDeadline)
	defer cancel()

	prof := search.CompileProfile(snap.Registry(), req.Profile)
	eng := search.New(snap).WithMaxExpansions(s.cfg.MaxExpansions)

	started := time.Now()
	res := eng.Route(ctx, req.Start.coord(), req.Goal.coord(), prof)
	slog.Debug("route query",
		"status", res.Status.String(),
		"cost", res.Cost,
		"expanded", res.Expanded,
		"took", time.Since(started))

	resp := routeResponse{
		Status:   res.Status.String(),
		Cost:     res.Cost,
		Length:   res.Length,
		Expanded: res.Expanded,
	}
	if res.Status == search.StatusFound && req.ReturnGeometry {
		resp.Waypoints = make([]coordJSON, len(res.Waypoints))
		for i, w := range res.Waypoints {
			resp.Waypoints[i] = toCoordJSON(w)
		}
		resp.Segments = make([]segmentJSON, len(res.Segments))
		for i, seg := range res.Segments {
			sj := segmentJSON{
				Kind: seg.Kind.String(),
				From: toCoordJSON(seg.From),
				To:   toCoordJSON(seg.To),
				Cost: seg.Cost,
			}
			if seg.Kind == search.SegmentTeleport {
				sj.Teleport = seg.Teleport.String()
			} else {
				sj.Waypoints = make([]coordJSON, len(seg.Waypoints))
				for j, w := range seg.Waypoints {
					sj.Waypoints[j] = toCoordJSON(w)
				}
			}
			resp.Segments[i] = sj
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStatus(c *gin.Context) {
	snap := s.handle.Acquire()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot published"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot":   snap.Version(),
		"generation": s.handle.Generation(),
	})
}

func (s *Server) handleReload(c *gin.Context) {
	if s.reload == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "reload not configured"})
		return
	}
	snap, err := s.reload(c.Request.Context())
	if err != nil {
		slog.Error("snapshot reload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	gen := s.handle.Swap(snap)
	c.JSON(http.StatusOK, gin.H{
		"snapshot":   snap.Version(),
		"generation": gen,
	})
}
