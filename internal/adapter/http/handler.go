// Package httpadapter serves the read-mostly ops API beside the poll
// loop: defense states, the expedition catalog, notifications and KPIs.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/warden"
)

type defenseStatusProvider interface {
	DefenseStatuses() []warden.DefenseStatus
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Agent         defenseStatusProvider
	Expeditions   ports.ExpeditionRepository
	Notifications ports.NotificationRepository
	KPI           kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.GET("/healthz", h.health)
	ops := s.Group("/ops")
	ops.GET("/status", h.status)
	ops.GET("/kpi", h.kpi)
	ops.GET("/notifications", h.notifications)
	ops.GET("/expeditions", h.listExpeditions)
	ops.POST("/expeditions", h.saveExpedition)
	ops.DELETE("/expeditions/:id", h.deleteExpedition)
}

func (h Handler) health(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) status(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{
		"bodies": h.Agent.DefenseStatuses(),
	})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) notifications(c context.Context, ctx *app.RequestContext) {
	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := h.Notifications.ListRecent(c, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"notifications": items})
}

type expeditionEntry struct {
	Definition warden.ExpeditionDefinition `json:"definition"`
	RunState   *warden.ExpeditionRunState  `json:"run_state,omitempty"`
}

func (h Handler) listExpeditions(c context.Context, ctx *app.RequestContext) {
	defs, err := h.Expeditions.ListDefinitions(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := make([]expeditionEntry, 0, len(defs))
	for _, def := range defs {
		entry := expeditionEntry{Definition: def}
		if st, err := h.Expeditions.GetRunState(c, def.ID); err == nil {
			entry.RunState = &st
		}
		out = append(out, entry)
	}
	ctx.JSON(consts.StatusOK, map[string]any{"expeditions": out})
}

func (h Handler) saveExpedition(c context.Context, ctx *app.RequestContext) {
	var def warden.ExpeditionDefinition
	if err := json.Unmarshal(ctx.Request.Body(), &def); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if def.ID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_id", "definition id is required")
		return
	}
	if !def.Ships.HasShips() {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_ships", "definition needs at least one ship")
		return
	}
	if def.Speed <= 0 || def.Speed > 100 {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_speed", "speed must be a percentage in (0,100]")
		return
	}
	if err := h.Expeditions.SaveDefinition(c, def); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"saved": def.ID})
}

func (h Handler) deleteExpedition(c context.Context, ctx *app.RequestContext) {
	id := ctx.Param("id")
	if err := h.Expeditions.DeleteDefinition(c, id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"deleted": id})
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal", err.Error())
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]string{"code": code, "message": message})
}
