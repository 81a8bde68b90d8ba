package httpadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"

	"fleetwarden/internal/adapter/metrics/inmemory"
	"fleetwarden/internal/adapter/repo/memory"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/warden"
)

var home = galaxy.Coordinate{Galaxy: 1, System: 100, Position: 8, Type: galaxy.TypePlanet}

type stubStatusProvider struct {
	statuses []warden.DefenseStatus
}

func (s stubStatusProvider) DefenseStatuses() []warden.DefenseStatus { return s.statuses }

func testHandler() (Handler, *memory.Store) {
	store := memory.NewStore()
	return Handler{
		Agent: stubStatusProvider{statuses: []warden.DefenseStatus{
			{Body: home, State: warden.StateSafe},
		}},
		Expeditions:   store,
		Notifications: store,
		KPI:           inmemory.NewRecorder(),
	}, store
}

func TestHealth(t *testing.T) {
	h, _ := testHandler()
	ctx := &app.RequestContext{}

	h.health(context.Background(), ctx)

	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("status=%d", got)
	}
	var body map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, ctx.Response.Body())
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestStatus_ListsDefenseStates(t *testing.T) {
	h, _ := testHandler()
	ctx := &app.RequestContext{}

	h.status(context.Background(), ctx)

	var body struct {
		Bodies []warden.DefenseStatus `json:"bodies"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, ctx.Response.Body())
	}
	if len(body.Bodies) != 1 || body.Bodies[0].State != warden.StateSafe {
		t.Fatalf("unexpected statuses: %+v", body.Bodies)
	}
}

func TestKPI(t *testing.T) {
	h, _ := testHandler()
	ctx := &app.RequestContext{}

	h.kpi(context.Background(), ctx)

	var body inmemory.Snapshot
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, ctx.Response.Body())
	}
	if body.CycleTotal != 0 {
		t.Fatalf("fresh recorder should report zero cycles, got %d", body.CycleTotal)
	}
}

func TestExpeditions_SaveListDelete(t *testing.T) {
	h, _ := testHandler()
	bg := context.Background()

	save := &app.RequestContext{}
	save.Request.SetBody([]byte(`{
		"id": "exp-1",
		"origin": {"galaxy": 1, "system": 100, "position": 8, "type": 1},
		"ships": {"203": 5},
		"speed": 100,
		"repeat": -1,
		"enabled": true
	}`))
	h.saveExpedition(bg, save)
	if got := save.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("save status=%d body=%s", got, save.Response.Body())
	}

	list := &app.RequestContext{}
	h.listExpeditions(bg, list)
	var listed struct {
		Expeditions []expeditionEntry `json:"expeditions"`
	}
	if err := json.Unmarshal(list.Response.Body(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v body=%s", err, list.Response.Body())
	}
	if len(listed.Expeditions) != 1 || listed.Expeditions[0].Definition.ID != "exp-1" {
		t.Fatalf("unexpected list: %+v", listed.Expeditions)
	}

	del := &app.RequestContext{}
	del.Params = param.Params{{Key: "id", Value: "exp-1"}}
	h.deleteExpedition(bg, del)
	if got := del.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("delete status=%d body=%s", got, del.Response.Body())
	}

	again := &app.RequestContext{}
	again.Params = param.Params{{Key: "id", Value: "exp-1"}}
	h.deleteExpedition(bg, again)
	if got := again.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", got)
	}
}

func TestSaveExpedition_Validation(t *testing.T) {
	h, _ := testHandler()
	bg := context.Background()

	cases := []struct {
		name string
		body string
	}{
		{"broken json", `{`},
		{"missing id", `{"ships": {"203": 1}, "speed": 100}`},
		{"no ships", `{"id": "exp-1", "speed": 100}`},
		{"bad speed", `{"id": "exp-1", "ships": {"203": 1}, "speed": 250}`},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		ctx.Request.SetBody([]byte(tc.body))
		h.saveExpedition(bg, ctx)
		if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", tc.name, got, ctx.Response.Body())
		}
	}
}

func TestNotifications_RespectsLimit(t *testing.T) {
	h, store := testHandler()
	bg := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []warden.NotificationKind{
		warden.NotifyThreatDetected, warden.NotifyFleetSaved, warden.NotifyThreatCleared,
	} {
		if err := store.Append(bg, warden.Notification{Kind: kind, OccurredAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/ops/notifications?limit=2")
	h.notifications(bg, ctx)

	var body struct {
		Notifications []warden.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, ctx.Response.Body())
	}
	if len(body.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(body.Notifications))
	}
}
