package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"zhujian/internal/bootstrap/config"
	"zhujian/internal/infrastructure/events"
	"zhujian/internal/infrastructure/llm"
	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/infrastructure/persistence/sqlite/repository"
	"zhujian/internal/infrastructure/persistence/sqlite/uow"
	"zhujian/internal/infrastructure/uploads"
	"zhujian/internal/usecase/analytics"
	"zhujian/internal/usecase/assistant"
	"zhujian/internal/usecase/backfill"
	"zhujian/internal/usecase/records"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "httpapi.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Project{}, &model.AcceptanceRecord{}, &model.IssueReport{}, &model.RectificationAction{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewInspectionRepository(db)
	unit := uow.NewUnitOfWork(db)
	cfg := config.Config{}

	recordsSvc := records.NewService(repo, unit, events.NopPublisher{})
	backfillSvc := backfill.NewService(repo, unit)
	analyticsSvc := analytics.NewService(repo, backfillSvc, cfg)

	settings := llm.NewSettings(config.DoubaoConfig{})
	chat := llm.NewDoubaoClient(settings)
	pool := llm.NewPool(2)
	assistantSvc := assistant.NewService(recordsSvc, analyticsSvc, backfillSvc, chat, pool, cfg)

	store := uploads.NewStore(filepath.Join(t.TempDir(), "uploads"))

	server := NewServer(recordsSvc, analyticsSvc, assistantSvc, store, settings, chat, cfg)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any, out any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode POST %s response: %v", path, err)
		}
	}
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode GET %s response: %v", path, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)

	var body map[string]string
	resp := getJSON(t, ts, "/v1/health", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /v1/health status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("health status = %q, want ok", body["status"])
	}
}

func TestEnsureProject(t *testing.T) {
	ts := setupServer(t)

	var created struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	resp := postJSON(t, ts, "/v1/projects/ensure", map[string]any{"name": "示范项目", "address": "城东"}, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ensure project status = %d", resp.StatusCode)
	}
	if created.ID == 0 || created.Name != "示范项目" {
		t.Fatalf("ensure project = %+v", created)
	}

	var projects []projectView
	getJSON(t, ts, "/v1/projects", &projects)
	if len(projects) != 1 || projects[0].Name != "示范项目" {
		t.Fatalf("list projects = %+v", projects)
	}
	if projects[0].Address == nil || *projects[0].Address != "城东" {
		t.Fatalf("project address = %v, want 城东", projects[0].Address)
	}
}

func TestAcceptanceLifecycle(t *testing.T) {
	ts := setupServer(t)

	var created struct {
		ID uint64 `json:"id"`
	}
	resp := postJSON(t, ts, "/v1/acceptance-records", map[string]any{
		"region_text": "3栋12层/客厅",
		"item":        "模板安装",
		"result":      "qualified",
	}, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create acceptance status = %d", resp.StatusCode)
	}
	if created.ID == 0 {
		t.Fatal("create acceptance returned zero id")
	}

	var rec acceptanceView
	getJSON(t, ts, "/v1/acceptance-records/1", &rec)
	if rec.BuildingNo == nil || *rec.BuildingNo != "3栋" {
		t.Fatalf("building_no = %v, want 3栋", rec.BuildingNo)
	}
	if rec.FloorNo == nil || *rec.FloorNo != 12 {
		t.Fatalf("floor_no = %v, want 12", rec.FloorNo)
	}

	var verified struct {
		ID     uint64 `json:"id"`
		Result string `json:"result"`
	}
	postJSON(t, ts, "/v1/acceptance-records/1/verify", map[string]any{
		"result":     "unqualified",
		"remark":     "复验不通过",
		"actor_name": "张工",
	}, &verified)
	if verified.Result != "unqualified" {
		t.Fatalf("verify result = %q, want unqualified", verified.Result)
	}

	var actions []actionView
	getJSON(t, ts, "/v1/acceptance-records/1/actions", &actions)
	if len(actions) != 1 || actions[0].ActionType != "verify" {
		t.Fatalf("acceptance actions = %+v, want one verify", actions)
	}

	resp = getJSON(t, ts, "/v1/acceptance-records/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing record status = %d, want 404", resp.StatusCode)
	}
}

func TestIssueLifecycle(t *testing.T) {
	ts := setupServer(t)

	var created struct {
		ID uint64 `json:"id"`
	}
	postJSON(t, ts, "/v1/issue-reports", map[string]any{
		"region_text":      "5栋3层/走道",
		"description":      "墙面空鼓",
		"severity":         "严重",
		"responsible_unit": "一分包",
	}, &created)
	if created.ID == 0 {
		t.Fatal("create issue returned zero id")
	}

	var open []issueView
	getJSON(t, ts, "/v1/issue-reports?status=open", &open)
	if len(open) != 1 || open[0].Status != "open" {
		t.Fatalf("open issues = %+v", open)
	}

	var closed struct {
		ID       uint64 `json:"id"`
		Status   string `json:"status"`
		ActionID uint64 `json:"action_id"`
	}
	postJSON(t, ts, "/v1/issue-reports/1/close", map[string]any{
		"content":    "已整改完成",
		"actor_role": "监理",
	}, &closed)
	if closed.Status != "closed" || closed.ActionID == 0 {
		t.Fatalf("close issue = %+v", closed)
	}

	var actions []actionView
	getJSON(t, ts, "/v1/issue-reports/1/actions", &actions)
	if len(actions) != 1 || actions[0].ActionType != "close" {
		t.Fatalf("issue actions = %+v, want one close", actions)
	}

	getJSON(t, ts, "/v1/issue-reports?status=open", &open)
	if len(open) != 0 {
		t.Fatalf("open issues after close = %+v, want none", open)
	}
}

func TestCreateIssue_EmptyDescription(t *testing.T) {
	ts := setupServer(t)

	var body errorBody
	resp := postJSON(t, ts, "/v1/issue-reports", map[string]any{"description": "  "}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty description status = %d, want 400", resp.StatusCode)
	}
}

func TestDashboardSummary(t *testing.T) {
	ts := setupServer(t)

	postJSON(t, ts, "/v1/acceptance-records", map[string]any{
		"region_text": "1栋6层", "item": "模板安装", "result": "unqualified",
	}, nil)
	postJSON(t, ts, "/v1/acceptance-records", map[string]any{
		"region_text": "1栋7层", "item": "钢筋绑扎", "result": "qualified",
	}, nil)
	postJSON(t, ts, "/v1/issue-reports", map[string]any{
		"region_text": "1栋6层", "description": "养护不到位", "responsible_unit": "二分包",
	}, nil)

	var summary analytics.Summary
	resp := getJSON(t, ts, "/v1/dashboard/summary", &summary)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status = %d", resp.StatusCode)
	}
	if summary.AcceptanceTotal != 2 || summary.AcceptanceUnqualified != 1 {
		t.Fatalf("summary acceptance = %+v", summary)
	}
	if summary.IssuesOpen != 1 {
		t.Fatalf("summary issues_open = %d, want 1", summary.IssuesOpen)
	}
	if len(summary.TopResponsibleUnits) != 1 || summary.TopResponsibleUnits[0].ResponsibleUnit != "二分包" {
		t.Fatalf("top units = %+v", summary.TopResponsibleUnits)
	}
}

func TestDashboardFocus(t *testing.T) {
	ts := setupServer(t)

	postJSON(t, ts, "/v1/issue-reports", map[string]any{
		"region_text": "2栋4层", "description": "渗漏", "severity": "严重",
	}, nil)

	var pack analytics.FocusPack
	resp := getJSON(t, ts, "/v1/dashboard/focus?time_range_days=7", &pack)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("focus status = %d", resp.StatusCode)
	}
	if pack.Meta.Window.TimeRangeDays != 7 {
		t.Fatalf("window days = %d, want 7", pack.Meta.Window.TimeRangeDays)
	}
	if pack.Metrics.IssuesOpen != 1 || pack.Metrics.IssuesOpenSevere != 1 {
		t.Fatalf("focus metrics = %+v", pack.Metrics)
	}
}

func TestChat_EmptyQuery(t *testing.T) {
	ts := setupServer(t)

	var body errorBody
	resp := postJSON(t, ts, "/v1/ai/chat", map[string]any{"query": "  "}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty query status = %d, want 400", resp.StatusCode)
	}
	if body.Detail != "query is empty" {
		t.Fatalf("detail = %q", body.Detail)
	}
}

func TestChat_ProgressRoute(t *testing.T) {
	ts := setupServer(t)

	postJSON(t, ts, "/v1/acceptance-records", map[string]any{
		"region_text": "1栋6层", "item": "模板安装", "result": "qualified",
	}, nil)

	var out struct {
		Answer string `json:"answer"`
		Meta   struct {
			Route string `json:"route"`
			Tool  *struct {
				Intent string `json:"intent"`
			} `json:"tool"`
		} `json:"meta"`
	}
	resp := postJSON(t, ts, "/v1/ai/chat", map[string]any{"query": "各栋施工到第几层了"}, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d", resp.StatusCode)
	}
	if out.Meta.Tool == nil || out.Meta.Tool.Intent != "progress" {
		t.Fatalf("chat meta = %+v, want progress tool", out.Meta)
	}
	if !strings.Contains(out.Answer, "模板安装到6层") {
		t.Fatalf("chat answer = %q, want progress line", out.Answer)
	}
}

func TestAIStatus_Unconfigured(t *testing.T) {
	ts := setupServer(t)

	var body struct {
		LLM struct {
			Provider   string `json:"provider"`
			Configured bool   `json:"configured"`
		} `json:"llm"`
	}
	getJSON(t, ts, "/v1/ai/status", &body)
	if body.LLM.Provider != "doubao" || body.LLM.Configured {
		t.Fatalf("ai status = %+v", body)
	}
}

func TestUploadPhoto(t *testing.T) {
	ts := setupServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "site.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-jpeg-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	resp, err := http.Post(ts.URL+"/v1/uploads/photo", writer.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /v1/uploads/photo error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}

	var saved struct {
		URL  string `json:"url"`
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if !strings.HasPrefix(saved.Path, "/uploads/") || !strings.HasSuffix(saved.Path, ".jpg") {
		t.Fatalf("upload path = %q", saved.Path)
	}
	if !strings.HasPrefix(saved.URL, ts.URL) {
		t.Fatalf("upload url = %q", saved.URL)
	}

	fileResp, err := http.Get(ts.URL + saved.Path)
	if err != nil {
		t.Fatalf("GET %s error = %v", saved.Path, err)
	}
	defer fileResp.Body.Close()
	if fileResp.StatusCode != http.StatusOK {
		t.Fatalf("static file status = %d", fileResp.StatusCode)
	}
	data, err := io.ReadAll(fileResp.Body)
	if err != nil {
		t.Fatalf("read static file: %v", err)
	}
	if string(data) != "fake-jpeg-bytes" {
		t.Fatalf("static file body = %q", data)
	}
}
