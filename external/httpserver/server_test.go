package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/warlocks1507/checkin/internal/access"
	"github.com/warlocks1507/checkin/internal/config"
	"github.com/warlocks1507/checkin/internal/correction"
	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/report"
	"github.com/warlocks1507/checkin/internal/repository/repotest"
	"github.com/warlocks1507/checkin/internal/roster"
	"github.com/warlocks1507/checkin/internal/session"
	"github.com/warlocks1507/checkin/internal/taskboard"
	"github.com/warlocks1507/checkin/internal/webhook"
)

const (
	testMentorKey  = "mentor-secret"
	testManagerKey = "manager-secret"
)

type mockNotifier struct {
	sent []webhook.Notification
}

func (m *mockNotifier) Notify(_ context.Context, n webhook.Notification) error {
	m.sent = append(m.sent, n)
	return nil
}

func newTestServer(t *testing.T, keys map[access.Role]string) (*Server, *repotest.Store) {
	t.Helper()
	cal, err := meetingday.New("America/New_York")
	if err != nil {
		t.Fatalf("failed to create calendar: %v", err)
	}
	store := repotest.New()
	notifier := &mockNotifier{}
	tracker := session.NewTracker(store, cal, notifier, 4*time.Hour)
	svc := Services{
		Tracker:     tracker,
		Roster:      roster.NewService(store),
		Tasks:       taskboard.NewService(store, 7*24*time.Hour),
		Reports:     report.NewService(store, tracker),
		Corrections: correction.NewService(store, cal, notifier, false),
	}
	cfg := &config.Config{Port: 8080}
	return New(cfg, access.NewAuthorizer(keys), svc), store
}

func defaultKeys() map[access.Role]string {
	return map[access.Role]string{access.RoleMentor: testMentorKey, access.RoleManager: testManagerKey}
}

func send(t *testing.T, s *Server, method, path, body string, headers map[string]string) (int, []byte, http.Header) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, data, resp.Header
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func errorOf(t *testing.T, data []byte) string {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("failed to decode error body %q: %v", data, err)
	}
	return e.Error
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())
	status, data, _ := send(t, s, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !strings.Contains(string(data), `"ok":true`) {
		t.Fatalf("expected 200 ok, got %d %s", status, data)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())
	_, _, h := send(t, s, http.MethodGet, "/health", "", map[string]string{headerRequestID: "abc-123"})
	if got := h.Get(headerRequestID); got != "abc-123" {
		t.Fatalf("expected request id abc-123, got %q", got)
	}
	_, _, h = send(t, s, http.MethodGet, "/health", "", nil)
	if h.Get(headerRequestID) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestMentorAuth(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())

	status, data, _ := send(t, s, http.MethodGet, "/api/mentor/status", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d %s", status, data)
	}
	status, _, _ = send(t, s, http.MethodGet, "/api/mentor/status", "", map[string]string{headerAccessKey: "wrong"})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", status)
	}
	status, _, _ = send(t, s, http.MethodGet, "/api/mentor/status", "", map[string]string{headerAccessKey: testManagerKey})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 with manager key, got %d", status)
	}
	status, data, _ = send(t, s, http.MethodGet, "/api/mentor/status", "", map[string]string{headerAppKey: testMentorKey})
	if status != http.StatusOK {
		t.Fatalf("expected 200 with mentor key, got %d %s", status, data)
	}
}

func TestMentorAuth_KeyNotConfigured(t *testing.T) {
	s, _ := newTestServer(t, map[access.Role]string{access.RoleManager: testManagerKey})
	status, data, _ := send(t, s, http.MethodGet, "/api/mentor/status", "", map[string]string{headerAccessKey: "anything"})
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if got := errorOf(t, data); got != "MENTOR_KEY not configured" {
		t.Fatalf("expected MENTOR_KEY not configured, got %q", got)
	}
}

func TestClockIn(t *testing.T) {
	s, store := newTestServer(t, defaultKeys())
	st := store.SeedStudent("Ada Lovelace", "Software")

	status, data, _ := send(t, s, http.MethodPost, "/api/student/clock-in", `{}`, nil)
	if status != http.StatusBadRequest || errorOf(t, data) != "Missing studentId" {
		t.Fatalf("expected 400 Missing studentId, got %d %s", status, data)
	}

	status, data, _ = send(t, s, http.MethodPost, "/api/student/clock-in", `{"studentId":999}`, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown student, got %d %s", status, data)
	}

	status, data, _ = send(t, s, http.MethodPost, "/api/student/clock-in", `{"studentId":`+itoa(st.ID)+`,"workingOn":"drivetrain"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, data)
	}
	var resp struct {
		Session *struct {
			StudentID int64   `json:"student_id"`
			WorkingOn *string `json:"working_on"`
			Subteam   *string `json:"subteam"`
		} `json:"session"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Status != "clocked_in" || resp.Session == nil || resp.Session.StudentID != st.ID {
		t.Fatalf("unexpected response: %s", data)
	}
	if resp.Session.WorkingOn == nil || *resp.Session.WorkingOn != "drivetrain" {
		t.Fatalf("expected working_on drivetrain, got %s", data)
	}

	status, data, _ = send(t, s, http.MethodGet, "/api/student/today/"+itoa(st.ID), "", nil)
	if status != http.StatusOK || !strings.Contains(string(data), `"status":"clocked_in"`) {
		t.Fatalf("expected today clocked_in, got %d %s", status, data)
	}
}

func TestToday_NoSessionIsNull(t *testing.T) {
	s, store := newTestServer(t, defaultKeys())
	st := store.SeedStudent("Ada Lovelace", "")
	status, data, _ := send(t, s, http.MethodGet, "/api/student/today/"+itoa(st.ID), "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, data)
	}
	if !strings.Contains(string(data), `"session":null`) || !strings.Contains(string(data), `"status":"not_clocked_in"`) {
		t.Fatalf("unexpected body: %s", data)
	}

	status, _, _ = send(t, s, http.MethodGet, "/api/student/today/abc", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", status)
	}
}

func TestNeed_InvalidType(t *testing.T) {
	s, store := newTestServer(t, defaultKeys())
	st := store.SeedStudent("Ada Lovelace", "")
	status, data, _ := send(t, s, http.MethodPost, "/api/student/need", `{"studentId":`+itoa(st.ID)+`,"type":"snack","value":true}`, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", status, data)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())
	status, data, _ := send(t, s, http.MethodPost, "/api/student/clock-out", `{"studentId":`, nil)
	if status != http.StatusBadRequest || errorOf(t, data) != "Invalid JSON body" {
		t.Fatalf("expected 400 Invalid JSON body, got %d %s", status, data)
	}
}

func TestTasks_JoinThenList(t *testing.T) {
	s, store := newTestServer(t, defaultKeys())
	st := store.SeedStudent("Ada Lovelace", "")
	mentor := map[string]string{headerAccessKey: testMentorKey}

	status, data, _ := send(t, s, http.MethodPost, "/api/tasks", `{"title":"Wire CAN bus","subteam":"Electrical"}`, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 creating without key, got %d %s", status, data)
	}
	status, data, _ = send(t, s, http.MethodPost, "/api/tasks", `{"title":"Wire CAN bus","subteam":"Electrical"}`, mentor)
	if status != http.StatusOK {
		t.Fatalf("expected 201, got %d %s", status, data)
	}
	var created struct {
		Task taskResponse `json:"task"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if created.Task.Status != "todo" {
		t.Fatalf("expected default status todo, got %s", created.Task.Status)
	}

	path := "/api/tasks/" + itoa(created.Task.ID)
	status, data, _ = send(t, s, http.MethodPost, path+"/join", `{"studentId":`+itoa(st.ID)+`}`, nil)
	if status != http.StatusOK || !strings.Contains(string(data), `"ok":true`) {
		t.Fatalf("expected join ok, got %d %s", status, data)
	}
	status, _, _ = send(t, s, http.MethodPost, "/api/tasks/9999/join", `{"studentId":`+itoa(st.ID)+`}`, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 joining missing task, got %d", status)
	}

	status, data, _ = send(t, s, http.MethodGet, "/api/tasks?subteam=Electrical", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, data)
	}
	var listed struct {
		Tasks []taskListItemResponse `json:"tasks"`
	}
	if err := json.Unmarshal(data, &listed); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	list := listed.Tasks
	if len(list) != 1 || len(list[0].Assignees) != 1 || list[0].Assignees[0].FullName != "Ada Lovelace" {
		t.Fatalf("expected one task with Ada assigned, got %s", data)
	}
	if list[0].IsStale {
		t.Fatal("expected fresh task not to be stale")
	}

	status, data, _ = send(t, s, http.MethodPost, path+"/comments", `{"comment":"check the termination resistor","author_label":"Coach"}`, nil)
	if status != http.StatusOK || !strings.Contains(string(data), `"author_label":"Coach"`) {
		t.Fatalf("expected mentor comment, got %d %s", status, data)
	}
}

func TestAdmin_RequiresManagerKey(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())

	status, _, _ := send(t, s, http.MethodGet, "/api/admin/students", "", map[string]string{headerAccessKey: testMentorKey})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for mentor key, got %d", status)
	}

	manager := map[string]string{headerAccessKey: testManagerKey}
	status, data, _ := send(t, s, http.MethodPost, "/api/admin/students", `{"subteam":"Build"}`, manager)
	if status != http.StatusBadRequest || errorOf(t, data) != "Missing full_name" {
		t.Fatalf("expected 400 Missing full_name, got %d %s", status, data)
	}
	status, data, _ = send(t, s, http.MethodPost, "/api/admin/students", `{"full_name":"Grace Hopper","subteam":"Build"}`, manager)
	if status != http.StatusOK {
		t.Fatalf("expected 201, got %d %s", status, data)
	}
	var created struct {
		Student studentResponse `json:"student"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	status, data, _ = send(t, s, http.MethodPatch, "/api/admin/students/"+itoa(created.Student.ID), `{"is_active":false}`, manager)
	if status != http.StatusOK || !strings.Contains(string(data), `"is_active":false`) {
		t.Fatalf("expected deactivated student, got %d %s", status, data)
	}

	status, data, _ = send(t, s, http.MethodGet, "/api/students", "", nil)
	if status != http.StatusOK || strings.Contains(string(data), "Grace Hopper") {
		t.Fatalf("expected inactive student hidden from public list, got %d %s", status, data)
	}
}

func TestReport_MissingRange(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())
	mentor := map[string]string{headerAccessKey: testMentorKey}
	status, data, _ := send(t, s, http.MethodGet, "/api/mentor/report?end=2026-10-14", "", mentor)
	if status != http.StatusBadRequest || errorOf(t, data) != messageMissingRange {
		t.Fatalf("expected 400 missing range, got %d %s", status, data)
	}
	status, data, _ = send(t, s, http.MethodGet, "/api/mentor/report?start=2026-10-14&end=2026-10-01", "", mentor)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d %s", status, data)
	}
	status, data, _ = send(t, s, http.MethodGet, "/api/mentor/report?start=2026-10-01&end=2026-10-14", "", mentor)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, data)
	}
}

func TestUnclassifiedErrorIsServerError(t *testing.T) {
	s, store := newTestServer(t, defaultKeys())
	store.FailOn = map[string]error{"UpsertSession": errors.New("connection reset")}
	st := store.SeedStudent("Ada Lovelace", "")

	status, data, _ := send(t, s, http.MethodPost, "/api/student/clock-in", `{"studentId":`+itoa(st.ID)+`}`, nil)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d %s", status, data)
	}
	if got := errorOf(t, data); got != messageServerError {
		t.Fatalf("expected %q, got %q", messageServerError, got)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s, _ := newTestServer(t, defaultKeys())
	status, data, _ := send(t, s, http.MethodGet, "/api/nope", "", nil)
	if status != http.StatusNotFound || errorOf(t, data) == "" {
		t.Fatalf("expected JSON 404, got %d %s", status, data)
	}
}

func TestCorrections_RequestListDecide(t *testing.T) {
	s, store := newTestServer(t, defaultKeys())
	st := store.SeedStudent("Ada Lovelace", "")
	mentor := map[string]string{headerAccessKey: testMentorKey}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	yesterday := time.Now().In(loc).AddDate(0, 0, -1).Format(meetingday.DateLayout)
	body := `{"studentId":` + itoa(st.ID) + `,"meetingDate":"` + yesterday + `","clockInTime":"10:00","clockOutTime":"11:00","reason":"forgot"}`

	status, data, _ := send(t, s, http.MethodPost, "/api/student/attendance-correction", body, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, data)
	}
	var created struct {
		Correction correctionResponse `json:"correction"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if created.Correction.Status != "pending" || created.Correction.MeetingDate != yesterday {
		t.Fatalf("unexpected correction: %s", data)
	}

	status, data, _ = send(t, s, http.MethodGet, "/api/mentor/corrections?status=pending", "", mentor)
	if status != http.StatusOK || !strings.Contains(string(data), `"id":`+itoa(created.Correction.ID)) {
		t.Fatalf("expected pending correction listed, got %d %s", status, data)
	}

	decide := "/api/mentor/corrections/" + itoa(created.Correction.ID) + "/decide"
	status, data, _ = send(t, s, http.MethodPost, decide, `{"status":"pending"}`, mentor)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for pending status, got %d %s", status, data)
	}
	status, data, _ = send(t, s, http.MethodPost, decide, `{"status":"approved","decidedBy":"Coach"}`, mentor)
	if status != http.StatusOK || !strings.Contains(string(data), `"status":"approved"`) {
		t.Fatalf("expected approved, got %d %s", status, data)
	}
	status, data, _ = send(t, s, http.MethodPost, decide, `{"status":"denied"}`, mentor)
	if status != http.StatusConflict || errorOf(t, data) != "Correction already decided" {
		t.Fatalf("expected 409 already decided, got %d %s", status, data)
	}
}
