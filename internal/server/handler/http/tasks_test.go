package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/middleware"
	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/go-chi/chi/v5"
)

// mockTaskService implements TaskService with overridable funcs.
type mockTaskService struct {
	ListFunc   func(ctx context.Context, ownerID string, status models.TaskStatus, search string) ([]models.Task, error)
	GetFunc    func(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	CreateFunc func(ctx context.Context, ownerID, title, description string) (*models.Task, error)
	UpdateFunc func(ctx context.Context, ownerID, taskID string, status models.TaskStatus) (*models.Task, error)
	DeleteFunc func(ctx context.Context, ownerID, taskID string) error
}

func (m *mockTaskService) ListTasks(ctx context.Context, ownerID string, status models.TaskStatus, search string) ([]models.Task, error) {
	return m.ListFunc(ctx, ownerID, status, search)
}

func (m *mockTaskService) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	return m.GetFunc(ctx, ownerID, taskID)
}

func (m *mockTaskService) CreateTask(ctx context.Context, ownerID, title, description string) (*models.Task, error) {
	return m.CreateFunc(ctx, ownerID, title, description)
}

func (m *mockTaskService) UpdateTaskStatus(ctx context.Context, ownerID, taskID string, status models.TaskStatus) (*models.Task, error) {
	return m.UpdateFunc(ctx, ownerID, taskID, status)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	return m.DeleteFunc(ctx, ownerID, taskID)
}

var owner = &models.User{ID: "owner-1", Username: "alice"}

// authedRequest builds a request as BearerAuth would leave it, with id set
// as the chi route parameter when non-empty.
func authedRequest(method, target, body, id string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	ctx := middleware.WithUser(req.Context(), owner)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func sampleTask(id string, status models.TaskStatus) *models.Task {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.Task{ID: id, Title: "Buy milk", Description: "2 liters", Status: status, UserID: owner.ID, CreatedAt: ts, UpdatedAt: ts}
}

func TestTaskHandler_List(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		listErr      error
		expectedCode int
		wantStatus   models.TaskStatus
		wantSearch   string
		wantCalled   bool
	}{
		{name: "no filters", query: "", expectedCode: http.StatusOK, wantCalled: true},
		{name: "status and search", query: "?status=DONE&search=milk", expectedCode: http.StatusOK, wantStatus: models.StatusDone, wantSearch: "milk", wantCalled: true},
		{name: "invalid status", query: "?status=ARCHIVED", expectedCode: http.StatusBadRequest},
		{name: "empty status", query: "?status=", expectedCode: http.StatusBadRequest},
		{name: "empty search", query: "?search=", expectedCode: http.StatusBadRequest},
		{name: "whitespace search is a substring", query: "?search=%20", expectedCode: http.StatusOK, wantSearch: " ", wantCalled: true},
		{name: "service failure", query: "", listErr: apperrors.Internal("failed to retrieve tasks", errors.New("boom")), expectedCode: http.StatusInternalServerError, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockTaskService{
				ListFunc: func(_ context.Context, ownerID string, status models.TaskStatus, search string) ([]models.Task, error) {
					called = true
					if ownerID != owner.ID {
						t.Errorf("ownerID = %q", ownerID)
					}
					if status != tt.wantStatus || search != tt.wantSearch {
						t.Errorf("filters = (%q, %q); want (%q, %q)", status, search, tt.wantStatus, tt.wantSearch)
					}
					if tt.listErr != nil {
						return nil, tt.listErr
					}
					return []models.Task{*sampleTask("t1", models.StatusDone)}, nil
				},
			}
			h := &TaskHandler{TaskService: svc}
			rec := httptest.NewRecorder()
			h.List(rec, authedRequest(http.MethodGet, "/api/tasks"+tt.query, "", ""))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d (%s)", tt.expectedCode, rec.Code, rec.Body.String())
			}
			if called != tt.wantCalled {
				t.Errorf("service called = %v; want %v", called, tt.wantCalled)
			}
			if rec.Code == http.StatusOK {
				var got []models.Task
				if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if len(got) != 1 || got[0].ID != "t1" {
					t.Errorf("unexpected tasks: %+v", got)
				}
			}
		})
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	svc := &mockTaskService{
		ListFunc: func(context.Context, string, models.TaskStatus, string) ([]models.Task, error) {
			return []models.Task{}, nil
		},
	}
	h := &TaskHandler{TaskService: svc}
	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/tasks", "", ""))

	if got := bytes.TrimSpace(rec.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %s; want []", got)
	}
}

func TestTaskHandler_Get(t *testing.T) {
	svc := &mockTaskService{
		GetFunc: func(_ context.Context, ownerID, taskID string) (*models.Task, error) {
			if taskID == "t1" && ownerID == owner.ID {
				return sampleTask("t1", models.StatusOpen), nil
			}
			return nil, apperrors.NotFound("no task found with id " + taskID)
		},
	}
	h := &TaskHandler{TaskService: svc}

	rec := httptest.NewRecorder()
	h.Get(rec, authedRequest(http.MethodGet, "/api/tasks/t1", "", "t1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["id"] != "t1" || payload["status"] != "OPEN" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if _, ok := payload["userId"]; ok {
		t.Error("owner id must not be serialized")
	}

	rec = httptest.NewRecorder()
	h.Get(rec, authedRequest(http.MethodGet, "/api/tasks/zzz", "", "zzz"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("no task found with id zzz")) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestTaskHandler_Create(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
		wantCalled   bool
	}{
		{name: "invalid JSON", body: `nope`, expectedCode: http.StatusBadRequest},
		{name: "blank title", body: `{"title":"  ","description":"d"}`, expectedCode: http.StatusBadRequest},
		{name: "missing description", body: `{"title":"t"}`, expectedCode: http.StatusBadRequest},
		{name: "created", body: `{"title":"Buy milk","description":"2 liters"}`, expectedCode: http.StatusCreated, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockTaskService{
				CreateFunc: func(_ context.Context, ownerID, title, description string) (*models.Task, error) {
					called = true
					if ownerID != owner.ID || title != "Buy milk" || description != "2 liters" {
						t.Errorf("unexpected args (%q, %q, %q)", ownerID, title, description)
					}
					return sampleTask("new", models.StatusOpen), nil
				},
			}
			h := &TaskHandler{TaskService: svc}
			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/tasks", tt.body, ""))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if called != tt.wantCalled {
				t.Errorf("service called = %v; want %v", called, tt.wantCalled)
			}
		})
	}
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		expectedCode int
	}{
		{name: "invalid JSON", body: `{`, expectedCode: http.StatusBadRequest},
		{name: "invalid status", body: `{"status":"ARCHIVED"}`, err: apperrors.Validation("invalid status: ARCHIVED"), expectedCode: http.StatusBadRequest},
		{name: "not found", body: `{"status":"DONE"}`, err: apperrors.NotFound("no task found with id t1"), expectedCode: http.StatusNotFound},
		{name: "updated", body: `{"status":"DONE"}`, expectedCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTaskService{
				UpdateFunc: func(_ context.Context, ownerID, taskID string, status models.TaskStatus) (*models.Task, error) {
					if taskID != "t1" {
						t.Errorf("taskID = %q", taskID)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					return sampleTask(taskID, status), nil
				},
			}
			h := &TaskHandler{TaskService: svc}
			rec := httptest.NewRecorder()
			h.UpdateStatus(rec, authedRequest(http.MethodPatch, "/api/tasks/t1/status", tt.body, "t1"))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if rec.Code == http.StatusOK && !bytes.Contains(rec.Body.Bytes(), []byte(`"status":"DONE"`)) {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	svc := &mockTaskService{
		DeleteFunc: func(_ context.Context, ownerID, taskID string) error {
			if taskID == "t1" {
				return nil
			}
			return apperrors.NotFound("no task found with id " + taskID)
		},
	}
	h := &TaskHandler{TaskService: svc}

	rec := httptest.NewRecorder()
	h.Delete(rec, authedRequest(http.MethodDelete, "/api/tasks/t1", "", "t1"))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, authedRequest(http.MethodDelete, "/api/tasks/t2", "", "t2"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
