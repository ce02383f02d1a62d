package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/task-api/internal/api"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
)

// mockTaskManager implements service.TaskManager with configurable
// function fields for testing handlers in isolation.
type mockTaskManager struct {
	createFn func(ctx context.Context, title string, description *string, status, priority string) (*domain.Task, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listFn   func(ctx context.Context, statusFilter, priorityFilter string) ([]*domain.Task, error)
	updateFn func(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	deleteFn func(ctx context.Context, id uuid.UUID) (bool, error)
}

var _ service.TaskManager = (*mockTaskManager)(nil)

func (m *mockTaskManager) Create(ctx context.Context, title string, description *string, status, priority string) (*domain.Task, error) {
	return m.createFn(ctx, title, description, status, priority)
}

func (m *mockTaskManager) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getFn(ctx, id)
}

func (m *mockTaskManager) List(ctx context.Context, statusFilter, priorityFilter string) ([]*domain.Task, error) {
	return m.listFn(ctx, statusFilter, priorityFilter)
}

func (m *mockTaskManager) Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	return m.updateFn(ctx, id, patch)
}

func (m *mockTaskManager) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.deleteFn(ctx, id)
}

// newTestRouter mounts the task handler routes the same way the server does.
func newTestRouter(manager service.TaskManager) http.Handler {
	handler := api.NewTaskHandler(manager)

	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/", handler.CreateTask)
		r.Get("/", handler.ListTasks)
		r.Get("/{id}", handler.GetTask)
		r.Put("/{id}", handler.UpdateTask)
		r.Delete("/{id}", handler.DeleteTask)
	})
	r.Get("/health", api.HealthCheck)
	return r
}

func testTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, nil, "", "")
	require.NoError(t, err)
	return task
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("created task is returned with 201", func(t *testing.T) {
		t.Parallel()

		task := testTask(t, "Buy milk")
		manager := &mockTaskManager{
			createFn: func(_ context.Context, title string, _ *string, status, priority string) (*domain.Task, error) {
				assert.Equal(t, "Buy milk", title)
				assert.Equal(t, "", status)
				assert.Equal(t, "", priority)
				return task, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp api.TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, task.ID.String(), resp.ID)
		assert.Equal(t, "Buy milk", resp.Title)
		assert.Nil(t, resp.Description)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "medium", resp.Priority)
		assert.NotEmpty(t, resp.CreatedAt)
	})

	t.Run("validation errors are listed in details", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			createFn: func(context.Context, string, *string, string, string) (*domain.Task, error) {
				return nil, domain.NewValidationError([]string{
					domain.MsgTitleRequired,
					domain.MsgInvalidStatus,
				})
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPost, "/api/tasks", `{"title":"","status":"done"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Validation failed", resp.Error)
		assert.Equal(t, []string{domain.MsgTitleRequired, domain.MsgInvalidStatus}, resp.Details)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			createFn: func(context.Context, string, *string, string, string) (*domain.Task, error) {
				t.Fatal("create should not be called")
				return nil, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPost, "/api/tasks", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("storage failure maps to 500", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			createFn: func(context.Context, string, *string, string, string) (*domain.Task, error) {
				return nil, fmt.Errorf("%w: write failed", store.ErrStorageIO)
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "write failed")
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	t.Run("tasks are wrapped with a count", func(t *testing.T) {
		t.Parallel()

		first := testTask(t, "First")
		second := testTask(t, "Second")
		manager := &mockTaskManager{
			listFn: func(_ context.Context, statusFilter, priorityFilter string) ([]*domain.Task, error) {
				assert.Equal(t, "", statusFilter)
				assert.Equal(t, "", priorityFilter)
				return []*domain.Task{first, second}, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks", "")

		require.Equal(t, http.StatusOK, rr.Code)

		var resp api.TaskListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Tasks, 2)
		assert.Equal(t, "First", resp.Tasks[0].Title)
		assert.Equal(t, "Second", resp.Tasks[1].Title)
	})

	t.Run("empty result has zero count", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			listFn: func(context.Context, string, string) ([]*domain.Task, error) {
				return nil, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"tasks":[],"count":0}`, rr.Body.String())
	})

	t.Run("filters are forwarded from query parameters", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			listFn: func(_ context.Context, statusFilter, priorityFilter string) ([]*domain.Task, error) {
				assert.Equal(t, "pending", statusFilter)
				assert.Equal(t, "high", priorityFilter)
				return nil, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks?status=pending&priority=high", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("invalid filter maps to 400", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			listFn: func(context.Context, string, string) ([]*domain.Task, error) {
				return nil, fmt.Errorf("%w: status %q", service.ErrInvalidFilter, "done")
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks?status=done", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("existing task is returned", func(t *testing.T) {
		t.Parallel()

		task := testTask(t, "Buy milk")
		manager := &mockTaskManager{
			getFn: func(_ context.Context, id uuid.UUID) (*domain.Task, error) {
				assert.Equal(t, task.ID, id)
				return task, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks/"+task.ID.String(), "")

		require.Equal(t, http.StatusOK, rr.Code)

		var resp api.TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, task.ID.String(), resp.ID)
	})

	t.Run("absent task maps to 404", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			getFn: func(context.Context, uuid.UUID) (*domain.Task, error) {
				return nil, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Task not found")
	})

	t.Run("malformed id maps to 400", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			getFn: func(context.Context, uuid.UUID) (*domain.Task, error) {
				t.Fatal("get should not be called")
				return nil, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodGet, "/api/tasks/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid task ID")
	})
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("patch fields are forwarded", func(t *testing.T) {
		t.Parallel()

		task := testTask(t, "Buy milk")
		updated := task.Clone()
		updated.Status = domain.TaskStatusCompleted

		manager := &mockTaskManager{
			updateFn: func(_ context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
				assert.Equal(t, task.ID, id)
				require.NotNil(t, patch.Status)
				assert.Equal(t, "completed", *patch.Status)
				assert.Nil(t, patch.Title)
				assert.False(t, patch.DescriptionSet)
				assert.Nil(t, patch.Priority)
				return updated, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPut, "/api/tasks/"+task.ID.String(), `{"status":"completed"}`)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp api.TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.Status)
	})

	t.Run("explicit null clears the description", func(t *testing.T) {
		t.Parallel()

		task := testTask(t, "Buy milk")
		cleared := task.Clone()
		cleared.Description = nil

		manager := &mockTaskManager{
			updateFn: func(_ context.Context, _ uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
				assert.True(t, patch.DescriptionSet)
				assert.Nil(t, patch.Description)
				return cleared, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPut, "/api/tasks/"+task.ID.String(), `{"description":null}`)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp api.TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Nil(t, resp.Description)
	})

	t.Run("omitted description is left unchanged", func(t *testing.T) {
		t.Parallel()

		task := testTask(t, "Buy milk")
		manager := &mockTaskManager{
			updateFn: func(_ context.Context, _ uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
				assert.False(t, patch.DescriptionSet)
				assert.Nil(t, patch.Description)
				return task, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPut, "/api/tasks/"+task.ID.String(), `{"title":"Buy milk"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown task maps to 404", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			updateFn: func(context.Context, uuid.UUID, domain.TaskPatch) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPut, "/api/tasks/"+uuid.NewString(), `{"status":"completed"}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid patch maps to 400 with details", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			updateFn: func(context.Context, uuid.UUID, domain.TaskPatch) (*domain.Task, error) {
				return nil, domain.NewValidationError([]string{domain.MsgInvalidPriority})
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodPut, "/api/tasks/"+uuid.NewString(), `{"priority":"urgent"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), domain.MsgInvalidPriority)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("deleted task is confirmed", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		manager := &mockTaskManager{
			deleteFn: func(_ context.Context, got uuid.UUID) (bool, error) {
				assert.Equal(t, id, got)
				return true, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodDelete, "/api/tasks/"+id.String(), "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rr.Body.String())
	})

	t.Run("absent task maps to 404", func(t *testing.T) {
		t.Parallel()

		manager := &mockTaskManager{
			deleteFn: func(context.Context, uuid.UUID) (bool, error) {
				return false, nil
			},
		}

		rr := doRequest(t, newTestRouter(manager), http.MethodDelete, "/api/tasks/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, newTestRouter(&mockTaskManager{}), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "task-api", resp.Service)
	assert.WithinDuration(t, time.Now().UTC(), resp.Timestamp, time.Minute)
}
