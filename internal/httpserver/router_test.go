package httpserver

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estatecrm/internal/domain"
	"estatecrm/internal/notify"
	customersvc "estatecrm/internal/service/customer"
	"estatecrm/internal/store"

	"github.com/gin-gonic/gin"
)

type memoryKV struct {
	data map[string][]byte
}

func (m *memoryKV) Get(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *memoryKV) Set(key string, value []byte) error {
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryKV) Keys() ([]string, error) { return nil, nil }

// brokenKV fails every write, simulating an unavailable backend.
type brokenKV struct {
	memoryKV
}

func (b *brokenKV) Set(key string, _ []byte) error {
	return &domain.StorageError{Op: "set " + key, Err: errStorageDown}
}

var errStorageDown = errors.New("backend unavailable")

func newTestRouter(t *testing.T, token string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	st := store.NewLocal(&memoryKV{data: map[string][]byte{}}, logger)
	svc := customersvc.New(st, notify.Nop{}, nil, nil, nil, logger)
	return buildRouter(logger, nil, Deps{Customers: svc, APIToken: token})
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_NoLocalStore(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without local store, got %d", rec.Code)
	}
}

func TestUpsertAndList(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Taro","pipelineStatus":"viewing"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, http.MethodGet, "/api/customers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"id":"c1"`) {
		t.Fatalf("list missing record: %s", rec.Body.String())
	}
}

func TestUpsert_InvalidStageRejected(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodPost, "/api/customers", `{"id":"c2","name":"X","pipelineStatus":"not_a_real_stage"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, http.MethodGet, "/api/customers/c2", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("rejected record must not be stored, got %d", rec.Code)
	}
}

func TestTransitionEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	doJSON(router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Taro"}`)

	rec := doJSON(router, http.MethodPost, "/api/customers/c1/transition", `{"stage":"complete"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("transition: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"isActive":false`) {
		t.Fatalf("expected deactivated record, got %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodPost, "/api/customers/c1/transition", `{"stage":"bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown stage, got %d", rec.Code)
	}
}

func TestGetMissingCustomer(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodGet, "/api/customers/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	router := newTestRouter(t, "")
	doJSON(router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Taro"}`)

	rec := doJSON(router, http.MethodDelete, "/api/customers/c1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":true`) {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(router, http.MethodDelete, "/api/customers/c1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":false`) {
		t.Fatalf("idempotent delete: %d %s", rec.Code, rec.Body.String())
	}
}

func TestBearerAuth(t *testing.T) {
	router := newTestRouter(t, "sekrit")

	rec := doJSON(router, http.MethodGet, "/api/customers", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	okRec := httptest.NewRecorder()
	router.ServeHTTP(okRec, req)
	if okRec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", okRec.Code)
	}

	// Health stays open for probes.
	rec = doJSON(router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz must not require auth, got %d", rec.Code)
	}
}

func TestStorageFailure_MapsTo503Warning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	st := store.NewLocal(&brokenKV{memoryKV{data: map[string][]byte{}}}, logger)
	svc := customersvc.New(st, notify.Nop{}, nil, nil, nil, logger)
	router := buildRouter(logger, nil, Deps{Customers: svc})

	rec := doJSON(router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Taro"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when local storage fails, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"warning"`) {
		t.Fatalf("expected warning body, got %s", rec.Body.String())
	}
}

func TestSyncEndpoint_Unavailable(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when sync unavailable, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestExportEndpoint_Unavailable(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodPost, "/api/export", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when export unavailable, got %d body=%s", rec.Code, rec.Body.String())
	}
}
