package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	vsmocks "docrag/internal/vectorstore/mocks"
)

func TestHealthHandlerHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	vectors := vsmocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().CollectionExists(gomock.Any(), "documents").Return(true, nil)

	handler := NewHealthHandler(vectors, "documents")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Checks["vector_store"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHealthHandlerVectorStoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	vectors := vsmocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().CollectionExists(gomock.Any(), "documents").Return(false, errors.New("connection refused"))

	handler := NewHealthHandler(vectors, "documents")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %q", resp.Status)
	}
}
