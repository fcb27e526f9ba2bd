package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docrag/internal/docstore"
	handlermocks "docrag/internal/handlers/mocks"
	vsmocks "docrag/internal/vectorstore/mocks"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)

	vectors := vsmocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().CollectionExists(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	return NewRouter(&Deps{
		Store:       docstore.New(),
		Pipeline:    handlermocks.NewMockIngestor(ctrl),
		Assembler:   handlermocks.NewMockAnswerer(ctrl),
		VectorStore: vectors,
		Collection:  "documents",
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "chat requires session",
			method:     http.MethodPost,
			path:       "/api/chat",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "upload requires documents",
			method:     http.MethodPost,
			path:       "/api/upload",
			body:       `{"session_id":"s1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "summarize requires session",
			method:     http.MethodPost,
			path:       "/api/summarize",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "documents listing",
			method:     http.MethodGet,
			path:       "/api/sessions/s1/documents",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			path:       "/api/chat",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}
