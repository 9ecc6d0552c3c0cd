package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photo-inventory/internal/config"
	"photo-inventory/internal/middleware"
	"photo-inventory/internal/repository/repotest"
	"photo-inventory/internal/service"
	"photo-inventory/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	router http.Handler
	photos *repotest.PhotoRepository
}

type apiOptions struct {
	publicURLs     bool
	nameScope      string
	maxUploadBytes int64
}

func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()

	if opts.nameScope == "" {
		opts.nameScope = config.NameScopeGlobal
	}
	if opts.maxUploadBytes == 0 {
		opts.maxUploadBytes = 1 << 20
	}

	logger := zap.NewNop()
	photoRepo := repotest.NewPhotoRepository()

	userService := service.NewUserService(repotest.NewUserRepository(), "test-secret", 15*time.Minute)
	productService := service.NewProductService(repotest.NewProductRepository(), opts.nameScope)
	photoService := service.NewPhotoService(photoRepo, storage.NewPhotoStore(afero.NewMemMapFs()), "http://api.test")

	auth := middleware.AuthMiddleware(userService, logger)

	r := chi.NewRouter()
	NewUserHandler(userService, logger).RegisterRoutes(r, auth, nil)
	NewProductHandler(productService, logger).RegisterRoutes(r, auth)
	NewPhotoHandler(photoService, logger, opts.maxUploadBytes, opts.publicURLs).RegisterRoutes(r, auth)

	return &testAPI{router: r, photos: photoRepo}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in a user, returning the access token
func (a *testAPI) signup(t *testing.T, email string) string {
	t.Helper()

	creds := CredentialsRequest{Email: email, Password: "password123"}
	w := a.do(t, http.MethodPost, "/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
