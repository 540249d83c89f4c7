package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/photoshare/core/api"
	"github.com/dmitrymomot/photoshare/core/model"
	"github.com/dmitrymomot/photoshare/core/upload"
)

// recorder keeps the last request seen by the fake server.
type recorder struct {
	mu   sync.Mutex
	reqs []*http.Request
	hits atomic.Int32
}

func (r *recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.hits.Add(1)
		r.mu.Lock()
		r.reqs = append(r.reqs, req.Clone(context.Background()))
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (r *recorder) last() *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reqs) == 0 {
		return nil
	}
	return r.reqs[len(r.reqs)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, setup func(r *mux.Router)) (*httptest.Server, *recorder) {
	t.Helper()
	r := mux.NewRouter()
	setup(r)
	rec := &recorder{}
	r.Use(rec.wrap)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(t *testing.T, baseURL string, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.New(baseURL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := api.New("")
	assert.ErrorIs(t, err, api.ErrEmptyBaseURL)

	_, err = api.New("localhost:3001")
	assert.ErrorIs(t, err, api.ErrInvalidBaseURL)

	c, err := api.New("http://localhost:3001/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", c.BaseURL())
}

func TestDo_Headers(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/user/list", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.User{})
		}).Methods(http.MethodGet)
	})

	t.Run("no token", func(t *testing.T) {
		c := newClient(t, srv.URL)
		_, err := c.ListUsers(context.Background())
		require.NoError(t, err)

		req := rec.last()
		assert.Empty(t, req.Header.Get("Authorization"))
		_, err = uuid.Parse(req.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	t.Run("token source", func(t *testing.T) {
		c := newClient(t, srv.URL, api.WithTokenSource(func() (string, bool) { return "tok-1", true }))
		_, err := c.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-1", rec.last().Header.Get("Authorization"))
	})

	t.Run("context override", func(t *testing.T) {
		c := newClient(t, srv.URL, api.WithTokenSource(func() (string, bool) { return "tok-1", true }))
		_, err := c.ListUsers(api.WithToken(context.Background(), "persisted"))
		require.NoError(t, err)
		assert.Equal(t, "Bearer persisted", rec.last().Header.Get("Authorization"))
	})

	t.Run("request ids differ", func(t *testing.T) {
		c := newClient(t, srv.URL)
		_, _ = c.ListUsers(context.Background())
		first := rec.last().Header.Get("X-Request-ID")
		_, _ = c.ListUsers(context.Background())
		assert.NotEqual(t, first, rec.last().Header.Get("X-Request-ID"))
	})
}

func TestDo_Classification(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/status/{code}", func(w http.ResponseWriter, req *http.Request) {
			switch mux.Vars(req)["code"] {
			case "ok":
				writeJSON(w, http.StatusOK, map[string]string{"_id": "u1"})
			case "malformed":
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, "{not json")
			case "401":
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			case "403":
				w.WriteHeader(http.StatusForbidden)
			case "404":
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			case "400":
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Comment cannot be empty"})
			case "409":
				writeJSON(w, http.StatusConflict, map[string]any{"error": map[string]string{"message": "duplicate"}})
			case "422":
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, "  bad input \n")
			case "500":
				writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			}
		})
	})

	tests := []struct {
		code     string
		kind     api.Kind
		sentinel error
		status   int
		message  string
	}{
		{"ok", "", nil, 0, ""},
		{"malformed", api.KindNetwork, api.ErrNetwork, http.StatusOK, ""},
		{"401", api.KindAuth, api.ErrAuth, http.StatusUnauthorized, "Unauthorized"},
		{"403", api.KindAuth, api.ErrAuth, http.StatusForbidden, ""},
		{"404", api.KindNotFound, api.ErrNotFound, http.StatusNotFound, "User not found"},
		{"400", api.KindClient, api.ErrClient, http.StatusBadRequest, "Comment cannot be empty"},
		{"409", api.KindClient, api.ErrClient, http.StatusConflict, "duplicate"},
		{"422", api.KindClient, api.ErrClient, http.StatusUnprocessableEntity, "bad input"},
		{"500", api.KindNetwork, api.ErrNetwork, http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			var hookCalls atomic.Int32
			c := newClient(t, srv.URL, api.WithAuthErrorHook(func(context.Context, *api.Error) {
				hookCalls.Add(1)
			}))

			var out model.User
			err := c.Do(context.Background(), http.MethodGet, "/status/"+tt.code, nil, api.BodyJSON, &out)
			if tt.sentinel == nil {
				require.NoError(t, err)
				assert.Equal(t, "u1", out.ID)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, api.KindOf(err))

			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.NotEmpty(t, apiErr.RequestID)
			if tt.message != "" {
				assert.Equal(t, tt.message, apiErr.Message)
			}

			wantHook := int32(0)
			if tt.kind == api.KindAuth {
				wantHook = 1
			}
			assert.Equal(t, wantHook, hookCalls.Load())
		})
	}
}

func TestDo_AuthHookSeesRejectedToken(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/admin/session", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	})

	var (
		mu   sync.Mutex
		seen []string
	)
	c := newClient(t, srv.URL,
		api.WithTokenSource(func() (string, bool) { return "current", true }),
		api.WithAuthErrorHook(func(ctx context.Context, _ *api.Error) {
			tok, _ := api.TokenFromContext(ctx)
			mu.Lock()
			seen = append(seen, tok)
			mu.Unlock()
		}),
	)

	_, err := c.SessionStatus(context.Background())
	require.ErrorIs(t, err, api.ErrAuth)
	_, err = c.SessionStatus(api.WithToken(context.Background(), "persisted"))
	require.ErrorIs(t, err, api.ErrAuth)
	_, err = c.SessionStatus(api.WithToken(context.Background(), ""))
	require.ErrorIs(t, err, api.ErrAuth)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"current", "persisted", ""}, seen)
}

func TestDo_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, api.WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.ListUsers(context.Background())
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, api.KindNetwork, api.KindOf(err))
}

func TestDo_Canceled(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/user/list", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.User{})
		})
	})
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListUsers(ctx)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), rec.hits.Load())
}

func TestDo_RateLimit(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/user/list", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.User{})
		})
	})
	c := newClient(t, srv.URL, api.WithRateLimit(0.001, 1))

	_, err := c.ListUsers(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ListUsers(ctx)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, int32(1), rec.hits.Load())
}

func TestDo_Metrics(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/user/{id}", func(w http.ResponseWriter, req *http.Request) {
			if mux.Vars(req)["id"] == "missing" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, model.User{ID: mux.Vars(req)["id"]})
		})
	})

	reg := prometheus.NewRegistry()
	c := newClient(t, srv.URL, api.WithMetrics(reg))
	// A second client on the same registry shares the collectors.
	c2 := newClient(t, srv.URL, api.WithMetrics(reg))

	_, err := c.User(context.Background(), "u1")
	require.NoError(t, err)
	_, err = c2.User(context.Background(), "u2")
	require.NoError(t, err)
	_, err = c.User(context.Background(), "missing")
	require.Error(t, err)

	expected := `
# HELP photoshare_api_requests_total Total number of API requests by outcome.
# TYPE photoshare_api_requests_total counter
photoshare_api_requests_total{endpoint="/user/:id",method="GET",outcome="not_found"} 1
photoshare_api_requests_total{endpoint="/user/:id",method="GET",outcome="ok"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "photoshare_api_requests_total"))

	n, err := testutil.GatherAndCount(reg, "photoshare_api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	alice := model.User{ID: "u1", FirstName: "April", LastName: "Ludgate", LoginName: "aprilludgate"}

	srv, rec := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/admin/session", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, api.SessionStatus{LoggedIn: true, UserID: "u1"})
		}).Methods(http.MethodGet)
		r.HandleFunc("/admin/login", func(w http.ResponseWriter, req *http.Request) {
			var creds api.Credentials
			_ = json.NewDecoder(req.Body).Decode(&creds)
			if creds.LoginName != "aprilludgate" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid login name"})
				return
			}
			writeJSON(w, http.StatusOK, api.LoginResult{Token: "tok", User: alice})
		}).Methods(http.MethodPost)
		r.HandleFunc("/admin/logout", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}).Methods(http.MethodPost)
		r.HandleFunc("/user/list", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.User{alice})
		}).Methods(http.MethodGet)
		r.HandleFunc("/user/{id}", func(w http.ResponseWriter, req *http.Request) {
			var u model.User
			_ = json.NewDecoder(req.Body).Decode(&u)
			if mux.Vars(req)["id"] == "wrapped" {
				writeJSON(w, http.StatusOK, map[string]any{"user": u})
				return
			}
			writeJSON(w, http.StatusOK, u)
		}).Methods(http.MethodPut)
		r.HandleFunc("/photosOfUser/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, []model.Photo{{ID: "p1", OwnerID: mux.Vars(req)["id"], FileName: "a.jpg"}})
		}).Methods(http.MethodGet)
		r.HandleFunc("/commentsOfPhoto/{id}", func(w http.ResponseWriter, req *http.Request) {
			var in api.NewComment
			_ = json.NewDecoder(req.Body).Decode(&in)
			writeJSON(w, http.StatusOK, model.Comment{
				ID: "c9", PhotoID: mux.Vars(req)["id"], Text: in.Text, ParentID: in.ParentID, Author: alice.Ref(),
			})
		}).Methods(http.MethodPost)
	})

	c := newClient(t, srv.URL)
	ctx := context.Background()

	st, err := c.SessionStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.Equal(t, "u1", st.UserID)

	res, err := c.Login(ctx, api.Credentials{LoginName: "aprilludgate"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, alice, res.User)

	_, err = c.Login(ctx, api.Credentials{LoginName: "nobody"})
	assert.ErrorIs(t, err, api.ErrClient)

	require.NoError(t, c.Logout(ctx))

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.User{alice}, users)

	updated, err := c.UpdateUser(ctx, model.User{ID: "wrapped", FirstName: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.FirstName)
	updated, err = c.UpdateUser(ctx, model.User{ID: "bare", FirstName: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.FirstName)

	photos, err := c.PhotosOfUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "u1", photos[0].OwnerID)

	cm, err := c.AddComment(ctx, "p1", api.NewComment{Text: "hi", ParentID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "c9", cm.ID)
	assert.Equal(t, "c1", cm.ParentID)
	assert.Equal(t, "application/json", rec.last().Header.Get("Content-Type"))
}

func TestUploadPhoto(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	srv, _ := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/photos/new", func(w http.ResponseWriter, req *http.Request) {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			if len(req.MultipartForm.Value) != 0 || len(req.MultipartForm.File) != 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected exactly one file"})
				return
			}
			files := req.MultipartForm.File["uploadedphoto"]
			if len(files) != 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
				return
			}
			fh := files[0]
			f, _ := fh.Open()
			data, _ := io.ReadAll(f)
			_ = f.Close()
			if fh.Header.Get("Content-Type") != "image/png" || !strings.HasPrefix(string(data), "\x89PNG") {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad part"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"photo": model.Photo{ID: "p-new", OwnerID: "u1", FileName: fh.Filename}})
		}).Methods(http.MethodPost)
	})

	c := newClient(t, srv.URL)
	f, err := upload.FromBytes("sunset.png", png)
	require.NoError(t, err)

	photo, err := c.UploadPhoto(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "p-new", photo.ID)
	assert.Equal(t, "sunset.png", photo.FileName)

	err = c.Do(context.Background(), http.MethodPost, "/photos/new", "not a file", api.BodyMultipart, nil)
	assert.ErrorIs(t, err, api.ErrClient)
	assert.ErrorIs(t, err, api.ErrMultipartBody)
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, api.Kind(""), api.KindOf(nil))
	assert.Equal(t, api.Kind(""), api.KindOf(errors.New("plain")))
	assert.Equal(t, api.KindAuth, api.KindOf(errors.Join(errors.New("ctx"), api.ErrAuth)))

	e := api.NewError("POST /commentsOfPhoto/:id", api.KindNotFound, "unknown photo")
	assert.ErrorIs(t, e, api.ErrNotFound)
	assert.Contains(t, e.Error(), "not_found")
}
