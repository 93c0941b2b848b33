package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-site-settings/apiclient"
	"github.com/jrsteele09/go-site-settings/apiclient/cmsfake"
	"github.com/jrsteele09/go-site-settings/internal/config"
	"github.com/jrsteele09/go-site-settings/server"
	"github.com/jrsteele09/go-site-settings/sessions"
	"github.com/jrsteele09/go-site-settings/token"
	"github.com/jrsteele09/go-site-settings/token/tokenfake"
	"github.com/jrsteele09/go-site-settings/tokenstore"
)

const testTitle = "My Site"

type testFixture struct {
	cms     *cmsfake.Server
	store   *tokenstore.InMemoryStore
	session *sessions.Session
	server  *server.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	cms := cmsfake.New(testTitle)
	t.Cleanup(cms.Close)

	store := tokenstore.NewInMemoryStore()
	session := sessions.New(store)

	client, err := apiclient.New(apiclient.Options{
		BaseURL:   cms.URL,
		Store:     store,
		Navigator: session,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	s, err := server.New(config.New(), session, client)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return &testFixture{cms: cms, store: store, session: session, server: s}
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Login(&token.AuthTokens{
		AccessToken:  tokenfake.Valid(),
		RefreshToken: tokenfake.Mint(time.Now().Add(24 * time.Hour)),
		UserID:       cmsfake.UserID,
	}))
}

func (f *testFixture) get(path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, path string) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, path, loc.Path)
	return loc
}

func TestRouteGuard(t *testing.T) {
	t.Run("IndexLoggedOut", func(t *testing.T) {
		f := setupTestFixture(t)
		requireRedirect(t, f.get("/"), server.RouteLogin)
	})

	t.Run("IndexLoggedIn", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		requireRedirect(t, f.get("/"), server.RouteSettings)
	})

	t.Run("SettingsRequiresLogin", func(t *testing.T) {
		f := setupTestFixture(t)
		requireRedirect(t, f.get(server.RouteSettings), server.RouteLogin)
		requireRedirect(t, f.post(server.RouteSettings, url.Values{"title": {"x"}}), server.RouteLogin)
		require.Empty(t, f.cms.Requests())
	})

	t.Run("LoginPageSkippedWhenLoggedIn", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		requireRedirect(t, f.get(server.RouteLogin), server.RouteSettings)
	})

	t.Run("HTMXRedirect", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.get(server.RouteSettings, "HX-Request", "true")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, server.RouteLogin, rec.Header().Get("HX-Redirect"))
	})

	t.Run("FrameHeaders", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.get(server.RouteLogin)
		require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	})
}

func TestLoginPage(t *testing.T) {
	t.Run("RendersForm", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.get(server.RouteLogin + "?error=" + url.QueryEscape("Bad things"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		body := rec.Body.String()
		require.Contains(t, body, `name="username"`)
		require.Contains(t, body, `name="password"`)
		require.Contains(t, body, "Bad things")
	})

	t.Run("MissingFields", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.post(server.RouteLogin, url.Values{"username": {"admin"}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Username and password are required")
		require.Empty(t, f.cms.Requests())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.post(server.RouteLogin, url.Values{"username": {cmsfake.Username}, "password": {"nope"}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid username or password")
		require.Contains(t, rec.Body.String(), `value="admin"`)
		require.False(t, f.session.IsAuthenticated())
	})

	t.Run("Success", func(t *testing.T) {
		f := setupTestFixture(t)
		rec := f.post(server.RouteLogin, url.Values{"username": {cmsfake.Username}, "password": {cmsfake.Password}})
		requireRedirect(t, rec, server.RouteSettings)

		require.Equal(t, sessions.State{Authenticated: true, UserID: cmsfake.UserID}, f.session.State())
		stored, err := f.store.Load()
		require.NoError(t, err)
		require.NotEmpty(t, stored.AccessToken)
		require.NotEmpty(t, stored.RefreshToken)
		require.Equal(t, "7", stored.UserID)
	})
}

func TestSettingsPage(t *testing.T) {
	t.Run("ShowsCurrentTitle", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		rec := f.get(server.RouteSettings)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Current Title: My Site")
		require.Contains(t, rec.Body.String(), `value="My Site"`)
	})

	t.Run("FetchFailureShowsServerMessage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.cms.SetSettingsError(http.StatusInternalServerError, "Database offline")

		rec := f.get(server.RouteSettings)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Database offline")
	})

	t.Run("TitleRequired", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		rec := f.post(server.RouteSettings, url.Values{"title": {"  "}})
		require.Contains(t, rec.Body.String(), "Title is required")
		require.Equal(t, testTitle, f.cms.Title())
	})

	t.Run("UpdateSuccess", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		rec := f.post(server.RouteSettings, url.Values{"title": {"New Name"}})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Title updated successfully!")
		require.Contains(t, body, "Current Title: New Name")
		require.Equal(t, "New Name", f.cms.Title())
	})

	t.Run("UpdateFailureShowsServerMessage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.cms.SetSettingsError(http.StatusBadRequest, "Title too long")

		rec := f.post(server.RouteSettings, url.Values{"title": {"x"}})
		require.Contains(t, rec.Body.String(), "Title too long")
		require.NotContains(t, rec.Body.String(), "Title updated successfully!")
	})

	t.Run("ExpiredSessionGoesToLogin", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		require.NoError(t, f.store.Save(tokenstore.Tokens{
			AccessToken:  tokenfake.Expired(),
			RefreshToken: tokenfake.Expired(),
			UserID:       "7",
		}))

		loc := requireRedirect(t, f.get(server.RouteSettings), server.RouteLogin)
		require.Equal(t, "Session expired. Please login again.", loc.Query().Get("error"))
		require.False(t, f.session.IsAuthenticated())
		require.Empty(t, f.cms.Requests())
	})

	t.Run("ForbiddenWithFailedRefreshGoesToLogin", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			t.Run(method, func(t *testing.T) {
				f := setupTestFixture(t)
				f.login(t)
				f.cms.SetForbiddenSettings(1)
				f.cms.SetRefreshStatus(http.StatusInternalServerError)

				rec := f.get(server.RouteSettings)
				if method == http.MethodPost {
					rec = f.post(server.RouteSettings, url.Values{"title": {"New Name"}})
				}

				loc := requireRedirect(t, rec, server.RouteLogin)
				require.Equal(t, "Session expired. Please login again.", loc.Query().Get("error"))
				require.False(t, f.session.IsAuthenticated())
				require.Len(t, f.cms.Calls(apiclient.PathRefresh), 1)
				require.Equal(t, testTitle, f.cms.Title())

				stored, err := f.store.Load()
				require.NoError(t, err)
				require.True(t, stored.IsEmpty())
			})
		}
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	requireRedirect(t, f.post(server.RouteLogout, nil), server.RouteLogin)
	require.False(t, f.session.IsAuthenticated())
	require.Len(t, f.cms.Calls(apiclient.PathLogout), 1)

	stored, err := f.store.Load()
	require.NoError(t, err)
	require.True(t, stored.IsEmpty())
}

func TestStaticFiles(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.get("/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	require.Equal(t, http.StatusNotFound, f.get("/css/missing.css").Code)
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	h := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) { panic("boom") }, f.server.RecoverMiddleware)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
