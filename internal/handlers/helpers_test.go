package handlers

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/mock"

	"microblog/internal/middleware"
	"microblog/internal/mocks"
	"microblog/internal/models"
	"microblog/internal/timeline"
	"microblog/internal/views"
	"microblog/internal/ws"
)

type microblogDeps struct {
	users   *mocks.UserRepositoryMock
	tweets  *mocks.TweetRepositoryMock
	friends *mocks.FriendsClientMock
	hub     *ws.Hub
}

func setupMicroblogRouter(t *testing.T) (*gin.Engine, microblogDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := microblogDeps{
		users:   new(mocks.UserRepositoryMock),
		tweets:  new(mocks.TweetRepositoryMock),
		friends: new(mocks.FriendsClientMock),
		hub:     ws.NewHub(),
	}
	tl := timeline.NewService(deps.tweets, deps.users)

	r := gin.New()
	r.SetHTMLTemplate(views.MustTemplates())
	r.Use(
		middleware.RequestID(),
		middleware.Session(sessions.NewCookieStore([]byte("test-secret")), "test_session"),
		middleware.CurrentUser(deps.users),
	)
	RegisterMicroblogRoutes(r, Microblog{
		Auth:       NewAuthHandler(deps.users, nil),
		Timeline:   NewTimelineHandler(tl, deps.users, deps.friends, deps.hub, nil),
		Follow:     NewFollowHandler(deps.friends, deps.hub, nil),
		Initialize: NewInitializeHandler(deps.tweets, deps.users, deps.friends, 100000, 1000, nil),
	})
	return r, deps
}

func hashPassword(salt, plain string) string {
	sum := sha1.Sum([]byte(salt + plain))
	return hex.EncodeToString(sum[:])
}

var alice = models.User{ID: 1, Name: "alice", Salt: "s4lt", Password: hashPassword("s4lt", "secret")}

// cookieJar keeps the latest value of each cookie across responses.
type cookieJar map[string]*http.Cookie

func (j cookieJar) update(rec *httptest.ResponseRecorder) {
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(j, ck.Name)
			continue
		}
		j[ck.Name] = ck
	}
}

func (j cookieJar) apply(req *http.Request) {
	for _, ck := range j {
		req.AddCookie(ck)
	}
}

func do(r *gin.Engine, jar cookieJar, method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if jar != nil {
		jar.apply(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if jar != nil {
		jar.update(rec)
	}
	return rec
}

// loginAsAlice signs alice in and keeps her session resolvable.
func loginAsAlice(t *testing.T, r *gin.Engine, deps microblogDeps) cookieJar {
	t.Helper()
	deps.users.On("GetUserByName", mock.Anything, "alice").Return(alice, nil).Maybe()
	deps.users.On("GetUserByID", mock.Anything, 1).Return(alice, nil).Maybe()

	jar := cookieJar{}
	rec := do(r, jar, http.MethodPost, "/login", url.Values{"name": {"alice"}, "password": {"secret"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("login failed: %d", rec.Code)
	}
	return jar
}
