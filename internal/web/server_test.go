package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type testApp struct {
	handler http.Handler
	users   *repository.UserRepository
	tasks   *repository.TaskRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	hasher := service.PasswordHasher{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	auth, err := service.NewAuthService(userRepo, hasher)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	tasks := service.NewTaskService(taskRepo, subtaskRepo)
	accounts := service.NewAccountService(accountRepo)

	srv := New(Options{SessionSecret: testSecret, Location: time.UTC},
		auth,
		service.NewGroupService(groupRepo),
		tasks,
		accounts,
		service.NewViewService(groupRepo, taskRepo, subtaskRepo, accountRepo),
	)
	return &testApp{handler: srv.Handler(), users: userRepo, tasks: taskRepo}
}

func (a *testApp) post(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) signUp(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := a.post(t, "/register", url.Values{
		"name":            {"Tester"},
		"email":           {email},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func (a *testApp) board(t *testing.T, cookie *http.Cookie, query string) service.BoardView {
	t.Helper()
	rec := a.get(t, "/"+query, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("board status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view service.BoardView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	return view
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func formError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Form  string `json:"form"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode form: %v", err)
	}
	return body.Error
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	app := newTestApp(t)
	for _, rec := range []*httptest.ResponseRecorder{
		app.get(t, "/", nil),
		app.post(t, "/tasks", url.Values{"groupId": {"1"}, "title": {"x"}}, nil),
	} {
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Fatalf("status = %d location = %q, want redirect to /login", rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestRegisterSignsInAndShowsSeededBoard(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signUp(t, "a@x.com")
	if cookie.MaxAge != 0 {
		t.Fatalf("register cookie MaxAge = %d, want session cookie", cookie.MaxAge)
	}

	view := app.board(t, cookie, "")
	if len(view.Groups) != 4 || view.SelectedGroup == nil || view.SelectedGroup.Name != "My Day" {
		t.Fatalf("view = %+v", view)
	}
	if view.CurrentAccount == nil || view.CurrentAccount.Name != "Personal" {
		t.Fatalf("current account = %+v", view.CurrentAccount)
	}

	if rec := app.get(t, "/login", cookie); rec.Code != http.StatusSeeOther {
		t.Fatalf("login page for signed-in user status = %d, want redirect", rec.Code)
	}
}

func TestRegisterErrors(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "a@x.com")

	rec := app.post(t, "/register", url.Values{
		"name": {"Again"}, "email": {"A@X.com"}, "password": {"secret123"}, "confirmPassword": {"secret123"},
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	if msg := formError(t, rec); msg != "Email already registered" {
		t.Fatalf("duplicate error = %q", msg)
	}

	rec = app.post(t, "/register", url.Values{
		"name": {"New"}, "email": {"new@x.com"}, "password": {"secret123"}, "confirmPassword": {"other123"},
	}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mismatch status = %d, want 422", rec.Code)
	}
	if msg := formError(t, rec); msg != "passwords do not match" {
		t.Fatalf("mismatch error = %q", msg)
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "a@x.com")

	rec := app.post(t, "/login", url.Values{"email": {"a@x.com"}, "password": {"wrong-pass"}}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}
	wrongPassword := formError(t, rec)

	rec = app.post(t, "/login", url.Values{"email": {"nobody@x.com"}, "password": {"secret123"}}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d, want 401", rec.Code)
	}
	if unknown := formError(t, rec); unknown != wrongPassword {
		t.Fatalf("messages differ: %q vs %q", unknown, wrongPassword)
	}

	rec = app.post(t, "/login", url.Values{"email": {""}, "password": {""}}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty form status = %d, want 422", rec.Code)
	}

	rec = app.post(t, "/login", url.Values{"email": {"a@x.com"}, "password": {"secret123"}, "remember": {"on"}}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("login status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	cookie := sessionCookie(t, rec)
	if cookie.MaxAge != int(rememberTTL.Seconds()) {
		t.Fatalf("remember-me MaxAge = %d", cookie.MaxAge)
	}
	app.board(t, cookie, "")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signUp(t, "a@x.com")

	rec := app.post(t, "/logout", nil, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("logout status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if cleared := sessionCookie(t, rec); cleared.MaxAge >= 0 {
		t.Fatalf("cleared cookie MaxAge = %d", cleared.MaxAge)
	}
}

func TestTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signUp(t, "a@x.com")
	myDay := app.board(t, cookie, "").Groups[0]

	rec := app.post(t, "/tasks", url.Values{"groupId": {itoa(myDay.ID)}, "title": {"Buy milk"}}, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/?groupId="+itoa(myDay.ID) {
		t.Fatalf("create status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	view := app.board(t, cookie, "?groupId="+itoa(myDay.ID))
	if len(view.Tasks) != 1 || view.Tasks[0].Title != "Buy milk" {
		t.Fatalf("tasks = %+v", view.Tasks)
	}
	task := view.Tasks[0]

	app.post(t, "/subtasks", url.Values{"taskId": {itoa(task.ID)}, "title": {"whole"}, "groupId": {itoa(myDay.ID)}}, cookie)
	rec = app.post(t, "/tasks/"+itoa(task.ID)+"/update", url.Values{
		"title": {"Buy oat milk"}, "notes": {"2 litres"}, "dueDate": {"2026-11-30"}, "reminderDate": {"2026-11-29T09:00"},
	}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("update status = %d body = %s", rec.Code, rec.Body.String())
	}

	app.post(t, "/tasks/"+itoa(task.ID)+"/toggle", url.Values{"groupId": {itoa(myDay.ID)}}, cookie)
	view = app.board(t, cookie, "?groupId="+itoa(myDay.ID))
	got := view.Tasks[0]
	if got.Title != "Buy oat milk" || !got.IsCompleted || got.CompletedAt == nil {
		t.Fatalf("task after update+toggle = %+v", got)
	}
	if got.DueAt == nil || got.DueAt.Format("2006-01-02") != "2026-11-30" {
		t.Fatalf("due = %v", got.DueAt)
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].Title != "whole" {
		t.Fatalf("subtasks = %+v", got.Subtasks)
	}

	rec = app.post(t, "/subtasks/"+itoa(got.Subtasks[0].ID)+"/toggle", url.Values{"groupId": {itoa(myDay.ID)}}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("toggle subtask status = %d", rec.Code)
	}

	rec = app.post(t, "/tasks/"+itoa(task.ID)+"/delete", url.Values{"groupId": {itoa(myDay.ID)}}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if view := app.board(t, cookie, "?groupId="+itoa(myDay.ID)); len(view.Tasks) != 0 {
		t.Fatalf("tasks after delete = %+v", view.Tasks)
	}

	// Mutating the deleted task is a silent no-op.
	for _, path := range []string{"/tasks/" + itoa(task.ID) + "/toggle", "/tasks/" + itoa(task.ID) + "/delete"} {
		if rec := app.post(t, path, nil, cookie); rec.Code != http.StatusSeeOther {
			t.Fatalf("%s on deleted task status = %d, want redirect", path, rec.Code)
		}
	}
	if rec := app.post(t, "/tasks/"+itoa(task.ID)+"/update", url.Values{"title": {"ghost"}}, cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("update deleted task status = %d, want 404", rec.Code)
	}
}

func TestValidationErrors(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signUp(t, "a@x.com")
	myDay := app.board(t, cookie, "").Groups[0]

	cases := []struct {
		path string
		form url.Values
	}{
		{"/tasks", url.Values{"title": {"no group"}}},
		{"/tasks", url.Values{"groupId": {itoa(myDay.ID)}, "title": {" "}}},
		{"/groups", url.Values{"name": {"Bad"}, "color": {"blue"}}},
		{"/accounts", url.Values{"name": {""}}},
		{"/settings/telegram", url.Values{"chatId": {"abc"}}},
	}
	for _, tc := range cases {
		if rec := app.post(t, tc.path, tc.form, cookie); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("POST %s %v status = %d, want 422", tc.path, tc.form, rec.Code)
		}
	}
}

func TestGroupsAndAccountsOverHTTP(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signUp(t, "a@x.com")

	rec := app.post(t, "/groups", url.Values{"name": {"Errands"}}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create group status = %d", rec.Code)
	}
	view := app.board(t, cookie, "")
	errands := view.Groups[len(view.Groups)-1]
	if errands.Name != "Errands" || errands.Color != "#0078D4" {
		t.Fatalf("group = %+v", errands)
	}
	if rec.Header().Get("Location") != "/?groupId="+itoa(errands.ID) {
		t.Fatalf("location = %q", rec.Header().Get("Location"))
	}

	if rec := app.post(t, "/groups/"+itoa(errands.ID)+"/delete", nil, cookie); rec.Code != http.StatusSeeOther {
		t.Fatalf("delete group status = %d", rec.Code)
	}
	if view := app.board(t, cookie, ""); len(view.Groups) != 4 {
		t.Fatalf("groups = %d, want 4", len(view.Groups))
	}

	app.post(t, "/accounts", url.Values{"name": {"Work"}}, cookie)
	view = app.board(t, cookie, "")
	if len(view.Accounts) != 2 {
		t.Fatalf("accounts = %+v", view.Accounts)
	}
	work := view.Accounts[1]
	if rec := app.post(t, "/accounts/"+itoa(work.ID)+"/default", nil, cookie); rec.Code != http.StatusSeeOther {
		t.Fatalf("switch status = %d", rec.Code)
	}
	if view := app.board(t, cookie, ""); view.CurrentAccount == nil || view.CurrentAccount.ID != work.ID {
		t.Fatalf("current = %+v, want Work", view.CurrentAccount)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	app := newTestApp(t)
	alice := app.signUp(t, "alice@x.com")
	bob := app.signUp(t, "bob@x.com")

	aliceView := app.board(t, alice, "")
	aliceGroup := aliceView.Groups[0]
	aliceAccount := aliceView.Accounts[0]
	app.post(t, "/tasks", url.Values{"groupId": {itoa(aliceGroup.ID)}, "title": {"secret"}}, alice)
	aliceTask := app.board(t, alice, "").Tasks[0]

	if rec := app.post(t, "/tasks", url.Values{"groupId": {itoa(aliceGroup.ID)}, "title": {"x"}}, bob); rec.Code != http.StatusNotFound {
		t.Fatalf("create in foreign group status = %d, want 404", rec.Code)
	}
	if rec := app.post(t, "/groups/"+itoa(aliceGroup.ID)+"/delete", nil, bob); rec.Code != http.StatusNotFound {
		t.Fatalf("delete foreign group status = %d, want 404", rec.Code)
	}
	if rec := app.post(t, "/accounts/"+itoa(aliceAccount.ID)+"/default", nil, bob); rec.Code != http.StatusNotFound {
		t.Fatalf("switch to foreign account status = %d, want 404", rec.Code)
	}
	app.post(t, "/tasks/"+itoa(aliceTask.ID)+"/toggle", nil, bob)
	app.post(t, "/tasks/"+itoa(aliceTask.ID)+"/delete", nil, bob)

	bobView := app.board(t, bob, "?groupId="+itoa(aliceGroup.ID))
	if bobView.SelectedGroup == nil || bobView.SelectedGroup.ID == aliceGroup.ID || len(bobView.Tasks) != 0 {
		t.Fatalf("bob sees alice's group: %+v", bobView)
	}

	task, err := app.tasks.FindByID(context.Background(), aliceGroup.UserID, aliceTask.ID)
	if err != nil {
		t.Fatalf("alice's task is gone: %v", err)
	}
	if task.IsCompleted {
		t.Fatal("bob toggled alice's task")
	}
}

func TestLinkTelegramOverHTTP(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signUp(t, "a@x.com")
	userID := app.board(t, cookie, "").Groups[0].UserID

	if rec := app.post(t, "/settings/telegram", url.Values{"chatId": {" 4242 "}}, cookie); rec.Code != http.StatusSeeOther {
		t.Fatalf("link status = %d", rec.Code)
	}
	user, err := app.users.FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.TelegramChatID == nil || *user.TelegramChatID != 4242 {
		t.Fatalf("chat = %v, want 4242", user.TelegramChatID)
	}

	app.post(t, "/settings/telegram", url.Values{"chatId": {""}}, cookie)
	user, _ = app.users.FindByID(context.Background(), userID)
	if user.TelegramChatID != nil {
		t.Fatalf("chat = %d, want unlinked", *user.TelegramChatID)
	}
}
