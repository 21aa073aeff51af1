package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diarykeeper/internal/auth"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/repository/jsonfile"
	"diarykeeper/internal/service"
)

var testDefaults = models.Settings{
	Theme:            models.ThemeLight,
	FontSize:         16,
	EditorType:       models.EditorRichText,
	AutoSave:         true,
	AutoSaveInterval: 30,
}

type bridgeFixture struct {
	server *httptest.Server
	token  string
	root   string
	host   *service.HostTheme
}

func newBridgeFixture(t *testing.T) *bridgeFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	root := t.TempDir()
	store, err := jsonfile.NewStore(jsonfile.StoreConfig{
		Root:            root,
		LockTimeout:     10 * time.Second,
		DefaultSettings: testDefaults,
		Logger:          logger,
	})
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))

	host := service.NewHostTheme(false, logger)
	diaries := service.NewDiaryService(jsonfile.NewDiaryRepository(store), store, nil, logger)
	settings := service.NewSettingsService(jsonfile.NewSettingsRepository(store, testDefaults), host, testDefaults, logger)
	backups := service.NewBackupService(store, store, nil, nil, logger)

	sessions, err := auth.NewSessionManager("", time.Hour, logger)
	require.NoError(t, err)
	token, err := sessions.Issue()
	require.NoError(t, err)

	router := NewRouter(Handlers{
		Diary:    NewDiaryHandler(diaries, logger),
		Settings: NewSettingsHandler(settings, logger),
		Theme:    NewThemeHandler(host, settings, logger),
		Backup:   NewBackupHandler(backups, logger),
		Health:   NewHealthHandler(store.Root()),
	}, RouterConfig{
		CORSOrigins: []string{"http://localhost:5173"},
		Verifier:    sessions,
		Logger:      logger,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &bridgeFixture{server: server, token: token, root: root, host: host}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// call performs an authenticated bridge request and decodes the envelope.
func (f *bridgeFixture) call(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			payload, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestBridge_DiaryLifecycle(t *testing.T) {
	f := newBridgeFixture(t)
	today := time.Now().Format(models.DateLayout)

	status, env := f.call(t, http.MethodPost, "/api/diaries", models.SaveDiaryRequest{
		Date:    today,
		Title:   "",
		Content: "<p>hello</p>",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	require.True(t, env.Success)
	saved := decodeData[models.DiaryEntry](t, env)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, models.UntitledTitle, saved.Title)

	status, env = f.call(t, http.MethodGet, "/api/diaries/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, status)
	loaded := decodeData[models.DiaryEntry](t, env)
	assert.Equal(t, "<p>hello</p>", loaded.Content)

	status, env = f.call(t, http.MethodPost, "/api/diaries/"+saved.ID+"/trash", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "null", string(env.Data))

	_, env = f.call(t, http.MethodGet, "/api/diaries", nil)
	assert.Empty(t, decodeData[[]models.DiaryEntry](t, env))

	_, env = f.call(t, http.MethodGet, "/api/trash", nil)
	trash := decodeData[[]models.DiaryEntry](t, env)
	require.Len(t, trash, 1)
	assert.NotNil(t, trash[0].DeletedAt)

	_, env = f.call(t, http.MethodGet, "/api/statistics", nil)
	assert.Equal(t, models.Statistics{Total: 0, Monthly: 0, Trashed: 1}, decodeData[models.Statistics](t, env))

	status, _ = f.call(t, http.MethodPost, "/api/trash/"+saved.ID+"/restore", nil)
	require.Equal(t, http.StatusOK, status)

	_, env = f.call(t, http.MethodGet, "/api/statistics", nil)
	assert.Equal(t, models.Statistics{Total: 1, Monthly: 1, Trashed: 0}, decodeData[models.Statistics](t, env))

	status, _ = f.call(t, http.MethodDelete, "/api/diaries/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, status)

	_, env = f.call(t, http.MethodGet, "/api/diaries/"+saved.ID, nil)
	assert.True(t, env.Success)
	assert.JSONEq(t, "null", string(env.Data))
}

func TestBridge_TrashPermanentDeleteAndClear(t *testing.T) {
	f := newBridgeFixture(t)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		_, env := f.call(t, http.MethodPost, "/api/diaries", models.SaveDiaryRequest{Date: "2024-01-02", Title: title})
		ids = append(ids, decodeData[models.DiaryEntry](t, env).ID)
	}
	for _, id := range ids {
		status, _ := f.call(t, http.MethodPost, "/api/diaries/"+id+"/trash", nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, _ := f.call(t, http.MethodDelete, "/api/trash/"+ids[0], nil)
	require.Equal(t, http.StatusOK, status)

	_, env := f.call(t, http.MethodGet, "/api/trash", nil)
	assert.Len(t, decodeData[[]models.DiaryEntry](t, env), 2)

	status, _ = f.call(t, http.MethodDelete, "/api/trash", nil)
	require.Equal(t, http.StatusOK, status)

	_, env = f.call(t, http.MethodGet, "/api/trash", nil)
	assert.Empty(t, decodeData[[]models.DiaryEntry](t, env))
}

func TestBridge_UnknownIDsSucceed(t *testing.T) {
	f := newBridgeFixture(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/diaries/missing/trash"},
		{http.MethodPost, "/api/trash/missing/restore"},
		{http.MethodDelete, "/api/trash/missing"},
		{http.MethodDelete, "/api/diaries/missing"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, env := f.call(t, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusOK, status)
			assert.True(t, env.Success)
		})
	}
}

func TestBridge_SaveDiaryFailures(t *testing.T) {
	f := newBridgeFixture(t)

	_, env := f.call(t, http.MethodPost, "/api/diaries", models.SaveDiaryRequest{Date: "2024-01-02", Title: "x"})
	trashed := decodeData[models.DiaryEntry](t, env)
	f.call(t, http.MethodPost, "/api/diaries/"+trashed.ID+"/trash", nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "malformed body", body: `{"date":`, wantStatus: http.StatusBadRequest},
		{name: "missing date", body: models.SaveDiaryRequest{Title: "x"}, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: models.SaveDiaryRequest{Date: "yesterday"}, wantStatus: http.StatusBadRequest},
		{name: "id in trash", body: models.SaveDiaryRequest{ID: trashed.ID, Date: "2024-01-02"}, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.call(t, http.MethodPost, "/api/diaries", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestBridge_SettingsAndTheme(t *testing.T) {
	f := newBridgeFixture(t)

	_, env := f.call(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, testDefaults.FontSize, decodeData[models.Settings](t, env).FontSize)

	status, env := f.call(t, http.MethodPut, "/api/settings", map[string]any{
		"theme":      "system",
		"fontSize":   20,
		"editorType": "plaintext",
		"sidebar":    "collapsed",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `"collapsed"`, string(decodeData[map[string]json.RawMessage](t, env)["sidebar"]))

	status, env = f.call(t, http.MethodPut, "/api/host/ambient-theme", map[string]any{"dark": true})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"theme":"dark","ambientDark":true}`, string(env.Data))
	assert.Equal(t, models.EffectiveDark, f.host.Applied())

	status, env = f.call(t, http.MethodPut, "/api/host/ambient-theme", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, _ = f.call(t, http.MethodPut, "/api/settings", map[string]any{"fontSize": 200})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.call(t, http.MethodPut, "/api/settings", "null")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBridge_ExportImport(t *testing.T) {
	f := newBridgeFixture(t)
	archive := filepath.Join(t.TempDir(), "export.zip")

	_, env := f.call(t, http.MethodPost, "/api/diaries", models.SaveDiaryRequest{Date: "2024-01-02", Title: "kept"})
	kept := decodeData[models.DiaryEntry](t, env)

	status, env := f.call(t, http.MethodPost, "/api/data/export", models.ArchivePathRequest{Path: archive})
	require.Equal(t, http.StatusOK, status, env.Error)

	f.call(t, http.MethodDelete, "/api/diaries/"+kept.ID, nil)

	status, env = f.call(t, http.MethodPost, "/api/data/import", models.ArchivePathRequest{Path: archive})
	require.Equal(t, http.StatusOK, status, env.Error)

	_, env = f.call(t, http.MethodGet, "/api/diaries", nil)
	diaries := decodeData[[]models.DiaryEntry](t, env)
	require.Len(t, diaries, 1)
	assert.Equal(t, kept.ID, diaries[0].ID)
}

func TestBridge_ImportFailures(t *testing.T) {
	f := newBridgeFixture(t)

	notZip := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0o644))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "empty path", path: "", wantStatus: http.StatusBadRequest},
		{name: "relative path", path: "backup.zip", wantStatus: http.StatusBadRequest},
		{name: "not a zip", path: notZip, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing file", path: filepath.Join(t.TempDir(), "gone.zip"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.call(t, http.MethodPost, "/api/data/import", models.ArchivePathRequest{Path: tt.path})
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, env.Success)
		})
	}
}

func TestBridge_Backups(t *testing.T) {
	f := newBridgeFixture(t)

	status, env := f.call(t, http.MethodPost, "/api/backups", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	info := decodeData[models.BackupInfo](t, env)
	assert.FileExists(t, info.Path)

	_, env = f.call(t, http.MethodGet, "/api/backups", nil)
	backups := decodeData[[]models.BackupInfo](t, env)
	require.Len(t, backups, 1)
	assert.Equal(t, info.Name, backups[0].Name)

	_, env = f.call(t, http.MethodGet, "/api/data/location", nil)
	location := decodeData[models.DataLocation](t, env)
	assert.Equal(t, filepath.Dir(info.Path), location.BackupDir)
}

func TestBridge_TransportFailures(t *testing.T) {
	f := newBridgeFixture(t)

	tests := []struct {
		name        string
		path        string
		token       string
		wantStatus  int
		wantProblem bool
	}{
		{name: "health is open", path: "/health", wantStatus: http.StatusOK},
		{name: "api requires token", path: "/api/diaries", wantStatus: http.StatusUnauthorized, wantProblem: true},
		{name: "api rejects foreign token", path: "/api/diaries", token: "abc.def.ghi", wantStatus: http.StatusUnauthorized, wantProblem: true},
		{name: "unknown route", path: "/api/nothing", token: f.token, wantStatus: http.StatusNotFound, wantProblem: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, f.server.URL+tt.path, nil)
			require.NoError(t, err)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantProblem {
				assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestBridge_CORSPreflight(t *testing.T) {
	f := newBridgeFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+"/api/diaries", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
