package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"loteamento/config"
	"loteamento/internal/cache"
	"loteamento/internal/database"
	"loteamento/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t     *testing.T
	r     *gin.Engine
	svcs  *Services
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.JWT.Secret = "router-secret"
	cfg.Server.RateLimit = 0
	cfg.Server.StaticDir = ""
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "api.db")}
	cfg.Admin = config.AdminConfig{Username: "admin", Password: "segredo123"}

	db, err := database.NewDB(&cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaults(db))
	_, err = database.SeedAdmin(db, &cfg.Admin)
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "backups"))
	require.NoError(t, err)
	log := zap.NewNop()
	svcs := NewServices(cfg, db, store, cache.NopCache{}, log)
	return &testServer{t: t, r: Setup(cfg, db, svcs, nil, log), svcs: svcs}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *testServer) login() {
	s.t.Helper()
	w := s.do("POST", "/api/auth/login", gin.H{"username": "admin", "password": "segredo123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	s.token = resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/api/lotes/public", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = s.do("GET", "/api/carrossel/public", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 3)

	w = s.do("GET", "/api/configuracoes/public", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Loteamento Ibiza", decode[map[string]any](t, w)["titulo_site"])

	w = s.do("GET", "/api/site-data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	site := decode[map[string]json.RawMessage](t, w)
	assert.Contains(t, site, "lotes")
	assert.Contains(t, site, "slides")
	assert.Contains(t, site, "configuracoes")
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/api/lotes", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		s.do("POST", "/api/auth/login", gin.H{"username": "admin", "password": "errada"}).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do("POST", "/api/auth/register", gin.H{"username": "outro", "password": "segredo123"}).Code)

	w := s.do("GET", "/api/auth/check", nil)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	s.login()
	w = s.do("GET", "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "admin", me["username"])
	assert.NotContains(t, me, "password")

	w = s.do("GET", "/api/auth/check", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["authenticated"])

	w = s.do("POST", "/api/auth/change-password", gin.H{"currentPassword": "errada", "newPassword": "novasenha"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do("POST", "/api/auth/change-password", gin.H{"currentPassword": "segredo123", "newPassword": "novasenha"})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusOK, s.do("POST", "/api/auth/logout", nil).Code)
}

func TestLotEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login()

	lot := gin.H{"titulo": "Lote 9", "codigo": "Q-9", "valor": "99.000,00", "tamanho": "300m²", "imagens": []string{"a.jpg"}}
	w := s.do("POST", "/api/lotes", lot)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := int(created["id"].(float64))

	assert.Equal(t, http.StatusConflict, s.do("POST", "/api/lotes", lot).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("POST", "/api/lotes", gin.H{"titulo": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/lotes/9999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/api/lotes/abc", nil).Code)

	path := "/api/lotes/" + itoa(id)
	assert.Equal(t, http.StatusBadRequest, s.do("POST", path+"/status", gin.H{"status": "perdido"}).Code)
	w = s.do("POST", path+"/status", gin.H{"status": "vendido"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vendido", decode[map[string]any](t, w)["status"])

	w = s.do("GET", "/api/lotes?status=vendido", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode[map[string]any](t, w)["total"])

	w = s.do("GET", "/api/lotes/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.Equal(t, 3.0, stats["total"])
	assert.Equal(t, 1.0, stats["vendidos"])
	assert.Equal(t, 280000.0, stats["valor_total_disponivel"])

	assert.Equal(t, http.StatusOK, s.do("DELETE", path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("DELETE", path, nil).Code)
}

func TestCarouselAndConfigEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do("POST", "/api/carrossel", gin.H{"imagem": "n.jpg", "titulo": "Novo", "descricao": "d"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	slide := decode[map[string]any](t, w)
	assert.Equal(t, 4.0, slide["ordem"])
	assert.Equal(t, true, slide["ativo"])

	id := itoa(int(slide["id"].(float64)))
	w = s.do("POST", "/api/carrossel/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["ativo"])

	w = s.do("GET", "/api/carrossel?ativo=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do("POST", "/api/carrossel/reorder", gin.H{"slides": []gin.H{{"id": 9999, "ordem": 1}}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("POST", "/api/configuracoes", gin.H{"chave": "limite", "valor": 5, "tipo": "number"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, s.do("POST", "/api/configuracoes", gin.H{"chave": "limite", "valor": 5}).Code)

	w = s.do("GET", "/api/configuracoes/limite", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, decode[map[string]any](t, w)["valor_decodificado"])

	w = s.do("POST", "/api/configuracoes/bulk", gin.H{"configuracoes": gin.H{"limite": 7, "novo": true}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"atualizadas":1,"criadas":1}`, w.Body.String())

	w = s.do("GET", "/api/configuracoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Values map[string]any `json:"configuracoes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 7.0, all.Values["limite"])

	assert.Equal(t, http.StatusOK, s.do("DELETE", "/api/configuracoes/limite", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/configuracoes/limite", nil).Code)
}

func TestBackupEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do("POST", "/api/backup/export", gin.H{"nome": "antes da mudança", "incluir_logs": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	backup := field(t, w, "backup")
	id := itoa(int(backup["id"].(float64)))

	w = s.do("GET", "/api/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do("GET", "/api/backup/download/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), backup["arquivo"].(string))
	doc := w.Body.Bytes()
	snap := decode[map[string]map[string]any](t, w)
	assert.Equal(t, 2.0, snap["metadata"]["total_lotes"])
	assert.Equal(t, true, snap["metadata"]["include_logs"])

	w = s.do("GET", "/api/backup/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode[map[string]any](t, w)["total_backups"])

	w = s.do("POST", "/api/backup/import", gin.H{"backup_data": gin.H{"data": gin.H{}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do("POST", "/api/backup/import", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("POST", "/api/backup/import", gin.H{"backup_data": string(doc), "sobrescrever": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := field(t, w, "resultado")
	assert.Equal(t, 0.0, sum["lotes_importados"])
	assert.Equal(t, 3.0, sum["slides_importados"])

	assert.Equal(t, http.StatusBadRequest, s.do("POST", "/api/backup/reset", gin.H{"confirmar": "sim"}).Code)
	w = s.do("GET", "/api/carrossel", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 6)

	w = s.do("POST", "/api/backup/reset", gin.H{"confirmar": "RESET_COMPLETO"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 6.0, field(t, w, "resultado")["slides_removidos"])

	w = s.do("GET", "/api/carrossel", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 3)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/backup/download/"+id, nil).Code)

	w = s.do("GET", "/api/atividades", nil)
	require.Equal(t, http.StatusOK, w.Code)
	acts := decode[map[string]any](t, w)
	assert.Equal(t, 1.0, acts["total"])
	first := acts["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "SYSTEM_RESET", first["acao"])
}

func TestActivityFilters(t *testing.T) {
	s := newTestServer(t)
	s.login()
	s.do("POST", "/api/lotes", gin.H{"titulo": "A", "codigo": "F-1", "valor": "1", "tamanho": "1"})

	w := s.do("GET", "/api/atividades?acao=CREATE&tabela=lotes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode[map[string]any](t, w)["total"])

	w = s.do("GET", "/api/atividades?acao=LOGIN", nil)
	assert.Equal(t, 1.0, decode[map[string]any](t, w)["total"])

	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/api/atividades?usuario_id=x", nil).Code)
	assert.Len(t, s.svcs.Feed.Recent(), 2)
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do("GET", "/health", nil).Code)
	w := s.do("GET", "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode[map[string]any](t, w)["status"])

	w = s.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "loteamento_http_requests_total"))

	s.login()
	w = s.do("POST", "/api/uploads/image", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// field decodes one object member of the response body.
func field(t *testing.T, w *httptest.ResponseRecorder, name string) map[string]any {
	t.Helper()
	body := decode[map[string]json.RawMessage](t, w)
	var v map[string]any
	require.NoError(t, json.Unmarshal(body[name], &v), w.Body.String())
	return v
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
