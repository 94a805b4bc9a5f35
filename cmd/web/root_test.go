package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lunara/internal/config"
	"lunara/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "lunara", cmd.Use)

	for _, name := range []string{"serve", "catalog", "mask", "cert"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	portFlag := serve.Flags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "p", portFlag.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "mask", "cvv", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestMaskCommand(t *testing.T) {
	out, err := execute(t, "mask", "card", "4111-1111-1111-1111")
	require.NoError(t, err)
	assert.Equal(t, "4111 1111 1111 1111\n", out)

	out, err = execute(t, "--format", "json", "mask", "expiry", "1229")
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"expiry","value":"12/29"}`, out)

	_, err = execute(t, "mask", "pin", "1234")
	assert.Error(t, err)
}

func TestCatalogCommandRemote(t *testing.T) {
	orig := 1999.0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]models.Product{
			{ID: 1, Name: "Moon Ring", Category: models.CategoryRings, Price: 1499, OriginalPrice: &orig, Rating: 4.5, Inventory: 2},
			{ID: 13, Name: "Star Chain", Category: models.CategoryNecklaces, Price: 2999, Rating: 4, Inventory: 0},
		})
	}))
	defer srv.Close()

	out, err := execute(t, "--format", "json", "catalog", "--api", srv.URL, "--category", "Rings")
	require.NoError(t, err)

	var got struct {
		Fallback bool `json:"fallback"`
		Products []struct {
			Name  string `json:"name"`
			Price string `json:"price"`
			Badge string `json:"badge"`
			Image string `json:"image"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Fallback)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Moon Ring", got.Products[0].Name)
	assert.Equal(t, "₹1,499", got.Products[0].Price)
	assert.Equal(t, "Sale", got.Products[0].Badge)
	assert.Equal(t, "/static/images/ring1.jpg", got.Products[0].Image)

	out, err = execute(t, "catalog", "--api", srv.URL, "--search", "star")
	require.NoError(t, err)
	assert.Contains(t, out, "Star Chain")
	assert.Contains(t, out, "Out of Stock")
	assert.NotContains(t, out, "Moon Ring")
}

func TestCatalogCommandFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	out, err := execute(t, "catalog", "--api", srv.URL, "--category", "Earrings")
	require.NoError(t, err)
	assert.Contains(t, out, "backend unreachable")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1+12+1)
}

func TestCertCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "cert", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "cert.pem")

	certPEM, err := os.ReadFile(filepath.Join(dir, "cert.pem"))
	require.NoError(t, err)
	keyPEM, err := os.ReadFile(filepath.Join(dir, "key.pem"))
	require.NoError(t, err)
	_, err = tls.X509KeyPair(certPEM, keyPEM)
	assert.NoError(t, err)

	_, err = generateSelfSignedCert()
	assert.NoError(t, err)
}

func TestNewAppServesStorefront(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := &config.Config{
		Port:         "0",
		APIBaseURL:   srv.URL,
		APITimeout:   time.Second,
		StoragePath:  filepath.Join(dir, "storage.json"),
		SecurityLog:  filepath.Join(dir, "security.log"),
		SessionTTL:   time.Minute,
		SupportEmail: "hello@lunara.com",
	}
	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.audit.Close()

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/featured", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Products []json.RawMessage `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Products, 8)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(`{"email":"asha@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, a.sessions.Len())
}
