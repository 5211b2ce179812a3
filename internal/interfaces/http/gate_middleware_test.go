package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/gate"
	apphttp "github.com/jhoicas/inventario-pos/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-pos/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "inventario-pos-test"
	testExpMin    = 60
)

var testJWTConfig = gate.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}

// buildGateApp aplicación mínima con una ruta protegida por la puerta.
func buildGateApp() *fiber.App {
	uc := gate.NewUseCase(nil, nil, testJWTConfig, zerolog.Nop())
	app := fiber.New()
	app.Get("/protected", apphttp.GateMiddleware(uc), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func tokenWithScope(t *testing.T, scope string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, "inventario", scope, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doGateRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGateMiddleware_TokenValidoPasa(t *testing.T) {
	resp := doGateRequest(t, buildGateApp(), tokenWithScope(t, gate.ScopeInventory))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
}

func TestGateMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	resp := doGateRequest(t, buildGateApp(), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestGateMiddleware_FormatoIncorrecto_Retorna401(t *testing.T) {
	resp := doGateRequest(t, buildGateApp(), "Token abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestGateMiddleware_OtroScope_Retorna401(t *testing.T) {
	resp := doGateRequest(t, buildGateApp(), tokenWithScope(t, "reportes"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "inventario", gate.ScopeInventory, testIssuer, -1)
	require.NoError(t, err)
	resp := doGateRequest(t, buildGateApp(), "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWT_GenerateAndParse_ConScope(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "inventario", gate.ScopeInventory, testIssuer, testExpMin)
	require.NoError(t, err)

	subject, scope, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "inventario", subject)
	assert.Equal(t, gate.ScopeInventory, scope)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
