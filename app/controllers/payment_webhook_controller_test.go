package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikageWorks/UnseiPay/app/models"
	"github.com/MikageWorks/UnseiPay/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loggingCountRepo records webhook log writes; every other repository method
// panics through the embedded nil interface if a handler reaches it.
type loggingCountRepo struct {
	payment.Repository
	logCalls int
}

func (r *loggingCountRepo) WithContext(ctx context.Context) payment.Repository {
	return r
}

func (r *loggingCountRepo) CreateWebhookLog(entry *models.PaymentWebhook) error {
	r.logCalls++
	entry.ID = uint(r.logCalls)
	return nil
}

func (r *loggingCountRepo) MarkWebhook(id uint, status, errorMessage string) error {
	return nil
}

func swapWebhookService(t *testing.T, repo *loggingCountRepo) {
	t.Helper()
	orig := newPaymentService
	newPaymentService = func() *payment.Service {
		return payment.NewService(repo, nil, nil, 1980)
	}
	t.Cleanup(func() { newPaymentService = orig })
}

func newWebhookTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/payment/webhook/health", HandlePaymentWebhookHealth)
	app.Get("/api/payment/webhook/:provider", HandlePaymentWebhookVerify)
	app.Post("/api/payment/webhook/:provider", HandlePaymentWebhook)
	return app
}

func TestHandlePaymentWebhook_UnknownProvider(t *testing.T) {
	repo := &loggingCountRepo{}
	swapWebhookService(t, repo)
	app := newWebhookTestApp()

	req := httptest.NewRequest(fiber.MethodPost, "/api/payment/webhook/stripe", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, repo.logCalls)
}

func TestHandlePaymentWebhook_KnownProviderIsLogged(t *testing.T) {
	repo := &loggingCountRepo{}
	swapWebhookService(t, repo)
	app := newWebhookTestApp()

	req := httptest.NewRequest(fiber.MethodPost, "/api/payment/webhook/telecom_credit",
		strings.NewReader(`{"status":"success"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, repo.logCalls)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"success":false`)
	assert.Contains(t, string(body), "No link ID in payload")
}

func TestHandlePaymentWebhookHealth(t *testing.T) {
	app := newWebhookTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/payment/webhook/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestHandlePaymentWebhookVerify_EchoesChallenge(t *testing.T) {
	app := newWebhookTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/payment/webhook/telecom_credit?challenge=abc123", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(body))
}

func TestHandlePaymentWebhookVerify_HubChallenge(t *testing.T) {
	app := newWebhookTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/payment/webhook/alpha_note?hub_challenge=tok", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "tok", string(body))
}

func TestHandlePaymentWebhookVerify_NoChallenge(t *testing.T) {
	app := newWebhookTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/payment/webhook/telecom_credit", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"provider":"telecom_credit"`)
}

func TestParseWebhookBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantFields  map[string]interface{}
	}{
		{
			name:        "json body",
			contentType: fiber.MIMEApplicationJSON,
			body:        `{"order_id":"abc","status":"success","amount":1980}`,
			wantFields:  map[string]interface{}{"order_id": "abc", "status": "success", "amount": float64(1980)},
		},
		{
			name:        "form body",
			contentType: fiber.MIMEApplicationForm,
			body:        "order_id=abc&status=success",
			wantFields:  map[string]interface{}{"order_id": "abc", "status": "success"},
		},
		{
			name:        "json without content type",
			contentType: "",
			body:        `{"order_id":"abc"}`,
			wantFields:  map[string]interface{}{"order_id": "abc"},
		},
		{
			name:        "undecodable body",
			contentType: fiber.MIMEApplicationJSON,
			body:        "not json at all",
			wantFields:  map[string]interface{}{},
		},
		{
			name:        "empty body",
			contentType: fiber.MIMEApplicationJSON,
			body:        "",
			wantFields:  map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseWebhookBody(tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.wantFields, got)
		})
	}
}
