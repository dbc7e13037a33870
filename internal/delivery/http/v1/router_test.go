package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agency-site-backend/config"
	v1 "agency-site-backend/internal/delivery/http/v1"
	"agency-site-backend/internal/domain"
	"agency-site-backend/internal/usecase"
	"agency-site-backend/pkg/auth"
	"agency-site-backend/pkg/email"
	"agency-site-backend/pkg/metrics"
	"agency-site-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminSecret = "0123456789abcdef0123456789abcdef"

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Name() string { return "mock" }

func (m *MockSender) Send(ctx context.Context, msg *email.Message) (*email.SendResult, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*email.SendResult), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	return m.Called(ctx, token, remoteIP).Error(0)
}

type MockRedeliveryUsecase struct {
	mock.Mock
}

func (m *MockRedeliveryUsecase) ListPending(ctx context.Context, limit int) ([]domain.FailedDelivery, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FailedDelivery), args.Error(1)
}

func (m *MockRedeliveryUsecase) Redeliver(ctx context.Context, limit int) (*domain.RedeliveryReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RedeliveryReport), args.Error(1)
}

type MockContactUsecase struct {
	mock.Mock
}

func (m *MockContactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest, meta domain.SubmissionMeta) (*domain.DeliveryReceipt, error) {
	args := m.Called(ctx, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryReceipt), args.Error(1)
}

type testServer struct {
	router     *gin.Engine
	sender     *MockSender
	redelivery *MockRedeliveryUsecase
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                    config.EnvDevelopment,
		AllowedOrigins:         []string{"https://agency.dev"},
		EmailFrom:              config.DefaultEmailFrom,
		ContactEmailTo:         "inbox@agency.test",
		BannerDisplaySeconds:   5,
		RateLimitLimit:         5,
		RateLimitWindowSeconds: 600,
		AdminJWTSecret:         adminSecret,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, verifier *MockVerifier) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sender := new(MockSender)
	deps := usecase.ContactDeps{
		Sender:   sender,
		Validate: validation.New(),
		From:     cfg.EmailFrom,
		To:       cfg.ContactEmailTo,
	}
	if verifier != nil {
		deps.Verifier = verifier
	}

	reg := prometheus.NewRegistry()
	redelivery := new(MockRedeliveryUsecase)
	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		ContactUC:    usecase.NewContactUsecase(deps),
		HealthUC:     usecase.NewHealthUsecase(),
		RedeliveryUC: redelivery,
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
	})
	return &testServer{router: router, sender: sender, redelivery: redelivery}
}

func (s *testServer) do(method, path string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func contactBody(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	b, err := json.Marshal(fields)
	require.NoError(t, err)
	return b
}

func TestContactEndpoint(t *testing.T) {
	valid := map[string]string{"name": "Jo", "email": "a@b.co", "subject": "Hello there", "message": "1234567890"}

	t.Run("Should send the email and return the provider ack", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		s.sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
			return msg.To[0] == "inbox@agency.test" && msg.ReplyTo == "a@b.co" && msg.Subject == "Hello there"
		})).Return(&email.SendResult{ID: "re_123", Provider: "resend"}, nil).Once()

		w := s.do(http.MethodPost, "/api/contact", contactBody(t, valid), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Email sent successfully", body["message"])
		assert.Equal(t, map[string]interface{}{"id": "re_123", "provider": "resend"}, body["data"])
		assert.NotEmpty(t, body["request_id"])
		s.sender.AssertExpectations(t)
	})

	t.Run("Should reject a submission without a message", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodPost, "/api/contact",
			contactBody(t, map[string]string{"name": "Jo", "email": "a@b.co", "subject": "Hello there"}), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields", decode(t, w)["error"])
		s.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a malformed email", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodPost, "/api/contact",
			contactBody(t, map[string]string{"name": "Jo", "email": "a@b", "subject": "Hello there", "message": "1234567890"}), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid email format", decode(t, w)["error"])
	})

	t.Run("Should reject an email containing Unicode whitespace", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodPost, "/api/contact",
			contactBody(t, map[string]string{"name": "Jo", "email": "a\u00a0b@c.co", "subject": "Hello there", "message": "1234567890"}), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid email format", decode(t, w)["error"])
		s.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should treat an unparseable body as missing fields", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodPost, "/api/contact", []byte(`{"name":`), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Missing required fields", body["error"])
		assert.NotEmpty(t, body["details"])
	})

	t.Run("Should report provider failures with details", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		s.sender.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("provider timeout")).Once()

		w := s.do(http.MethodPost, "/api/contact", contactBody(t, valid), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Failed to send email", body["error"])
		assert.Equal(t, "provider timeout", body["details"])
		s.sender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Should include details for errors raised before the provider call", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		contactUC := new(MockContactUsecase)
		contactUC.On("SendContactMessage", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("render contact email: template failed"))
		router := v1.NewRouter(v1.RouterDeps{
			Config:    testConfig(),
			ContactUC: contactUC,
			HealthUC:  usecase.NewHealthUsecase(),
		})
		s := &testServer{router: router}

		w := s.do(http.MethodPost, "/api/contact", contactBody(t, valid), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Failed to send email", body["error"])
		assert.Equal(t, "render contact email: template failed", body["details"])
	})

	t.Run("Should reject a failed bot check", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "bad-token", mock.Anything).Return(errors.New("rejected"))
		s := newTestServer(t, testConfig(), verifier)

		fields := map[string]string{"recaptchaToken": "bad-token"}
		for k, v := range valid {
			fields[k] = v
		}
		w := s.do(http.MethodPost, "/api/contact", contactBody(t, fields), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Bot verification failed", decode(t, w)["error"])
		s.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should rate limit when enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimitEnabled = true
		cfg.RateLimitLimit = 1
		s := newTestServer(t, cfg, nil)
		s.sender.On("Send", mock.Anything, mock.Anything).Return(&email.SendResult{ID: "1", Provider: "mock"}, nil)

		first := s.do(http.MethodPost, "/api/contact", contactBody(t, valid), nil)
		second := s.do(http.MethodPost, "/api/contact", contactBody(t, valid), nil)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "Too many requests. Please try again later.", decode(t, second)["error"])
		assert.NotEmpty(t, second.Header().Get("Retry-After"))
		s.sender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Should not rate limit by default", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		s.sender.On("Send", mock.Anything, mock.Anything).Return(&email.SendResult{ID: "1", Provider: "mock"}, nil)

		for i := 0; i < 10; i++ {
			w := s.do(http.MethodPost, "/api/contact", contactBody(t, valid), nil)
			require.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestAdminEndpoints(t *testing.T) {
	bearer := func(t *testing.T, role string) http.Header {
		token, err := auth.IssueAdminToken([]byte(adminSecret), "ops@agency.dev", role, time.Hour)
		require.NoError(t, err)
		return http.Header{"Authorization": []string{"Bearer " + token}}
	}

	t.Run("Should require a token", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodGet, "/api/admin/failed-deliveries", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Unauthorized", decode(t, w)["error"])
	})

	t.Run("Should reject a non-admin token", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodGet, "/api/admin/failed-deliveries", nil, bearer(t, "viewer"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should list pending deliveries", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		s.redelivery.On("ListPending", mock.Anything, 10).
			Return([]domain.FailedDelivery{{ID: "fd-1", Subject: "Hello", Attempts: 1}}, nil)

		w := s.do(http.MethodGet, "/api/admin/failed-deliveries?limit=10", nil, bearer(t, domain.RoleAdmin))

		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].([]interface{})
		require.Len(t, data, 1)
		assert.Equal(t, "fd-1", data[0].(map[string]interface{})["id"])
	})

	t.Run("Should reject a bad limit", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodGet, "/api/admin/failed-deliveries?limit=abc", nil, bearer(t, domain.RoleAdmin))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should redeliver and report", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		s.redelivery.On("Redeliver", mock.Anything, 0).
			Return(&domain.RedeliveryReport{Attempted: 2, Delivered: 2}, nil)

		w := s.do(http.MethodPost, "/api/admin/failed-deliveries/redeliver", nil, bearer(t, domain.RoleAdmin))

		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["delivered"])
	})

	t.Run("Should not mount admin routes without a secret", func(t *testing.T) {
		cfg := testConfig()
		cfg.AdminJWTSecret = ""
		s := newTestServer(t, cfg, nil)

		w := s.do(http.MethodGet, "/api/admin/failed-deliveries", nil, bearer(t, domain.RoleAdmin))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSystemEndpoints(t *testing.T) {
	t.Run("Should report health", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodGet, "/api/health", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "System operational", decode(t, w)["message"])
	})

	t.Run("Should hide the site key when bot protection is off", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		w := s.do(http.MethodGet, "/api/config", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "disabled", data["botProtection"])
		assert.Equal(t, float64(5), data["bannerDisplaySeconds"])
		assert.NotContains(t, data, "recaptchaSiteKey")
	})

	t.Run("Should publish the site key when bot protection is on", func(t *testing.T) {
		cfg := testConfig()
		cfg.RecaptchaSiteKey = "site-key"
		cfg.RecaptchaSecretKey = "secret-key"
		s := newTestServer(t, cfg, nil)

		data := decode(t, s.do(http.MethodGet, "/api/config", nil, nil))["data"].(map[string]interface{})
		assert.Equal(t, "enabled", data["botProtection"])
		assert.Equal(t, "site-key", data["recaptchaSiteKey"])
	})

	t.Run("Should expose prometheus metrics", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)
		s.do(http.MethodGet, "/api/health", nil, nil)

		w := s.do(http.MethodGet, "/metrics", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})

	t.Run("Should refuse preflight from unknown origins", func(t *testing.T) {
		s := newTestServer(t, testConfig(), nil)

		w := s.do(http.MethodOptions, "/api/contact", nil, http.Header{"Origin": []string{"https://evil.example"}})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(http.MethodOptions, "/api/contact", nil, http.Header{"Origin": []string{"https://agency.dev"}})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://agency.dev", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
