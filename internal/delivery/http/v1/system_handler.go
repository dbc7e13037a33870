package v1

import (
	"net/http"

	"agency-site-backend/config"
	"agency-site-backend/internal/delivery/http/response"
	"agency-site-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

// PublicConfig is what the site frontend needs to render the form
type PublicConfig struct {
	RecaptchaSiteKey     string `json:"recaptchaSiteKey,omitempty"`
	BotProtection        string `json:"botProtection"`
	BannerDisplaySeconds int    `json:"bannerDisplaySeconds"`
}

// PublicConfigFrom derives the client config. Keys never leave the server
// when bot protection is off.
func PublicConfigFrom(cfg *config.Config) PublicConfig {
	pc := PublicConfig{
		BotProtection:        "disabled",
		BannerDisplaySeconds: cfg.BannerDisplaySeconds,
	}
	if cfg.BotProtectionEnabled() {
		pc.BotProtection = "enabled"
		pc.RecaptchaSiteKey = cfg.RecaptchaSiteKey
	}
	return pc
}

type SystemHandler struct {
	healthUC usecase.HealthUsecase
	public   PublicConfig
}

func NewSystemHandler(api *gin.RouterGroup, healthUC usecase.HealthUsecase, public PublicConfig) {
	handler := &SystemHandler{healthUC: healthUC, public: public}

	api.GET("/health", handler.Health)
	api.GET("/config", handler.Config)
}

// Health godoc
// @Summary      Health check
// @Description  Liveness plus the status of optional dependencies
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	status, healthy := h.healthUC.Check(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success:   false,
			Message:   "System degraded",
			Data:      status,
			RequestID: c.GetString("RequestID"),
		})
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}

// Config godoc
// @Summary      Public client configuration
// @Description  Bot-protection site key and banner display window for the contact form
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response{data=PublicConfig}
// @Router       /config [get]
func (h *SystemHandler) Config(c *gin.Context) {
	response.Success(c, http.StatusOK, "Client configuration", h.public)
}
