package v1

import (
	"net/http"
	"strconv"

	"agency-site-backend/internal/delivery/http/response"
	"agency-site-backend/internal/domain"
	"agency-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	redeliveryUC domain.RedeliveryUsecase
}

// NewAdminHandler registers the failed-delivery routes on an authenticated group.
func NewAdminHandler(protected *gin.RouterGroup, redeliveryUC domain.RedeliveryUsecase) {
	handler := &AdminHandler{redeliveryUC: redeliveryUC}

	admin := protected.Group("/admin")
	{
		admin.GET("/failed-deliveries", handler.ListFailedDeliveries)
		admin.POST("/failed-deliveries/redeliver", handler.Redeliver)
	}
}

// ListFailedDeliveries godoc
// @Summary      List undelivered contact emails
// @Description  Returns archived messages the email provider rejected, oldest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum items (default 50, max 500)"
// @Success      200    {object}  response.Response{data=[]domain.FailedDelivery}
// @Failure      400    {object}  response.ErrorResponse
// @Failure      401    {object}  response.ErrorResponse
// @Router       /admin/failed-deliveries [get]
func (h *AdminHandler) ListFailedDeliveries(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		c.Error(err)
		return
	}

	items, uerr := h.redeliveryUC.ListPending(c.Request.Context(), limit)
	if uerr != nil {
		c.Error(apperror.Internal(uerr))
		return
	}
	response.Success(c, http.StatusOK, "Failed deliveries", items)
}

// Redeliver godoc
// @Summary      Resend undelivered contact emails
// @Description  Sends each pending archived message once and reports the outcome
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum items (default 50, max 500)"
// @Success      200    {object}  response.Response{data=domain.RedeliveryReport}
// @Failure      401    {object}  response.ErrorResponse
// @Failure      500    {object}  response.ErrorResponse
// @Router       /admin/failed-deliveries/redeliver [post]
func (h *AdminHandler) Redeliver(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		c.Error(err)
		return
	}

	report, uerr := h.redeliveryUC.Redeliver(c.Request.Context(), limit)
	if uerr != nil {
		c.Error(apperror.Internal(uerr))
		return
	}
	response.Success(c, http.StatusOK, "Redelivery finished", report)
}

func queryLimit(c *gin.Context) (int, *apperror.AppError) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperror.BadRequest("limit must be a non-negative integer")
	}
	return limit, nil
}
