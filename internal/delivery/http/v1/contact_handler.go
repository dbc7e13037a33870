package v1

import (
	"errors"
	"net/http"

	"agency-site-backend/internal/delivery/http/response"
	"agency-site-backend/internal/domain"
	"agency-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxContactBodyBytes caps the request body; the longest valid form is far
// below it.
const maxContactBodyBytes = 64 << 10

const (
	msgEmailSent       = "Email sent successfully"
	msgMissingFields   = "Missing required fields"
	msgInvalidEmail    = "Invalid email format"
	msgBotCheckFailed  = "Bot verification failed"
	msgFailedSendEmail = "Failed to send email"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required).
// Middlewares such as the rate limiter run only on this route.
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, middlewares ...gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	handlers := append(middlewares, handler.SubmitContact)
	public.POST("/contact", handlers...)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates a contact submission and emails it to the agency inbox. Delivery is synchronous.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response{data=domain.DeliveryReceipt}
// @Failure      400      {object}  response.ErrorResponse
// @Failure      429      {object}  response.ErrorResponse
// @Failure      500      {object}  response.ErrorResponse
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContactBodyBytes)

	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(msgMissingFields).WithDetails(err.Error()))
		return
	}

	meta := domain.SubmissionMeta{
		RemoteIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("RequestID"),
	}

	receipt, err := h.contactUC.SendContactMessage(c.Request.Context(), &req, meta)
	if err != nil {
		c.Error(contactError(err))
		return
	}

	response.Success(c, http.StatusOK, msgEmailSent, receipt)
}

func contactError(err error) *apperror.AppError {
	var deliveryErr *domain.DeliveryError
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return apperror.BadRequest(msgMissingFields)
	case errors.Is(err, domain.ErrInvalidEmail):
		return apperror.BadRequest(msgInvalidEmail)
	case errors.Is(err, domain.ErrBotCheckFailed):
		return apperror.BadRequest(msgBotCheckFailed)
	case errors.As(err, &deliveryErr):
		return apperror.New(http.StatusInternalServerError, msgFailedSendEmail, err).
			WithDetails(deliveryErr.Err.Error())
	default:
		return apperror.New(http.StatusInternalServerError, msgFailedSendEmail, err).
			WithDetails(err.Error())
	}
}
