package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/dto"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/email"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/logging"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/service"

	"github.com/gin-gonic/gin"
)

const deliveryFailedMessage = "New joiner created, but failed to send welcome email."

type NewJoinerHandler struct {
	svc    *service.NewJoinerService
	logger *slog.Logger
}

func NewNewJoinerHandler(svc *service.NewJoinerService, logger *slog.Logger) *NewJoinerHandler {
	return &NewJoinerHandler{svc: svc, logger: logger}
}

// Create registers a new joiner and sends the welcome email.
// 201 when the email went out, 202 when the record was stored but delivery failed.
func (h *NewJoinerHandler) Create(c *gin.Context) {
	var req dto.CreateNewJoinerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "invalid request body: " + err.Error()})
		return
	}

	res, err := h.svc.Create(c.Request.Context(), service.CreateNewJoinerInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Department:  req.Department,
		ManagerName: req.ManagerName,
		StartDate:   req.StartDate.Time(),
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
				Message: "One or more validation errors occurred.",
				Errors:  verr.Fields,
			})
		case errors.Is(err, service.ErrDuplicateNewJoiner):
			c.JSON(http.StatusConflict, dto.MessageResponse{
				Message: "A new joiner with this email and start date already exists.",
			})
		default:
			logging.FromContext(c.Request.Context(), h.logger).Error("create new joiner", "error", err)
			internalError(c)
		}
		return
	}

	nj := res.NewJoiner
	if res.Delivered() {
		c.Header("Location", "/api/new-joiners/"+strconv.FormatInt(nj.ID, 10))
		c.JSON(http.StatusCreated, dto.NewJoinerCreatedResponse{
			ID:                    nj.ID,
			FullName:              nj.FullName,
			Email:                 nj.Email,
			StartDate:             dto.NewDate(nj.StartDate),
			WelcomeEmailSentAtUtc: nj.WelcomeEmailSentAt,
		})
		return
	}

	d := res.Delivery
	var provider *string
	if d.ProviderMessage != "" {
		provider = &d.ProviderMessage
	}
	c.JSON(http.StatusAccepted, dto.NewJoinerAcceptedResponse{
		ID:              nj.ID,
		Message:         deliveryFailedMessage,
		ErrorType:       d.ErrorType.String(),
		Error:           d.ErrorMessage,
		ProviderMessage: provider,
		Advice:          email.RemediationHint(d.ErrorType),
	})
}

func (h *NewJoinerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	nj, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "not found"})
			return
		}
		logging.FromContext(c.Request.Context(), h.logger).Error("get new joiner", "id", id, "error", err)
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, newJoinerToResponse(nj))
}

// parseID treats an id that cannot name a row the same as a missing row.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "not found"})
		return 0, false
	}
	return id, true
}

func newJoinerToResponse(nj dom.NewJoiner) dto.NewJoinerResponse {
	return dto.NewJoinerResponse{
		ID:                    nj.ID,
		FullName:              nj.FullName,
		Email:                 nj.Email,
		Department:            nj.Department,
		ManagerName:           nj.ManagerName,
		StartDate:             dto.NewDate(nj.StartDate),
		CreatedAtUtc:          nj.CreatedAt,
		WelcomeEmailSentAtUtc: nj.WelcomeEmailSentAt,
		LastSendError:         nj.LastSendError,
	}
}
