package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/delivery/http/response"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReviewHandler holds dependencies for review and purchase handlers.
type ReviewHandler struct {
	uc     usecase.ReviewUsecase
	logger *slog.Logger
}

// NewReviewHandler is the constructor for ReviewHandler, injected by Fx.
func NewReviewHandler(uc usecase.ReviewUsecase, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		uc:     uc,
		logger: logger,
	}
}

type createReviewRequest struct {
	ServiceID string `json:"serviceId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// Create handles publishing a review for a purchased service.
func (h *ReviewHandler) Create(c echo.Context) error {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid review input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid service ID")
	}

	review, err := h.uc.Create(c.Request().Context(), actor, &usecase.CreateReviewInput{
		ServiceID: serviceID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, review, "Review published successfully")
}

// ListByService returns a listing's reviews, newest first.
func (h *ReviewHandler) ListByService(c echo.Context) error {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid service ID")
	}

	reviews, err := h.uc.ListByService(c.Request().Context(), serviceID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, reviews, "Reviews retrieved successfully")
}

// Checkout records a purchase of a published service.
func (h *ReviewHandler) Checkout(c echo.Context) error {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	serviceID, err := uuid.Parse(c.Param("serviceID"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid service ID")
	}

	tx, err := h.uc.Checkout(c.Request().Context(), actor, serviceID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, tx, "Purchase recorded successfully")
}
