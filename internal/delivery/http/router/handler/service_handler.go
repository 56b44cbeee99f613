package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/delivery/http/response"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ServiceHandler holds dependencies for catalog and listing handlers.
type ServiceHandler struct {
	uc     usecase.ListingUsecase
	logger *slog.Logger
}

// NewServiceHandler is the constructor for ServiceHandler, injected by Fx.
func NewServiceHandler(uc usecase.ListingUsecase, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{
		uc:     uc,
		logger: logger,
	}
}

type createServiceRequest struct {
	Category       string   `json:"category" validate:"required"`
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	Country        string   `json:"country" validate:"required"`
	CountryCode    string   `json:"countryCode" validate:"required,len=2"`
	Features       []string `json:"features"`
	Requirements   []string `json:"requirements"`
	ProcessingTime string   `json:"processingTime"`
}

// Create handles the creation of a new listing by a provider.
func (h *ServiceHandler) Create(c echo.Context) error {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	var req createServiceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid listing input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	svc, err := h.uc.Create(c.Request().Context(), actor, &usecase.CreateServiceInput{
		Category:       entity.ServiceCategory(strings.ToUpper(req.Category)),
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Country:        req.Country,
		CountryCode:    req.CountryCode,
		Features:       req.Features,
		Requirements:   req.Requirements,
		ProcessingTime: req.ProcessingTime,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, svc, "Listing created successfully")
}

type updateServiceRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	Country        *string  `json:"country"`
	CountryCode    *string  `json:"countryCode"`
	Features       []string `json:"features"`
	Requirements   []string `json:"requirements"`
	ProcessingTime *string  `json:"processingTime"`
	Status         *string  `json:"status"`
	IsPromoted     *bool    `json:"isPromoted"`
}

// Update handles partial edits of an existing listing.
func (h *ServiceHandler) Update(c echo.Context) error {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid service ID")
	}

	var req updateServiceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid listing input")
	}

	input := &usecase.UpdateServiceInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Country:        req.Country,
		CountryCode:    req.CountryCode,
		Features:       req.Features,
		Requirements:   req.Requirements,
		ProcessingTime: req.ProcessingTime,
		IsPromoted:     req.IsPromoted,
	}
	if req.Status != nil {
		status := entity.ServiceStatus(strings.ToUpper(*req.Status))
		input.Status = &status
	}

	svc, err := h.uc.Update(c.Request().Context(), actor, serviceID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, svc, "Listing updated successfully")
}

// Delete handles the removal of a listing.
func (h *ServiceHandler) Delete(c echo.Context) error {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid service ID")
	}

	if err := h.uc.Delete(c.Request().Context(), actor, serviceID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Listing deleted"}, "Listing deleted successfully")
}

// Get returns a single listing with its reviews. The path segment is an
// ID when it parses as a UUID and a slug otherwise.
func (h *ServiceHandler) Get(c echo.Context) error {
	// Anonymous callers carry the zero actor.
	actor, _ := deliverycontext.GetActor(c)

	param := c.Param("id")

	var detail *usecase.ServiceDetail
	var err error
	if serviceID, parseErr := uuid.Parse(param); parseErr == nil {
		detail, err = h.uc.Get(c.Request().Context(), actor, serviceID)
	} else {
		detail, err = h.uc.GetBySlug(c.Request().Context(), actor, param)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, detail, "Listing retrieved successfully")
}

// Search queries the public catalog.
func (h *ServiceHandler) Search(c echo.Context) error {
	input := &usecase.SearchServicesInput{
		Query:       c.QueryParam("q"),
		CountryCode: c.QueryParam("country"),
	}

	if category := c.QueryParam("category"); category != "" {
		input.Category = entity.ServiceCategory(strings.ToUpper(category))
	}
	if raw := c.QueryParam("minPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid minPrice")
		}
		input.MinPrice = &price
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid maxPrice")
		}
		input.MaxPrice = &price
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid limit")
		}
		input.Limit = limit
	}

	summaries, err := h.uc.Search(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summaries, "Catalog retrieved successfully")
}

// ListOwn returns the acting provider's full catalog, hidden included.
func (h *ServiceHandler) ListOwn(c echo.Context) error {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	services, err := h.uc.ListOwn(c.Request().Context(), actor)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, services, "Listings retrieved successfully")
}
