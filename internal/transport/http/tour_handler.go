package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

const maxMultipartMemory = 32 << 20

type TourHandler struct {
	tours   *service.TourService
	resolve URLResolver
}

func RegisterTours(e *echo.Echo, auth *service.AuthService, tours *service.TourService, resolve URLResolver) {
	handler := &TourHandler{tours: tours, resolve: resolve}

	public := e.Group("/api/v1", OptionalAuth(auth))
	public.GET("/travels/:slug/tours", handler.listByTravel)
	public.GET("/travels/:slug/tours/:id", handler.showInTravel)
	public.GET("/tours/:id", handler.show)

	admin := e.Group("/api/v1/admin", RequireAuth(auth), RequireRole(domain.RoleAdmin, domain.RoleEditor))
	admin.POST("/travels/:id/tours", handler.store)
	admin.PUT("/tours/:id", handler.update)
	admin.DELETE("/tours/:id", handler.destroy)
	admin.DELETE("/tours/:id/images", handler.destroyImages)
}

func (h *TourHandler) listByTravel(c echo.Context) error {
	caller := CurrentCaller(c)

	filter, fieldErrors := parseTourFilter(c)
	if len(fieldErrors) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, util.Validation(fieldErrors))
	}

	tours, meta, err := h.tours.ListByTravelSlug(c.Request().Context(), caller, c.Param("slug"), filter)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"data": toTourResponses(tours, caller, h.resolve),
		"meta": meta,
	})
}

func (h *TourHandler) show(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tour id"))
	}

	caller := CurrentCaller(c)
	tour, err := h.tours.Show(c.Request().Context(), caller, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("tour", toTourResponse(*tour, caller, h.resolve)))
}

func (h *TourHandler) showInTravel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tour id"))
	}

	caller := CurrentCaller(c)
	tour, err := h.tours.ShowInTravel(c.Request().Context(), caller, c.Param("slug"), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("tour", toTourResponse(*tour, caller, h.resolve)))
}

func (h *TourHandler) store(c echo.Context) error {
	travelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid travel id"))
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	name := strings.TrimSpace(c.FormValue("name"))
	startDate, err := parseTourDate(c.FormValue("start_date"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, util.Error("start_date must be a date (YYYY-MM-DD)"))
	}
	endDate, err := parseTourDate(c.FormValue("end_date"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, util.Error("end_date must be a date (YYYY-MM-DD)"))
	}
	price, err := domain.ParseMinorUnits(c.FormValue("price"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, util.Error("price must be a decimal amount"))
	}

	uploads, closers, err := buildFileUploads(c.Request().MultipartForm, "images")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer closeAll(closers)

	tour, err := h.tours.Store(c.Request().Context(), travelID, service.TourCreateInput{
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		Price:     price,
		Images:    uploads,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, util.Data("tour", toTourResponse(*tour, CurrentCaller(c), h.resolve)))
}

func (h *TourHandler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tour id"))
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	input := service.TourUpdateInput{}
	if raw := strings.TrimSpace(c.FormValue("name")); raw != "" {
		input.Name = &raw
	}
	if raw := strings.TrimSpace(c.FormValue("start_date")); raw != "" {
		parsed, parseErr := parseTourDate(raw)
		if parseErr != nil {
			return c.JSON(http.StatusUnprocessableEntity, util.Error("start_date must be a date (YYYY-MM-DD)"))
		}
		input.StartDate = &parsed
	}
	if raw := strings.TrimSpace(c.FormValue("end_date")); raw != "" {
		parsed, parseErr := parseTourDate(raw)
		if parseErr != nil {
			return c.JSON(http.StatusUnprocessableEntity, util.Error("end_date must be a date (YYYY-MM-DD)"))
		}
		input.EndDate = &parsed
	}
	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		minor, parseErr := domain.ParseMinorUnits(raw)
		if parseErr != nil {
			return c.JSON(http.StatusUnprocessableEntity, util.Error("price must be a decimal amount"))
		}
		input.Price = &minor
	}

	form := c.Request().MultipartForm
	uploads, closers, err := buildFileUploads(form, "images")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer closeAll(closers)
	input.NewImages = uploads

	replacements, replClosers, err := buildReplacements(form)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer closeAll(replClosers)
	input.ReplaceImages = replacements

	tour, err := h.tours.Update(c.Request().Context(), id, input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("tour", toTourResponse(*tour, CurrentCaller(c), h.resolve)))
}

func (h *TourHandler) destroy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tour id"))
	}
	if err := h.tours.Destroy(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *TourHandler) destroyImages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tour id"))
	}

	var req struct {
		ImageIDs []uuid.UUID `json:"image_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if len(req.ImageIDs) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, util.Error("image_ids is required"))
	}

	if err := h.tours.DestroyImages(c.Request().Context(), id, req.ImageIDs); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *TourHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTravelNotFound):
		return c.JSON(http.StatusNotFound, util.Error("travel not found"))
	case errors.Is(err, service.ErrTourNotFound):
		return c.JSON(http.StatusNotFound, util.Error("tour not found"))
	case errors.Is(err, service.ErrImageNotFound):
		return c.JSON(http.StatusNotFound, util.Error("image not found"))
	case errors.Is(err, service.ErrTourValidation), errors.Is(err, service.ErrImageValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

// parseTourFilter reads the recognised listing parameters. Absent or empty
// values add nothing; enum membership is checked here so invalid requests are
// rejected with a stable field error list before any query runs. Unknown
// parameters are ignored.
func parseTourFilter(c echo.Context) (domain.TourListFilter, map[string][]string) {
	filter := domain.TourListFilter{Page: parsePage(c)}
	fieldErrors := map[string][]string{}

	if raw := strings.TrimSpace(c.QueryParam("start_date")); raw != "" {
		parsed, err := parseTourDate(raw)
		if err != nil {
			fieldErrors["start_date"] = append(fieldErrors["start_date"], "start_date must be a date (YYYY-MM-DD)")
		} else {
			filter.StartDate = &parsed
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("end_date")); raw != "" {
		parsed, err := parseTourDate(raw)
		if err != nil {
			fieldErrors["end_date"] = append(fieldErrors["end_date"], "end_date must be a date (YYYY-MM-DD)")
		} else {
			filter.EndDate = &parsed
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("price_from")); raw != "" {
		minor, err := domain.ParseMinorUnits(raw)
		if err != nil || minor < 0 {
			fieldErrors["price_from"] = append(fieldErrors["price_from"], "price_from must be a non-negative decimal amount")
		} else {
			filter.PriceFrom = &minor
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("price_to")); raw != "" {
		minor, err := domain.ParseMinorUnits(raw)
		if err != nil || minor < 0 {
			fieldErrors["price_to"] = append(fieldErrors["price_to"], "price_to must be a non-negative decimal amount")
		} else {
			filter.PriceTo = &minor
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("sort_by")); raw != "" {
		switch domain.TourSortField(raw) {
		case domain.TourSortPrice, domain.TourSortStartDate, domain.TourSortEndDate:
			filter.SortBy = domain.TourSortField(raw)
		default:
			fieldErrors["sort_by"] = append(fieldErrors["sort_by"], "sort_by must be one of price, start_date, end_date")
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("sort_order")); raw != "" {
		switch domain.SortOrder(raw) {
		case domain.SortOrderAsc, domain.SortOrderDesc:
			filter.SortOrder = domain.SortOrder(raw)
		default:
			fieldErrors["sort_order"] = append(fieldErrors["sort_order"], "sort_order must be one of asc, desc")
		}
	}

	if len(fieldErrors) > 0 {
		return domain.TourListFilter{}, fieldErrors
	}
	return filter, nil
}

func parseTourDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(tourDateFormat, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}

// buildFileUploads opens every file posted under the field (both "name" and
// "name[]" spellings). Callers own the returned closers.
func buildFileUploads(form *multipart.Form, field string) ([]service.FileUpload, []io.ReadCloser, error) {
	if form == nil {
		return nil, nil, nil
	}

	var headers []*multipart.FileHeader
	if files := form.File[field]; files != nil {
		headers = append(headers, files...)
	}
	if files := form.File[field+"[]"]; files != nil {
		headers = append(headers, files...)
	}

	uploads := make([]service.FileUpload, 0, len(headers))
	closers := make([]io.ReadCloser, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, file)
		uploads = append(uploads, service.FileUpload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get(echo.HeaderContentType),
		})
	}
	return uploads, closers, nil
}

// buildReplacements collects files posted as replace_images[<image_id>].
func buildReplacements(form *multipart.Form) ([]service.ImageReplacement, []io.ReadCloser, error) {
	if form == nil {
		return nil, nil, nil
	}

	const prefix = "replace_images["
	var replacements []service.ImageReplacement
	var closers []io.ReadCloser
	for key, headers := range form.File {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		imageID, err := uuid.Parse(key[len(prefix) : len(key)-1])
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("invalid image id in field %s", key)
		}
		if len(headers) == 0 {
			continue
		}
		file, err := headers[0].Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, file)
		replacements = append(replacements, service.ImageReplacement{
			ImageID: imageID,
			Upload: service.FileUpload{
				Reader:      file,
				Size:        headers[0].Size,
				FileName:    headers[0].Filename,
				ContentType: headers[0].Header.Get(echo.HeaderContentType),
			},
		})
	}
	return replacements, closers, nil
}

func closeAll(closers []io.ReadCloser) {
	for _, closer := range closers {
		_ = closer.Close()
	}
}
