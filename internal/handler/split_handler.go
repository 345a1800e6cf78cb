package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/xlsxsplit/internal/domain"
	"github.com/locvowork/xlsxsplit/internal/service"
	"github.com/locvowork/xlsxsplit/internal/service/serviceutils"
	"github.com/locvowork/xlsxsplit/pkg/sheetsplit"
)

type SplitHandler struct {
	svc *service.SplitService
}

func NewSplitHandler(svc *service.SplitService) *SplitHandler {
	return &SplitHandler{svc: svc}
}

// SplitHandler accepts a multipart upload and streams back the artifact.
func (h *SplitHandler) SplitHandler(c echo.Context) error {
	name, data, err := readUpload(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid upload", err)
	}

	form, err := c.FormParams()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid form", err)
	}

	req := sheetsplit.Request{
		Sheets:     form["sheets"],
		KeyColumns: form["keys"],
		Prefix:     form.Get("prefix"),
		Suffix:     form.Get("suffix"),
		Mode:       sheetsplit.Mode(form.Get("mode")),
	}
	profile := form.Get("profile")
	if req.Mode == "" && profile == "" {
		req.Mode = sheetsplit.ModeSingleWorkbook
	}

	art, err := h.svc.Split(c.Request().Context(), service.SplitInput{
		FileName: name,
		Data:     data,
		Request:  req,
		Profile:  profile,
	})
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to split workbook", err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, art.ContentType)
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": art.FileName}))
	header.Set("X-Split-Groups", strconv.Itoa(art.GroupCount))
	header.Set("X-Split-Entries", strconv.Itoa(len(art.Entries)))
	return c.Blob(http.StatusOK, art.ContentType, art.Data)
}

// InspectHandler reports sheets, shared columns and per-mode output counts.
func (h *SplitHandler) InspectHandler(c echo.Context) error {
	_, data, err := readUpload(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid upload", err)
	}
	form, err := c.FormParams()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid form", err)
	}

	out, err := h.svc.Inspect(c.Request().Context(), data, form["sheets"], form["keys"])
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to inspect workbook", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Workbook inspected successfully", out)
}

func (h *SplitHandler) JobsHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filter := domain.SplitJobFilter{
		Status: c.QueryParam("status"),
		Modes:  c.QueryParams()["mode"],
		Limit:  limit,
		Offset: offset,
	}

	jobs, err := h.svc.Jobs(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to list split jobs", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Split jobs listed successfully", jobs)
}

func (h *SplitHandler) ProfilesHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Profiles listed successfully", h.svc.Profiles())
}

func readUpload(c echo.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file field: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, data, nil
}

// statusFor maps service and engine errors to HTTP status codes.
func statusFor(err error) int {
	var loadErr *sheetsplit.LoadError
	switch {
	case errors.Is(err, sheetsplit.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &loadErr):
		return http.StatusBadRequest
	case errors.Is(err, sheetsplit.ErrNoOutput):
		return http.StatusUnprocessableEntity
	case sheetsplit.IsRequestError(err), errors.Is(err, service.ErrUnknownProfile):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
