package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/service"
	"github.com/gofiber/fiber/v2"
)

// HeaderActorID carries the id of the acting user. Authentication happens upstream.
const HeaderActorID = "X-Actor-ID"

type BatchService interface {
	CreateBatch(ctx context.Context, in domain.NewBatchInput) (*domain.SurveyBatch, error)
	UpdateBatch(ctx context.Context, id string, patch domain.BatchPatch, actorID string) (*domain.SurveyBatch, error)
	SetBatchStatus(
		ctx context.Context,
		id string,
		target domain.BatchStatus,
		actorID string,
		opts service.StatusOptions,
	) (*domain.SurveyBatch, error)
	DeleteBatch(ctx context.Context, id string, actorID string) error
	GetBatch(ctx context.Context, id string, includeStats bool) (*service.BatchView, error)
	ListBatches(ctx context.Context, query service.ListBatchesQuery) (*service.Page[service.BatchView], error)
	ListBatchResponses(
		ctx context.Context,
		batchID string,
		params repository.ResponseListParams,
	) (*service.Page[domain.SurveyResponse], error)
	BatchStatistics(ctx context.Context, id string) (*domain.BatchStatistics, error)
	DashboardCounts(ctx context.Context) (*domain.DashboardCounts, error)
}

type BatchHandler struct {
	service BatchService
}

func NewBatchHandler(service BatchService) (*BatchHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("batch service is required")
	}
	return &BatchHandler{service: service}, nil
}

func RegisterBatchRoutes(router fiber.Router, service BatchService) error {
	h, err := NewBatchHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/batches", h.CreateBatch)
	v1.Get("/batches", h.ListBatches)
	v1.Get("/batches/:id", h.GetBatch)
	v1.Patch("/batches/:id", h.UpdateBatch)
	v1.Delete("/batches/:id", h.DeleteBatch)
	v1.Post("/batches/:id/status", h.SetBatchStatus)
	v1.Get("/batches/:id/statistics", h.GetBatchStatistics)
	v1.Get("/batches/:id/responses", h.ListBatchResponses)
	v1.Get("/dashboard/batches", h.GetDashboardCounts)

	return nil
}

type createBatchRequest struct {
	BatchName    string  `json:"batchName"`
	Description  *string `json:"description"`
	Category     string  `json:"category"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	TargetAgeMin *int    `json:"targetAgeMin"`
	TargetAgeMax *int    `json:"targetAgeMax"`
}

type updateBatchRequest struct {
	BatchName    *string `json:"batchName"`
	Description  *string `json:"description"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	TargetAgeMin *int    `json:"targetAgeMin"`
	TargetAgeMax *int    `json:"targetAgeMax"`
}

type setStatusRequest struct {
	Status  string  `json:"status"`
	Reason  string  `json:"reason"`
	IsPause bool    `json:"isPause"`
	IsForce bool    `json:"isForce"`
	EndDate *string `json:"endDate"`
}

type batchResponse struct {
	BatchID       string              `json:"batchId"`
	BatchName     string              `json:"batchName"`
	Description   *string             `json:"description"`
	Category      string              `json:"category"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Status        string              `json:"status"`
	IsPaused      bool                `json:"isPaused"`
	TargetAgeMin  int                 `json:"targetAgeMin"`
	TargetAgeMax  int                 `json:"targetAgeMax"`
	CreatedBy     string              `json:"createdBy"`
	PausedAt      *time.Time          `json:"pausedAt,omitempty"`
	PausedBy      *string             `json:"pausedBy,omitempty"`
	PausedReason  *string             `json:"pausedReason,omitempty"`
	ResumedAt     *time.Time          `json:"resumedAt,omitempty"`
	ResumedBy     *string             `json:"resumedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Statistics    *statisticsResponse `json:"statistics,omitempty"`
	DaysRemaining *int                `json:"daysRemaining,omitempty"`
	IsOverdue     *bool               `json:"isOverdue,omitempty"`
}

type statisticsResponse struct {
	BatchID            string  `json:"batchId"`
	TotalResponses     int64   `json:"totalResponses"`
	ValidatedResponses int64   `json:"validatedResponses"`
	RejectedResponses  int64   `json:"rejectedResponses"`
	PendingResponses   int64   `json:"pendingResponses"`
	UniqueRespondents  int64   `json:"uniqueRespondents"`
	EligibleYouth      int64   `json:"eligibleYouth"`
	ValidationRate     float64 `json:"validationRate"`
	RejectionRate      float64 `json:"rejectionRate"`
	CoverageRate       float64 `json:"coverageRate"`
}

type surveyResponseItem struct {
	ResponseID       string     `json:"responseId"`
	BatchID          string     `json:"batchId"`
	YouthID          string     `json:"youthId"`
	ValidationStatus string     `json:"validationStatus"`
	ValidatedBy      *string    `json:"validatedBy,omitempty"`
	ValidatedAt      *time.Time `json:"validatedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type dashboardResponse struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
	Closed int64 `json:"closed"`
	Draft  int64 `json:"draft"`
}

type pageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type listBatchesResponse struct {
	Data []batchResponse `json:"data"`
	Meta pageMeta        `json:"meta"`
}

type listResponsesResponse struct {
	Data []surveyResponseItem `json:"data"`
	Meta pageMeta             `json:"meta"`
}

func (h *BatchHandler) CreateBatch(c *fiber.Ctx) error {
	var req createBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	in, err := req.toInput(actorID(c))
	if err != nil {
		return writeError(c, err)
	}

	batch, err := h.service.CreateBatch(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(service.BatchView{SurveyBatch: *batch}))
}

func (h *BatchHandler) GetBatch(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	view, err := h.service.GetBatch(c.UserContext(), id, c.QueryBool("includeStats", false))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toBatchResponse(*view))
}

func (h *BatchHandler) ListBatches(c *fiber.Ctx) error {
	query, err := parseListBatchesQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	page, err := h.service.ListBatches(c.UserContext(), query)
	if err != nil {
		return writeError(c, err)
	}

	data := make([]batchResponse, 0, len(page.Data))
	for _, view := range page.Data {
		data = append(data, toBatchResponse(view))
	}

	return c.Status(fiber.StatusOK).JSON(listBatchesResponse{
		Data: data,
		Meta: pageMetaOf(page.Page, page.PageSize, page.Total, page.TotalPages),
	})
}

func (h *BatchHandler) UpdateBatch(c *fiber.Ctx) error {
	var req updateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	patch, err := req.toPatch()
	if err != nil {
		return writeError(c, err)
	}

	id := strings.TrimSpace(c.Params("id"))
	batch, err := h.service.UpdateBatch(c.UserContext(), id, patch, actorID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toBatchResponse(service.BatchView{SurveyBatch: *batch}))
}

func (h *BatchHandler) SetBatchStatus(c *fiber.Ctx) error {
	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	endDate, err := parseOptionalDate(req.EndDate, "endDate")
	if err != nil {
		return writeError(c, err)
	}

	id := strings.TrimSpace(c.Params("id"))
	target := domain.BatchStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	batch, err := h.service.SetBatchStatus(c.UserContext(), id, target, actorID(c), service.StatusOptions{
		Reason:  req.Reason,
		IsPause: req.IsPause,
		IsForce: req.IsForce,
		EndDate: endDate,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toBatchResponse(service.BatchView{SurveyBatch: *batch}))
}

func (h *BatchHandler) DeleteBatch(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.DeleteBatch(c.UserContext(), id, actorID(c)); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BatchHandler) GetBatchStatistics(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	stats, err := h.service.BatchStatistics(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toStatisticsResponse(*stats))
}

func (h *BatchHandler) ListBatchResponses(c *fiber.Ctx) error {
	params := repository.ResponseListParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 0),
	}
	if raw := strings.TrimSpace(c.Query("validationStatus")); raw != "" {
		status, err := domain.ParseValidationStatusFromString(raw)
		if err != nil {
			return writeError(c, err)
		}
		params.ValidationStatus = &status
	}

	id := strings.TrimSpace(c.Params("id"))
	page, err := h.service.ListBatchResponses(c.UserContext(), id, params)
	if err != nil {
		return writeError(c, err)
	}

	data := make([]surveyResponseItem, 0, len(page.Data))
	for _, r := range page.Data {
		data = append(data, surveyResponseItem{
			ResponseID:       r.ID,
			BatchID:          r.BatchID,
			YouthID:          r.YouthID,
			ValidationStatus: r.ValidationStatus.String(),
			ValidatedBy:      r.ValidatedBy,
			ValidatedAt:      r.ValidatedAt,
			CreatedAt:        r.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listResponsesResponse{
		Data: data,
		Meta: pageMetaOf(page.Page, page.PageSize, page.Total, page.TotalPages),
	})
}

func (h *BatchHandler) GetDashboardCounts(c *fiber.Ctx) error {
	counts, err := h.service.DashboardCounts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dashboardResponse{
		Total:  counts.Total,
		Active: counts.Active,
		Closed: counts.Closed,
		Draft:  counts.Draft,
	})
}

func (req createBatchRequest) toInput(actor string) (domain.NewBatchInput, error) {
	in := domain.NewBatchInput{
		Name:         req.BatchName,
		Description:  req.Description,
		Category:     domain.Category(strings.ToLower(strings.TrimSpace(req.Category))),
		TargetAgeMin: req.TargetAgeMin,
		TargetAgeMax: req.TargetAgeMax,
		CreatedBy:    actor,
	}

	start, err := parseDate(req.StartDate, "startDate")
	if err != nil {
		return domain.NewBatchInput{}, err
	}
	end, err := parseDate(req.EndDate, "endDate")
	if err != nil {
		return domain.NewBatchInput{}, err
	}
	in.StartDate = start
	in.EndDate = end

	return in, nil
}

func (req updateBatchRequest) toPatch() (domain.BatchPatch, error) {
	start, err := parseOptionalDate(req.StartDate, "startDate")
	if err != nil {
		return domain.BatchPatch{}, err
	}
	end, err := parseOptionalDate(req.EndDate, "endDate")
	if err != nil {
		return domain.BatchPatch{}, err
	}

	return domain.BatchPatch{
		Name:         req.BatchName,
		Description:  req.Description,
		StartDate:    start,
		EndDate:      end,
		TargetAgeMin: req.TargetAgeMin,
		TargetAgeMax: req.TargetAgeMax,
	}, nil
}

func parseListBatchesQuery(c *fiber.Ctx) (service.ListBatchesQuery, error) {
	query := service.ListBatchesQuery{
		ListParams: repository.ListParams{
			NameContains: c.Query("name"),
			SortBy:       strings.TrimSpace(c.Query("sortBy")),
			SortOrder:    strings.TrimSpace(c.Query("sortOrder")),
			Page:         c.QueryInt("page", 1),
			PageSize:     c.QueryInt("pageSize", 0),
		},
		IncludeStats: c.QueryBool("includeStats", false),
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseBatchStatusFromString(rawStatus)
		if err != nil {
			return service.ListBatchesQuery{}, err
		}
		query.Status = &status
	}

	if rawFrom := strings.TrimSpace(c.Query("createdFrom")); rawFrom != "" {
		from, err := time.Parse(time.RFC3339, rawFrom)
		if err != nil {
			return service.ListBatchesQuery{}, fmt.Errorf("%w: createdFrom must be RFC3339", domain.ErrValidation)
		}
		query.CreatedFrom = &from
	}

	return query, nil
}

// parseDate reads a calendar date. Blank values stay zero so the service reports them as missing.
func parseDate(value string, field string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", domain.ErrValidation, field)
	}
	return t, nil
}

func parseOptionalDate(value *string, field string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}

	t, err := parseDate(*value, field)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return nil, fmt.Errorf("%w: %s must not be empty", domain.ErrValidation, field)
	}
	return &t, nil
}

func actorID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(HeaderActorID))
}

func toBatchResponse(view service.BatchView) batchResponse {
	b := view.SurveyBatch
	resp := batchResponse{
		BatchID:       b.ID,
		BatchName:     b.Name,
		Description:   b.Description,
		Category:      b.Category.String(),
		StartDate:     b.StartDate.Format(time.DateOnly),
		EndDate:       b.EndDate.Format(time.DateOnly),
		Status:        b.Status.String(),
		IsPaused:      b.IsPaused(),
		TargetAgeMin:  b.TargetAgeMin,
		TargetAgeMax:  b.TargetAgeMax,
		CreatedBy:     b.CreatedBy,
		PausedAt:      b.PausedAt,
		PausedBy:      b.PausedBy,
		PausedReason:  b.PausedReason,
		ResumedAt:     b.ResumedAt,
		ResumedBy:     b.ResumedBy,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		DaysRemaining: view.DaysRemaining,
		IsOverdue:     view.IsOverdue,
	}
	if view.Statistics != nil {
		stats := toStatisticsResponse(*view.Statistics)
		resp.Statistics = &stats
	}
	return resp
}

func toStatisticsResponse(s domain.BatchStatistics) statisticsResponse {
	return statisticsResponse{
		BatchID:            s.BatchID,
		TotalResponses:     s.Counts.Total,
		ValidatedResponses: s.Counts.Validated,
		RejectedResponses:  s.Counts.Rejected,
		PendingResponses:   s.Counts.Pending,
		UniqueRespondents:  s.Counts.UniqueRespondents,
		EligibleYouth:      s.EligibleYouth,
		ValidationRate:     s.ValidationRate,
		RejectionRate:      s.RejectionRate,
		CoverageRate:       s.CoverageRate,
	}
}

func pageMetaOf(page, pageSize int, total int64, totalPages int) pageMeta {
	return pageMeta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}
