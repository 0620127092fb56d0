package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/rule"
)

const (
	submitSuccessMessage = "Settings saved and data updated."
	invalidDurationError = "Invalid time value or unit"
	invalidBodyError     = "Invalid request body"
	internalServerError  = "Internal server error"
)

type RuleHandler struct {
	ruleService  *rule.Service
	draftChecker *rule.DraftChecker
}

func NewRuleHandler(ruleService *rule.Service, draftChecker *rule.DraftChecker) *RuleHandler {
	return &RuleHandler{
		ruleService:  ruleService,
		draftChecker: draftChecker,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type submitData struct {
	FollowUpPeriodDays      int    `json:"follow_up_period_days"`
	MinFollowUpsRequired    int    `json:"min_follow_ups_required"`
	FirstResponseDeadlineAt string `json:"first_response_deadline_at"`
	UpdatedCount            int64  `json:"updated_count"`
}

type submitResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    submitData `json:"data"`
}

func (h *RuleHandler) HandleSubmit(c *gin.Context) {
	ctx := c.Request.Context()

	// A missing firstResponseValue stays NaN and is rejected as an invalid duration.
	req := domain.RuleUpdateRequest{
		FirstResponseValue: domain.Quantity(math.NaN()),
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid rule submission body",
			slog.String("event", "rule.submit.bad_request"),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, invalidBodyError)
		return
	}

	result, err := h.ruleService.Submit(ctx, req)
	if err != nil {
		status, message := submitErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(ctx, "rule submission failed",
				slog.String("event", "rule.submit.fail"),
				slog.String("error", err.Error()),
			)
		}
		respondError(c, status, message)
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Success: true,
		Message: submitSuccessMessage,
		Data: submitData{
			FollowUpPeriodDays:      result.Payload.FollowUpPeriodDays,
			MinFollowUpsRequired:    result.Payload.MinFollowUpsRequired,
			FirstResponseDeadlineAt: domain.FormatTimestamp(result.Payload.FirstResponseDeadlineAt),
			UpdatedCount:            result.UpdatedCount,
		},
	})
}

func (h *RuleHandler) HandleValidateDraft(c *gin.Context) {
	ctx := c.Request.Context()

	var draft domain.RuleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, http.StatusBadRequest, invalidBodyError)
		return
	}

	feedback, err := h.draftChecker.Check(ctx, draft)
	if err != nil {
		slog.ErrorContext(ctx, "draft validation failed",
			slog.String("event", "rule.draft.fail"),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, internalServerError)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func submitErrorStatus(err error) (int, string) {
	var storeErr *rule.StoreError

	switch {
	case errors.Is(err, domain.ErrInvalidDuration), errors.Is(err, domain.ErrUnknownUnit):
		return http.StatusBadRequest, invalidDurationError
	case errors.Is(err, domain.ErrScopeRequired):
		return http.StatusBadRequest, domain.ErrScopeRequired.Error()
	case errors.Is(err, domain.ErrEmptyScope):
		return http.StatusBadRequest, domain.ErrEmptyScope.Error()
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusConflict, domain.ErrSubmissionInProgress.Error()
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError, storeErr.Error()
	default:
		return http.StatusInternalServerError, internalServerError
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{
		Success: false,
		Error:   message,
	})
}
