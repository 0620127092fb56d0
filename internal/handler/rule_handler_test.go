package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/deadline"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/rule"
	"github.com/KasumiMercury/primind-sales-rules/internal/validation"
)

var submittedAt = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, repo domain.CustomerRuleRepository, lock domain.SubmissionLock, allowBlanket bool) *gin.Engine {
	t.Helper()

	v, err := validation.New()
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	calc := deadline.NewCalculator(false)
	svc := rule.NewService(repo, lock, calc, nil, allowBlanket, rule.WithClock(func() time.Time { return submittedAt }))
	h := NewRuleHandler(svc, rule.NewDraftChecker(v, calc, nil))

	r := gin.New()
	r.POST("/api/sales-rules", h.HandleSubmit)
	r.POST("/api/v1/sales-rules/drafts/validate", h.HandleValidateDraft)
	return r
}

func doPost(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHandleSubmit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockCustomerRuleRepository(ctrl)
	mockRepo.EXPECT().ApplyRule(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(4), nil)

	r := setupRouter(t, mockRepo, nil, true)

	w := doPost(r, "/api/sales-rules", `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":30,"firstResponseUnit":"分钟内"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	want := `{"success":true,"message":"Settings saved and data updated.","data":{"follow_up_period_days":3,"min_follow_ups_required":1,"first_response_deadline_at":"2025-03-14T09:56:53.589Z","updated_count":4}}`
	if w.Body.String() != want {
		t.Errorf("body:\n got %s\nwant %s", w.Body.String(), want)
	}
}

func TestHandleSubmit_ValueCoercion(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		wantStatus   int
		wantDeadline string
	}{
		{name: "numeric string", value: `"2"`, wantStatus: http.StatusOK, wantDeadline: "2025-03-14T11:26:53.589Z"},
		{name: "empty string is zero", value: `""`, wantStatus: http.StatusOK, wantDeadline: "2025-03-14T09:26:53.589Z"},
		{name: "null is zero", value: `null`, wantStatus: http.StatusOK, wantDeadline: "2025-03-14T09:26:53.589Z"},
		{name: "hex string", value: `"0x2"`, wantStatus: http.StatusOK, wantDeadline: "2025-03-14T11:26:53.589Z"},
		{name: "true is one", value: `true`, wantStatus: http.StatusOK, wantDeadline: "2025-03-14T10:26:53.589Z"},
		{name: "non-numeric string", value: `"abc"`, wantStatus: http.StatusBadRequest},
		{name: "infinity string", value: `"Infinity"`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := domain.NewMockCustomerRuleRepository(ctrl)
			if tt.wantStatus == http.StatusOK {
				mockRepo.EXPECT().ApplyRule(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			}

			r := setupRouter(t, mockRepo, nil, true)
			w := doPost(r, "/api/sales-rules", `{"followUpCycle":1,"followUpTimes":1,"firstResponseValue":`+tt.value+`,"firstResponseUnit":"小时内"}`)

			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			body := decode(t, w)
			if tt.wantStatus != http.StatusOK {
				if body["error"] != invalidDurationError {
					t.Errorf("error: got %v, want %q", body["error"], invalidDurationError)
				}
				return
			}

			data := body["data"].(map[string]any)
			if data["first_response_deadline_at"] != tt.wantDeadline {
				t.Errorf("deadline: got %v, want %s", data["first_response_deadline_at"], tt.wantDeadline)
			}
		})
	}
}

func TestHandleSubmit_Errors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		allowBlanket bool
		setup        func(repo *domain.MockCustomerRuleRepository, lock *domain.MockSubmissionLock)
		wantStatus   int
		wantError    string
	}{
		{
			name:         "missing value",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseUnit":"分钟内"}`,
			allowBlanket: true,
			wantStatus:   http.StatusBadRequest,
			wantError:    "Invalid time value or unit",
		},
		{
			name:         "unknown unit",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"周内"}`,
			allowBlanket: true,
			wantStatus:   http.StatusBadRequest,
			wantError:    "Invalid time value or unit",
		},
		{
			name:         "malformed body",
			body:         `{"followUpCycle":`,
			allowBlanket: true,
			wantStatus:   http.StatusBadRequest,
			wantError:    invalidBodyError,
		},
		{
			name:         "invalid customer id",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内","customerIds":["nope"]}`,
			allowBlanket: true,
			wantStatus:   http.StatusBadRequest,
			wantError:    invalidBodyError,
		},
		{
			name:         "scope required",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内"}`,
			allowBlanket: false,
			wantStatus:   http.StatusBadRequest,
			wantError:    "customerIds is required",
		},
		{
			name:         "empty customer list",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内","customerIds":[]}`,
			allowBlanket: true,
			wantStatus:   http.StatusBadRequest,
			wantError:    "customerIds must not be empty",
		},
		{
			name:         "submission in progress",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内"}`,
			allowBlanket: true,
			setup: func(_ *domain.MockCustomerRuleRepository, lock *domain.MockSubmissionLock) {
				lock.EXPECT().Acquire(gomock.Any(), "all").Return("", domain.ErrSubmissionInProgress)
			},
			wantStatus: http.StatusConflict,
			wantError:  "a submission for this scope is already in progress",
		},
		{
			name:         "store error passes message through",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内"}`,
			allowBlanket: true,
			setup: func(repo *domain.MockCustomerRuleRepository, lock *domain.MockSubmissionLock) {
				lock.EXPECT().Acquire(gomock.Any(), "all").Return("t", nil)
				repo.EXPECT().ApplyRule(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New(`relation "customers" does not exist`))
				lock.EXPECT().Release(gomock.Any(), "all", "t").Return(nil)
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  `relation "customers" does not exist`,
		},
		{
			name:         "lock backend failure is internal",
			body:         `{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内"}`,
			allowBlanket: true,
			setup: func(_ *domain.MockCustomerRuleRepository, lock *domain.MockSubmissionLock) {
				lock.EXPECT().Acquire(gomock.Any(), "all").Return("", errors.New("dial tcp: connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  internalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := domain.NewMockCustomerRuleRepository(ctrl)
			mockLock := domain.NewMockSubmissionLock(ctrl)
			if tt.setup != nil {
				tt.setup(mockRepo, mockLock)
			}

			r := setupRouter(t, mockRepo, mockLock, tt.allowBlanket)
			w := doPost(r, "/api/sales-rules", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			body := decode(t, w)
			if body["success"] != false {
				t.Errorf("success: got %v, want false", body["success"])
			}
			if body["error"] != tt.wantError {
				t.Errorf("error: got %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestHandleSubmit_CancelsStoreWithRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockCustomerRuleRepository(ctrl)
	mockRepo.EXPECT().
		ApplyRule(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.RuleUpdatePayload, _ domain.RuleScope) (int64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

	r := setupRouter(t, mockRepo, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/sales-rules",
		bytes.NewBufferString(`{"followUpCycle":3,"followUpTimes":1,"firstResponseValue":1,"firstResponseUnit":"天内"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestHandleValidateDraft(t *testing.T) {
	r := setupRouter(t, nil, nil, true)

	t.Run("valid draft", func(t *testing.T) {
		w := doPost(r, "/api/v1/sales-rules/drafts/validate", `{
			"name": "新客跟进",
			"filters": [{"field": "来源", "operator": "等于", "value": "官网"}],
			"followUpCycle": 3,
			"followUpTimes": 1,
			"recyclingDays": 7,
			"behaviors": ["call"],
			"firstResponse": {"value": 30, "unit": "分钟内"},
			"timeoutWarning": {"enabled": true, "value": 12, "unit": "小时前"},
			"autoRemind": {"enabled": true, "days": [1, 7], "time": "09:00 AM"}
		}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}

		body := decode(t, w)
		if body["valid"] != true {
			t.Errorf("valid: got %v, want true (errors %v)", body["valid"], body["errors"])
		}
		preview, ok := body["preview"].([]any)
		if !ok || len(preview) != 1 {
			t.Fatalf("preview: got %v, want one entry", body["preview"])
		}
		first := preview[0].(map[string]any)
		if first["ordinal"] != "首次" {
			t.Errorf("ordinal: got %v, want 首次", first["ordinal"])
		}
	})

	t.Run("reminder exceeds recycling window", func(t *testing.T) {
		w := doPost(r, "/api/v1/sales-rules/drafts/validate", `{
			"name": "新客跟进",
			"filters": [{"field": "来源", "operator": "等于", "value": "官网"}],
			"followUpCycle": 1,
			"followUpTimes": 1,
			"recyclingDays": 1,
			"behaviors": ["summary"],
			"firstResponse": {"value": 1, "unit": "小时内"},
			"timeoutWarning": {"enabled": true, "value": 25, "unit": "小时前"}
		}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d", w.Code, http.StatusOK)
		}

		body := decode(t, w)
		if body["valid"] != false {
			t.Errorf("valid: got %v, want false", body["valid"])
		}
		errs := body["errors"].(map[string]any)
		if errs["timeoutWarning.value"] != "提醒时间不能超过客群回收天数 (1天)" {
			t.Errorf("errors: got %v", errs)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doPost(r, "/api/v1/sales-rules/drafts/validate", `[`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
