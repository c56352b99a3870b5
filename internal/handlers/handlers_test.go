package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/handlers"
	"github.com/SscSPs/invoice_pipeline/internal/middleware"
	"github.com/SscSPs/invoice_pipeline/internal/platform/config"
	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PipelineService ---
type MockPipelineService struct {
	mock.Mock
}

func (m *MockPipelineService) GetTask(ctx context.Context, taskID string) (*domain.PipelineTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineTask), args.Error(1)
}

func (m *MockPipelineService) ListInvoices(ctx context.Context, params dto.ListParams) (*dto.ListInvoicesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListInvoicesResponse), args.Error(1)
}

func (m *MockPipelineService) Submit(ctx context.Context, upload domain.Upload, submittedBy string) (*domain.PipelineTask, error) {
	args := m.Called(ctx, upload, submittedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineTask), args.Error(1)
}

func (m *MockPipelineService) Resume(ctx context.Context, taskID string, decision domain.ReviewDecision) (*domain.PipelineTask, error) {
	args := m.Called(ctx, taskID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineTask), args.Error(1)
}

func (m *MockPipelineService) CancelReview(ctx context.Context, taskID string, reason string, cancelledBy string) (*domain.PipelineTask, error) {
	args := m.Called(ctx, taskID, reason, cancelledBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineTask), args.Error(1)
}

func (m *MockPipelineService) ReconcilePosting(ctx context.Context, taskID string, requestedBy string) (*domain.PipelineTask, error) {
	args := m.Called(ctx, taskID, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineTask), args.Error(1)
}

var _ portssvc.PipelineSvcFacade = (*MockPipelineService)(nil)

// --- Mock ReviewReader ---
type MockReviewReader struct {
	mock.Mock
}

func (m *MockReviewReader) GetReview(ctx context.Context, taskID string) (*domain.ReviewRequest, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewRequest), args.Error(1)
}

func (m *MockReviewReader) ListPendingReviews(ctx context.Context, params dto.ListParams) (*dto.ListReviewsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListReviewsResponse), args.Error(1)
}

var _ portssvc.ReviewReaderSvc = (*MockReviewReader)(nil)

// --- Test Suite ---
type HandlersTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockPipeline *MockPipelineService
	mockReviews  *MockReviewReader
	jwtSecret    string
}

func (suite *HandlersTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "invoice-pipeline-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(middleware.SetupValidator())
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockPipeline = new(MockPipelineService)
	suite.mockReviews = new(MockReviewReader)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true, MaxUploadBytes: 1 << 20}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Pipeline: suite.mockPipeline,
		Reviews:  suite.mockReviews,
	}, metrics.New())
}

func (suite *HandlersTestSuite) do(req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestRequiresToken() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil), "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockPipeline.AssertNotCalled(suite.T(), "ListInvoices", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestSubmitInvoice() {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "acme.json")
	suite.Require().NoError(err)
	_, err = part.Write([]byte(`{"vendor":"Acme"}`))
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	task := &domain.PipelineTask{TaskID: "t1", State: domain.StateAwaitingHumanReview}
	suite.mockPipeline.On("Submit", mock.Anything, mock.MatchedBy(func(u domain.Upload) bool {
		return u.FileName == "acme.json" && string(u.Data) == `{"vendor":"Acme"}`
	}), "alice").Return(task, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := suite.do(req, "alice")

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TaskResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("t1", resp.TaskID)
	suite.Equal(string(domain.StateAwaitingHumanReview), resp.State)
	suite.mockPipeline.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestSubmitInvoice_MissingFile() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := suite.do(req, "alice")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestListInvoices_BadLimit() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices?limit=500", nil), "alice")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestListInvoices_BadToken() {
	suite.mockPipeline.On("ListInvoices", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrValidation).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices?nextToken=garbage", nil), "alice")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetTask_NotFound() {
	suite.mockPipeline.On("GetTask", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/missing", nil), "alice")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestReconcile_Conflict() {
	suite.mockPipeline.On("ReconcilePosting", mock.Anything, "t1", "ops").Return(nil, apperrors.ErrConflict).Once()

	w := suite.do(httptest.NewRequest(http.MethodPost, "/api/v1/tasks/t1/reconcile", nil), "ops")
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestDecide_WithReplacement() {
	payload := `{"approved":true,"comment":"fixed vendor","invoice":{"vendor":"Acme Corp","amount":"1450","invoiceDate":"2025-03-14T00:00:00Z","invoiceNumber":"INV-9"}}`
	suite.mockPipeline.On("Resume", mock.Anything, "t1", mock.MatchedBy(func(d domain.ReviewDecision) bool {
		return d.Approved && d.Reviewer == "bob" && d.Invoice != nil &&
			d.Invoice.Vendor == "Acme Corp" && d.Invoice.Amount.Equal(decimal.NewFromInt(1450))
	})).Return(&domain.PipelineTask{TaskID: "t1", State: domain.StatePosted}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/t1/decision", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := suite.do(req, "bob")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPipeline.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestDecide_MissingApproved() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/t1/decision", strings.NewReader(`{"comment":"?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := suite.do(req, "bob")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "approved")
}

func (suite *HandlersTestSuite) TestDecide_NegativeReplacementAmount() {
	payload := `{"approved":true,"invoice":{"vendor":"Acme","amount":"-1","invoiceDate":"2025-03-14T00:00:00Z","invoiceNumber":"INV-9"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/t1/decision", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := suite.do(req, "bob")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPipeline.AssertNotCalled(suite.T(), "Resume", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestDecide_RejectionIgnoresInvalidReplacement() {
	payload := `{"approved":false,"comment":"wrong vendor","invoice":{"vendor":"","amount":"-1"}}`
	suite.mockPipeline.On("Resume", mock.Anything, "t1", mock.MatchedBy(func(d domain.ReviewDecision) bool {
		return !d.Approved && d.Invoice == nil && d.Comment == "wrong vendor"
	})).Return(&domain.PipelineTask{TaskID: "t1", State: domain.StateRejected}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/t1/decision", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := suite.do(req, "bob")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPipeline.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestCancel() {
	suite.mockPipeline.On("CancelReview", mock.Anything, "t1", "duplicate paper copy", "bob").
		Return(&domain.PipelineTask{TaskID: "t1", State: domain.StateCancelled}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/t1/cancel", strings.NewReader(`{"reason":"duplicate paper copy"}`))
	req.Header.Set("Content-Type", "application/json")
	w := suite.do(req, "bob")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPipeline.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestListPendingReviews() {
	suite.mockReviews.On("ListPendingReviews", mock.Anything, mock.MatchedBy(func(p dto.ListParams) bool {
		return p.Limit == 5
	})).Return(&dto.ListReviewsResponse{Reviews: []dto.ReviewResponse{{TaskID: "t1", Status: "PENDING"}}}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/reviews?limit=5", nil), "bob")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListReviewsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Reviews, 1)
}

func (suite *HandlersTestSuite) TestMetricsEndpoint() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	suite.Equal(http.StatusOK, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
