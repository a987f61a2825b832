package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinaid/medassist/internal/domain/entities"
	apperrors "github.com/clinaid/medassist/pkg/errors"
)

type stubAnalysisService struct {
	result *entities.AnalysisResult
	err    error
	got    *entities.ClinicalRequest
}

func (s *stubAnalysisService) Analyze(ctx context.Context, req entities.ClinicalRequest) (*entities.AnalysisResult, error) {
	s.got = &req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestAnalyze_Success(t *testing.T) {
	service := &stubAnalysisService{
		result: &entities.AnalysisResult{
			ID:          "res-1",
			RequestKind: entities.RequestKindChat,
			Answer:      "assessment text",
			Risk:        entities.RiskAssessment{RiskLevel: entities.RiskLevelLow},
		},
	}
	handler := NewAnalysisHandler(service)

	body := `{"kind":"chat","text":"How should I adjust dosing?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/assistant/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, service.got)
	assert.Equal(t, entities.RequestKindChat, service.got.Kind)

	var decoded entities.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "res-1", decoded.ID)
	assert.Equal(t, entities.RiskLevelLow, decoded.Risk.RiskLevel)
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	handler := NewAnalysisHandler(&stubAnalysisService{})

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/analyze", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_ValidationErrorMapsTo400(t *testing.T) {
	service := &stubAnalysisService{err: apperrors.NewValidationError("request text is required")}
	handler := NewAnalysisHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/analyze", strings.NewReader(`{"kind":"chat","text":""}`))
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request text is required")
}

func TestAnalyze_InternalErrorHidesDetail(t *testing.T) {
	service := &stubAnalysisService{err: apperrors.NewInternalError("connection string leaked", nil)}
	handler := NewAnalysisHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/analyze", strings.NewReader(`{"kind":"chat","text":"q"}`))
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection string")
	assert.Contains(t, rec.Body.String(), "analysis failed")
}
