package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Insert(ctx context.Context, lead *entity.Lead) (bool, error) {
	args := m.Called(ctx, lead)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) Exists(ctx context.Context, leadgenID string) (bool, error) {
	args := m.Called(ctx, leadgenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) ExistsBatch(ctx context.Context, leadgenIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, leadgenIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockLeadRepository) LatestFacebookLeadTime(ctx context.Context, companyID string) (*time.Time, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// noopNotifier
type noopNotifier struct {
	mu    sync.Mutex
	leads []*entity.Lead
}

func (n *noopNotifier) NotifyLeadCaptured(lead *entity.Lead) {
	n.mu.Lock()
	n.leads = append(n.leads, lead)
	n.mu.Unlock()
}

// TestCaptureLeadSucesso - Captura manual grava com source MANUAL e notifica
func TestCaptureLeadSucesso(t *testing.T) {
	mockRepo := new(MockLeadRepository)
	notifier := &noopNotifier{}

	var saved *entity.Lead
	mockRepo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.Lead)
	}).Return(true, nil)

	handler := NewLeadHandler(mockRepo, notifier)
	body := `{"company_id":"comp-1","email":"joao@example.com","name":"João Silva","phone":"+5511999999999"}`
	req := httptest.NewRequest("POST", "/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CaptureLead(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	assert.NotNil(t, saved)
	assert.Equal(t, entity.LeadSourceManual, saved.Source)
	assert.Equal(t, entity.LeadStatusNew, saved.Status)
	assert.Equal(t, "comp-1", saved.CompanyID)
	assert.NotEmpty(t, saved.ID)
	assert.Empty(t, saved.LeadgenID, "lead manual não tem id do Facebook")
	assert.Len(t, notifier.leads, 1)
}

// TestCaptureLeadCamposObrigatorios - Sem company_id ou email: 400
func TestCaptureLeadCamposObrigatorios(t *testing.T) {
	mockRepo := new(MockLeadRepository)
	handler := NewLeadHandler(mockRepo, &noopNotifier{})

	cases := []string{
		`{"email":"joao@example.com"}`,
		`{"company_id":"comp-1"}`,
		`{não é json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest("POST", "/leads", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.CaptureLead(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}

	mockRepo.AssertNotCalled(t, "Insert")
}

// TestCaptureLeadErroDeBanco - Falha na gravação: 500 e nenhuma notificação
func TestCaptureLeadErroDeBanco(t *testing.T) {
	mockRepo := new(MockLeadRepository)
	notifier := &noopNotifier{}
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	handler := NewLeadHandler(mockRepo, notifier)
	req := httptest.NewRequest("POST", "/leads", strings.NewReader(`{"company_id":"comp-1","email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	handler.CaptureLead(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, notifier.leads)
}

// TestCaptureLeadRateLimit - Mesmo IP passando do limite leva 429
func TestCaptureLeadRateLimit(t *testing.T) {
	mockRepo := new(MockLeadRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(true, nil)
	handler := NewLeadHandler(mockRepo, &noopNotifier{})

	var last int
	for i := 0; i < 11; i++ {
		body := fmt.Sprintf(`{"company_id":"comp-1","email":"lead%d@example.com"}`, i)
		req := httptest.NewRequest("POST", "/leads", strings.NewReader(body))
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		rec := httptest.NewRecorder()
		handler.CaptureLead(rec, req)
		last = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)

	// IP diferente não é afetado
	req := httptest.NewRequest("POST", "/leads", strings.NewReader(`{"company_id":"comp-1","email":"outro@example.com"}`))
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	rec := httptest.NewRecorder()
	handler.CaptureLead(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRateLimiterJanela - A contagem zera depois da janela
func TestRateLimiterJanela(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.Allow("ip-1"))
	assert.True(t, rl.Allow("ip-1"))
	assert.False(t, rl.Allow("ip-1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("ip-1"))
}
