package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/meta"
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

// MockPageCredentialRepository
type MockPageCredentialRepository struct {
	mock.Mock
}

func (m *MockPageCredentialRepository) FindByCompanyID(ctx context.Context, companyID string) ([]entity.PageCredential, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PageCredential), args.Error(1)
}

func (m *MockPageCredentialRepository) FindCandidatesByPageID(ctx context.Context, pageID string) ([]entity.CredentialCandidate, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CredentialCandidate), args.Error(1)
}

// MockLeadPlatformGateway
type MockLeadPlatformGateway struct {
	mock.Mock
}

func (m *MockLeadPlatformGateway) ListForms(ctx context.Context, pageID, token string) ([]meta.FormSummary, error) {
	args := m.Called(ctx, pageID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meta.FormSummary), args.Error(1)
}

func (m *MockLeadPlatformGateway) ListLeads(ctx context.Context, formID, token string, since *time.Time) ([]meta.RawLead, error) {
	args := m.Called(ctx, formID, token, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meta.RawLead), args.Error(1)
}

func (m *MockLeadPlatformGateway) GetLead(ctx context.Context, leadgenID, token string) (*meta.RawLead, error) {
	args := m.Called(ctx, leadgenID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*meta.RawLead), args.Error(1)
}

// MockLeadNotifier - guarda os leads notificados para inspeção.
// O notifier real é dispara-e-esquece, então o mock precisa ser
// seguro para chamadas concorrentes vindas do pool.
type MockLeadNotifier struct {
	mu    sync.Mutex
	leads []*entity.Lead
}

func (m *MockLeadNotifier) NotifyLeadCaptured(lead *entity.Lead) {
	m.mu.Lock()
	m.leads = append(m.leads, lead)
	m.mu.Unlock()
}

func (m *MockLeadNotifier) Notified() []*entity.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.Lead(nil), m.leads...)
}
