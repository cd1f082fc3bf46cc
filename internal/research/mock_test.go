package research

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/pkg/firecrawl"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetVendorByID(ctx context.Context, id string) (*model.VendorRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VendorRecord), args.Error(1)
}

func (m *mockStore) GetVendorBySourceURL(ctx context.Context, sourceURL string) (*model.VendorRecord, error) {
	args := m.Called(ctx, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VendorRecord), args.Error(1)
}

func (m *mockStore) UpsertVendorBySourceURL(ctx context.Context, v *model.VendorRecord) (*model.VendorRecord, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VendorRecord), args.Error(1)
}

func (m *mockStore) ListVendorsByType(ctx context.Context, vendorType string) ([]model.VendorRecord, error) {
	args := m.Called(ctx, vendorType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VendorRecord), args.Error(1)
}

func (m *mockStore) ListVendors(ctx context.Context) ([]model.VendorRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VendorRecord), args.Error(1)
}

func (m *mockStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockStore) SaveUser(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockStore) AddUserVendors(ctx context.Context, userID string, vendorIDs []string) error {
	return m.Called(ctx, userID, vendorIDs).Error(0)
}

func (m *mockStore) SetBookedVendors(ctx context.Context, userID string, booked []model.BookedVendor) error {
	return m.Called(ctx, userID, booked).Error(0)
}

func (m *mockStore) GetToDoList(ctx context.Context, userID string) (*model.ToDoList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ToDoList), args.Error(1)
}

func (m *mockStore) SaveToDoList(ctx context.Context, list *model.ToDoList) error {
	return m.Called(ctx, list).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, req firecrawl.ExtractRequest) (*firecrawl.ExtractResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*firecrawl.ExtractResponse), args.Error(1)
}

type extractReq = firecrawl.ExtractRequest

func extractResp(data map[string]any) *firecrawl.ExtractResponse {
	return &firecrawl.ExtractResponse{Success: true, Data: data}
}

func extractRespFailed(msg string) *firecrawl.ExtractResponse {
	return &firecrawl.ExtractResponse{Success: false, Error: msg}
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
