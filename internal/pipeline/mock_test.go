package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docsmith-ai/promote-cli/internal/model"
	"github.com/docsmith-ai/promote-cli/pkg/docsmith"
)

// mockClient is a testify mock of docsmith.Client.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) FetchSettings(ctx context.Context, projectID string) (*model.SettingsDocument, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SettingsDocument), args.Error(1)
}

func (m *mockClient) PatchSettings(ctx context.Context, projectID string, settings model.ProjectSettings) error {
	args := m.Called(ctx, projectID, settings)
	return args.Error(0)
}

func (m *mockClient) CreateProject(ctx context.Context, req docsmith.CreateProjectRequest) (*docsmith.CreateProjectResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docsmith.CreateProjectResponse), args.Error(1)
}

func (m *mockClient) FetchSchema(ctx context.Context, projectID string) (model.SchemaDocument, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.SchemaDocument), args.Error(1)
}

func (m *mockClient) PostSchema(ctx context.Context, projectID string, payload *model.SchemaPayload) (model.SchemaDocument, error) {
	args := m.Called(ctx, projectID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.SchemaDocument), args.Error(1)
}

func (m *mockClient) FetchUDFs(ctx context.Context, projectID string) (map[string]model.UDF, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.UDF), args.Error(1)
}

func (m *mockClient) CreateUDF(ctx context.Context, projectID string, udf model.UDF) (*docsmith.CreateUDFResponse, error) {
	args := m.Called(ctx, projectID, udf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docsmith.CreateUDFResponse), args.Error(1)
}

func (m *mockClient) FetchValidations(ctx context.Context, projectID string) (*model.ValidationDocument, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationDocument), args.Error(1)
}

func (m *mockClient) PostValidation(ctx context.Context, projectID string, payload model.ValidationPayload) (*docsmith.PostValidationResponse, error) {
	args := m.Called(ctx, projectID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docsmith.PostValidationResponse), args.Error(1)
}

func (m *mockClient) DeleteValidation(ctx context.Context, projectID, validationID string) error {
	args := m.Called(ctx, projectID, validationID)
	return args.Error(0)
}

func (m *mockClient) TriggerExamples(ctx context.Context, projectID, validationID string) error {
	args := m.Called(ctx, projectID, validationID)
	return args.Error(0)
}

func (m *mockClient) TriggerCodeGeneration(ctx context.Context, projectID, validationID string) error {
	args := m.Called(ctx, projectID, validationID)
	return args.Error(0)
}
