package docsmith

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

func projectPath(projectID, suffix string) string {
	return fmt.Sprintf("/api/v2/build/projects/%s/%s", url.PathEscape(projectID), suffix)
}

func (c *httpClient) FetchSettings(ctx context.Context, projectID string) (*model.SettingsDocument, error) {
	path := "/api/v2/build/projects?proj_id=" + url.QueryEscape(projectID) + "&query_option=uuid"
	var doc model.SettingsDocument
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *httpClient) PatchSettings(ctx context.Context, projectID string, settings model.ProjectSettings) error {
	path := "/api/v2/build/projects?project_id=" + url.QueryEscape(projectID)
	return c.doJSON(ctx, http.MethodPatch, path, settings, nil)
}

func (c *httpClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error) {
	var resp CreateProjectResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v2/build/projects", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) FetchSchema(ctx context.Context, projectID string) (model.SchemaDocument, error) {
	var doc model.SchemaDocument
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "schema"), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *httpClient) PostSchema(ctx context.Context, projectID string, payload *model.SchemaPayload) (model.SchemaDocument, error) {
	var doc model.SchemaDocument
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "schema"), payload, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *httpClient) FetchUDFs(ctx context.Context, projectID string) (map[string]model.UDF, error) {
	var udfs map[string]model.UDF
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "udfs"), nil, &udfs); err != nil {
		return nil, err
	}
	return udfs, nil
}

func (c *httpClient) CreateUDF(ctx context.Context, projectID string, udf model.UDF) (*CreateUDFResponse, error) {
	var resp CreateUDFResponse
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "udfs"), udf, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) FetchValidations(ctx context.Context, projectID string) (*model.ValidationDocument, error) {
	var doc model.ValidationDocument
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "validations"), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *httpClient) PostValidation(ctx context.Context, projectID string, payload model.ValidationPayload) (*PostValidationResponse, error) {
	var resp PostValidationResponse
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "validations"), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) DeleteValidation(ctx context.Context, projectID, validationID string) error {
	path := projectPath(projectID, "validations") + "?id=" + url.QueryEscape(validationID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *httpClient) TriggerExamples(ctx context.Context, projectID, validationID string) error {
	path := projectPath(projectID, "validations/"+url.PathEscape(validationID)+"/examples")
	return c.doJSON(ctx, http.MethodPut, path, nil, nil)
}

func (c *httpClient) TriggerCodeGeneration(ctx context.Context, projectID, validationID string) error {
	path := projectPath(projectID, "validations/"+url.PathEscape(validationID)+"/code-generation")
	return c.doJSON(ctx, http.MethodPut, path, nil, nil)
}
