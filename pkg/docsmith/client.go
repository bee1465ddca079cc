// Package docsmith provides a client for the Docsmith build-project API.
// Each deployment environment runs its own API host; a promotion uses two
// clients, one per environment.
package docsmith

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// Client defines the build-project operations used by the promotion
// pipeline. Transport, auth and rate limiting live here; retry policy is the
// caller's concern.
type Client interface {
	FetchSettings(ctx context.Context, projectID string) (*model.SettingsDocument, error)
	PatchSettings(ctx context.Context, projectID string, settings model.ProjectSettings) error
	CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error)

	FetchSchema(ctx context.Context, projectID string) (model.SchemaDocument, error)
	PostSchema(ctx context.Context, projectID string, payload *model.SchemaPayload) (model.SchemaDocument, error)

	FetchUDFs(ctx context.Context, projectID string) (map[string]model.UDF, error)
	CreateUDF(ctx context.Context, projectID string, udf model.UDF) (*CreateUDFResponse, error)

	FetchValidations(ctx context.Context, projectID string) (*model.ValidationDocument, error)
	PostValidation(ctx context.Context, projectID string, payload model.ValidationPayload) (*PostValidationResponse, error)
	DeleteValidation(ctx context.Context, projectID, validationID string) error

	TriggerExamples(ctx context.Context, projectID, validationID string) error
	TriggerCodeGeneration(ctx context.Context, projectID, validationID string) error
}

// CreateProjectRequest creates an empty build project.
type CreateProjectRequest struct {
	Name         string `json:"name"`
	Description  string `json:"desc"`
	Org          string `json:"org"`
	Workspace    string `json:"workspace"`
	CreationBase string `json:"creation_base"`
}

// CreateProjectResponse carries the id the environment assigned.
type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
}

// CreateUDFResponse carries the id the environment assigned.
type CreateUDFResponse struct {
	UDFID string `json:"udf_id"`
}

// PostValidationResponse carries the persisted rule's id.
type PostValidationResponse struct {
	ID string `json:"id"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default request timeout (60s). Zero or negative
// keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit overrides the default request rate (5 req/s). Zero or
// negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	baseURL string
	token   string
	limiter *rate.Limiter
	http    *http.Client
}

// NewClient creates a Docsmith API client for one environment host.
func NewClient(baseURL, token string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		token:   token,
		limiter: rate.NewLimiter(5, 5),
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one request, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// doJSON performs one API request. A non-nil in is sent as a JSON body; a
// non-nil out receives the decoded JSON response. Any status outside 2xx is
// an error carrying the response body verbatim.
func (c *httpClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "docsmith: rate limit")
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "docsmith: marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "docsmith: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "docsmith: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "docsmith: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("docsmith: %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "docsmith: unmarshal response")
		}
	}
	return nil
}
