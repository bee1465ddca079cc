package pipeline

import (
	"context"

	"github.com/docsmith-ai/promote-cli/internal/model"
	"github.com/docsmith-ai/promote-cli/pkg/docsmith"
)

// targetOps scopes the target client to one project so the reconcilers never
// see project ids.
type targetOps struct {
	client    docsmith.Client
	projectID string
}

func (t *targetOps) CreateUDF(ctx context.Context, udf model.UDF) (string, error) {
	resp, err := t.client.CreateUDF(ctx, t.projectID, udf)
	if err != nil {
		return "", err
	}
	return resp.UDFID, nil
}

func (t *targetOps) DeleteValidation(ctx context.Context, id string) error {
	return t.client.DeleteValidation(ctx, t.projectID, id)
}

func (t *targetOps) TriggerExamples(ctx context.Context, id string) error {
	return t.client.TriggerExamples(ctx, t.projectID, id)
}
