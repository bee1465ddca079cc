package model

// UDF is a user-defined function invocable from extraction lines and
// validation rules. The lambda/lifecycle fields and the docstring are
// environment-volatile and must be stripped before re-creating the function
// in another environment.
type UDF struct {
	Name       string `json:"name,omitempty"`
	Code       string `json:"code,omitempty"`
	Language   string `json:"language,omitempty"`
	ReturnType string `json:"return_type,omitempty"`

	// Volatile per-environment metadata.
	Docstring       string `json:"docstring,omitempty"`
	LastUpdatedAt   string `json:"last_updated_at,omitempty"`
	LambdaID        string `json:"lambda_id,omitempty"`
	LambdaUDFID     string `json:"lambda_udf_id,omitempty"`
	LambdaEndOfLife string `json:"lambda_end_of_life,omitempty"`
}
