package reconcile

import "github.com/docsmith-ai/promote-cli/internal/model"

// SanitizeUDFs strips environment-volatile metadata from every UDF so the
// definitions can be re-created in another environment. It returns a copy and
// never mutates its input. The return type is forced to "string"
// unconditionally; the target assigns its own lambda lifecycle on creation.
func SanitizeUDFs(udfs map[string]model.UDF) map[string]model.UDF {
	out := make(map[string]model.UDF, len(udfs))
	for id, udf := range udfs {
		udf.Docstring = ""
		udf.LastUpdatedAt = ""
		udf.LambdaID = ""
		udf.LambdaUDFID = ""
		udf.LambdaEndOfLife = ""
		udf.ReturnType = "string"
		out[id] = udf
	}
	return out
}
