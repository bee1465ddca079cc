package reconcile

import "github.com/docsmith-ai/promote-cli/internal/model"

// MapFieldIDs builds a name-keyed correspondence from old-schema identifiers
// to new-schema identifiers, covering both classes and fields in a single
// namespace. Call it only after the reconciled schema has been persisted and
// the target has echoed final identifiers back: the mapping cannot be
// computed from the pre-post state.
//
// The mapping is intentionally partial: names present on only one side
// produce no entry.
func MapFieldIDs(oldSchema, newSchema model.SchemaDocument) map[string]string {
	mapping := make(map[string]string)
	oldClasses := nameIndex(oldSchema)
	newClasses := nameIndex(newSchema)

	for className, oldClassID := range oldClasses {
		newClassID, ok := newClasses[className]
		if !ok {
			continue
		}
		mapping[oldClassID] = newClassID

		oldFields := nameIndex(oldSchema[oldClassID].Fields)
		newFields := nameIndex(newSchema[newClassID].Fields)
		for fieldName, oldFieldID := range oldFields {
			if newFieldID, ok := newFields[fieldName]; ok {
				mapping[oldFieldID] = newFieldID
			}
		}
	}
	return mapping
}
