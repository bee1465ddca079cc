package reconcile

import "github.com/docsmith-ai/promote-cli/internal/model"

// Named is implemented by schema entities whose name is the identity key
// across environments.
type Named interface {
	EntityName() string
}

// nameIndex returns a name -> container-id index over an entity container,
// skipping the editing-metadata keys the API stores alongside entities.
// Duplicate names overwrite earlier entries; names are expected to be unique
// within one environment.
func nameIndex[E Named](container map[string]E) map[string]string {
	items := make(map[string]string, len(container))
	for id, entity := range container {
		if model.IsSchemaMetaKey(id) {
			continue
		}
		items[entity.EntityName()] = id
	}
	return items
}
