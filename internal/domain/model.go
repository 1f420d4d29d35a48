package domain

// Model is one selectable reasoning backend in the fixed catalog.
type Model struct {
	ID        int    `json:"id"`
	ModelName string `json:"model_name"`
	DevLevel  string `json:"dev_level"`
}

var modelCatalog = []Model{
	{ID: 1, ModelName: "gpt-4o-mini", DevLevel: "stable"},
	{ID: 2, ModelName: "gpt-4o", DevLevel: "stable"},
	{ID: 3, ModelName: "gpt-4.1", DevLevel: "preview"},
	{ID: 4, ModelName: "o3-mini", DevLevel: "experimental"},
}

// ListModels returns the full model catalog.
func ListModels() []Model {
	out := make([]Model, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// GetModel looks up a catalog entry by id.
func GetModel(id int) (*Model, error) {
	for _, m := range modelCatalog {
		if m.ID == id {
			entry := m
			return &entry, nil
		}
	}
	return nil, ErrModelNotFound
}
