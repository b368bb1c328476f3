package api

// Preferences is the free-form account preference document
// (GET/PUT /preferences). Keys and value shapes are owned by the backend;
// the client round-trips them losslessly.
type Preferences map[string]Value

// RoutingConfig controls backend model routing (GET/PUT /routing/config).
type RoutingConfig struct {
	DefaultModel string           `json:"default_model,omitempty"`
	Rules        []RoutingRule    `json:"rules,omitempty"`
	Overrides    map[string]Value `json:"overrides,omitempty"`
}

// RoutingRule maps a task kind to a model.
type RoutingRule struct {
	Task  string `json:"task"`
	Model string `json:"model"`
}
