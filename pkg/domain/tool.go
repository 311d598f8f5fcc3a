package domain

import "github.com/aretw0/atidraw/pkg/schema"

// Tool categories used for discovery.
const (
	CategoryDrawing = "drawing"
	CategoryStorage = "storage"
	CategoryAI      = "ai"
)

// Tool describes one invocable tool. It is immutable once registered.
// Its JSON form is the descriptor served by HTTP discovery.
type Tool struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Category    string            `json:"category" yaml:"category"`
	Parameters  schema.Parameters `json:"parameters" yaml:"-"`
	// SuccessMessage is merged into success envelopes when the handler does not provide one.
	SuccessMessage string `json:"-" yaml:"-"`
}

// InputSchema returns the JSON Schema form of the tool's parameters,
// as advertised over the Model Context Protocol.
func (t Tool) InputSchema() schema.InputSchema {
	return t.Parameters.InputSchema()
}

// Call is a request to run a tool with an argument bag.
type Call struct {
	ToolName  string         `json:"toolName"`
	Arguments map[string]any `json:"arguments"`
}
