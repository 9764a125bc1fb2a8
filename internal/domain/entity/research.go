package entity

// ResearchResponse is the structured answer the agent is asked to produce.
type ResearchResponse struct {
	Topic     string   `json:"topic"`
	Summary   string   `json:"summary"`
	Sources   []string `json:"sources"`
	ToolsUsed []string `json:"tools_used"`
}
