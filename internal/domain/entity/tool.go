package entity

type ToolName string

const (
	ToolSearch     ToolName = "search"
	ToolWikipedia  ToolName = "wikipedia"
	ToolSaveToFile ToolName = "save_text_to_file"
)

func (t ToolName) String() string {
	return string(t)
}
