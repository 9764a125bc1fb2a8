package output

import "research-agent/internal/domain/entity"

type ResponseParser interface {
	Parse(text string) (*entity.ResearchResponse, error)
	FormatInstructions() string
}
