package model

import "fmt"

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DetailLevel controls how much of the source material a summary keeps.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailDetailed DetailLevel = "detailed"
)

// ParseDetailLevel maps user input to a DetailLevel. An empty string selects
// DetailStandard.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch DetailLevel(s) {
	case "":
		return DetailStandard, nil
	case DetailBrief, DetailStandard, DetailDetailed:
		return DetailLevel(s), nil
	default:
		return "", fmt.Errorf("unknown detail level %q", s)
	}
}
