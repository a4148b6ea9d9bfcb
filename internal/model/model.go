// Package model defines the core pipeline data types.
package model

import "time"

// Role identifies which pipeline stage produced an interaction log entry.
type Role string

// The closed set of log entry roles.
const (
	RoleUser        Role = "user"
	RoleTranscriber Role = "transcriber"
	RoleSegmenter   Role = "segmenter"
	RoleAnalyzer    Role = "analyzer"
	RoleChatbot     Role = "chatbot"
)

// ValidRoles are the allowed interaction log roles.
var ValidRoles = map[Role]bool{
	RoleUser:        true,
	RoleTranscriber: true,
	RoleSegmenter:   true,
	RoleAnalyzer:    true,
	RoleChatbot:     true,
}

// Entry is one record in the append-only interaction log.
type Entry struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// QA is one chat exchange against a processed recording.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
