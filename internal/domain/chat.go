package domain

const (
	ChatStatusPending   = "pending"
	ChatStatusCompleted = "completed"
	ChatStatusFailed    = "failed"
)

// ChatRequest is one prompt submitted to the AI chat backend and its answer.
type ChatRequest struct {
	Base
	OwnerID  string `gorm:"index;size:36" json:"ownerId"`
	Model    string `gorm:"size:64" json:"model,omitempty"`
	Prompt   string `gorm:"type:text;not null" json:"prompt" binding:"required"`
	Response string `gorm:"type:text" json:"response,omitempty"`
	Status   string `gorm:"index;size:16" json:"status"`
	Tokens   int    `json:"tokens,omitempty"`
}

func (ChatRequest) TableName() string { return "chat_requests" }
