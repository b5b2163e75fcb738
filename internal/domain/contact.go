package domain

type Contact struct {
	Base
	Name    string `gorm:"size:128;not null" json:"name" binding:"required,max=128"`
	Email   string `gorm:"index;size:191;not null" json:"email" binding:"required,email"`
	Phone   string `gorm:"size:32" json:"phone,omitempty"`
	Subject string `gorm:"size:191" json:"subject,omitempty"`
	Message string `gorm:"type:text" json:"message,omitempty"`
}

func (Contact) TableName() string { return "contacts" }
