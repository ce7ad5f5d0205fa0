package models

// ProjectModel groups articles under a single owner. The owner id is the
// subject issued by the external identity provider; no local user table exists.
type ProjectModel struct {
	Base
	Name        string                 `json:"name"     gorm:"not null"`
	Slug        string                 `json:"slug"     gorm:"uniqueIndex;not null"`
	OwnerUserID string                 `json:"owner_user_id" gorm:"index;not null"`
	Description string                 `json:"description"`
	Settings    map[string]interface{} `json:"settings,omitempty" gorm:"type:longtext;serializer:json"`
}

func (ProjectModel) TableName() string { return "projects" }
