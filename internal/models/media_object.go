package models

// MediaObject records an uploaded image or video. The bytes themselves live
// in blob storage; this row carries scope, type, and location.
type MediaObject struct {
	BaseModel
	Ownership

	Key         string `gorm:"not null;uniqueIndex" json:"-"`
	URL         string `gorm:"not null" json:"url"`
	ContentType string `gorm:"not null" json:"contentType"`
	SizeBytes   int64  `gorm:"not null" json:"sizeBytes"`
	FileName    string `json:"fileName,omitempty"`
	UploadedBy  string `gorm:"type:uuid;not null" json:"uploadedBy"`
}
