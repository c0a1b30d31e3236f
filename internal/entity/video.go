package entity

import "time"

// Video is a published upload. YouTubeID is the platform id; predictions
// reference the row by ID.
type Video struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatorID   uint       `gorm:"not null;index" json:"creator_id"`
	YouTubeID   string     `gorm:"column:video_id;type:text;uniqueIndex;not null" json:"youtube_id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	URL         string     `gorm:"type:text;not null" json:"url"`
	PublishDate *time.Time `gorm:"type:date" json:"publish_date"`
	Processed   bool       `gorm:"not null;default:false" json:"processed"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Video) TableName() string {
	return "videos"
}
