package entity

import "time"

// Creator is a content source whose predictions are graded.
type Creator struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:text;not null" json:"name"`
	ChannelID        string    `gorm:"type:text;uniqueIndex;not null" json:"channel_id"`
	ChannelURL       string    `gorm:"type:text" json:"channel_url"`
	Slug             string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description      string    `gorm:"type:text" json:"description"`
	TotalPredictions int       `gorm:"not null;default:0" json:"total_predictions"`
	AccuracyScore    *float64  `json:"accuracy_score"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Creator) TableName() string {
	return "creators"
}
