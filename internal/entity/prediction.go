package entity

import "time"

// Direction is the predicted or observed market movement.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// IsDirectional reports whether d calls for a move up or down.
func (d Direction) IsDirectional() bool {
	return d == DirectionBullish || d == DirectionBearish
}

// Prediction is a single market call extracted from a video transcript.
// Rows are written by the extraction pipeline and treated as immutable here.
type Prediction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	VideoID         uint      `gorm:"not null;index" json:"video_id"`
	Video           *Video    `gorm:"foreignKey:VideoID;references:ID" json:"video,omitempty"`
	Statement       string    `gorm:"type:text;not null" json:"statement"`
	Timestamp       string    `gorm:"type:varchar(20)" json:"timestamp"`
	Asset           string    `gorm:"type:text" json:"asset"`
	Direction       Direction `gorm:"type:varchar(20)" json:"direction"`
	Target          *string   `gorm:"type:text" json:"target"`
	Timeframe       string    `gorm:"type:text" json:"timeframe"`
	ConfidenceLevel string    `gorm:"type:varchar(20)" json:"confidence_level"`
	Verified        bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// TargetText returns the raw target, or "" when none was stated.
func (p Prediction) TargetText() string {
	if p.Target == nil {
		return ""
	}
	return *p.Target
}

// ReferenceDate is the date the prediction was made: the video's publish
// date when known, otherwise the row creation time. The second return value
// is false when neither is set.
func (p Prediction) ReferenceDate() (time.Time, bool) {
	if p.Video != nil && p.Video.PublishDate != nil && !p.Video.PublishDate.IsZero() {
		return *p.Video.PublishDate, true
	}
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt, true
	}
	return time.Time{}, false
}
