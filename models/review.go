package models

import "time"

// ReviewDirection identifies which party is rating whom.
type ReviewDirection string

const (
	DirectionUserToMerchant ReviewDirection = "user_to_merchant"
	DirectionMerchantToUser ReviewDirection = "merchant_to_user"
)

// Rating bounds for every dimension, both directions.
const (
	MinScore = 1
	MaxScore = 10
)

// Dimension keys, user -> merchant. The walk order is fixed.
const (
	DimAppearance  = "appearance"
	DimFigure      = "figure"
	DimService     = "service"
	DimAttitude    = "attitude"
	DimEnvironment = "environment"
)

// Dimension keys, merchant -> user. The walk order is fixed.
const (
	DimAttackQuality   = "attack_quality"
	DimLength          = "length"
	DimHardness        = "hardness"
	DimDuration        = "duration"
	DimUserTemperament = "user_temperament"
)

var userToMerchantDimensions = []string{
	DimAppearance, DimFigure, DimService, DimAttitude, DimEnvironment,
}

var merchantToUserDimensions = []string{
	DimAttackQuality, DimLength, DimHardness, DimDuration, DimUserTemperament,
}

var dimensionLabels = map[string]string{
	DimAppearance:      "Appearance",
	DimFigure:          "Figure",
	DimService:         "Service",
	DimAttitude:        "Attitude",
	DimEnvironment:     "Environment",
	DimAttackQuality:   "Attack quality",
	DimLength:          "Length",
	DimHardness:        "Hardness",
	DimDuration:        "Duration",
	DimUserTemperament: "Temperament",
}

// Dimensions returns the fixed, ordered dimension set for the direction.
// The returned slice must not be modified.
func (d ReviewDirection) Dimensions() []string {
	if d == DirectionMerchantToUser {
		return merchantToUserDimensions
	}
	return userToMerchantDimensions
}

// Valid reports whether the direction is one of the two known values.
func (d ReviewDirection) Valid() bool {
	return d == DirectionUserToMerchant || d == DirectionMerchantToUser
}

// DimensionLabel returns a human-readable label for a dimension key.
func DimensionLabel(key string) string {
	if label, ok := dimensionLabels[key]; ok {
		return label
	}
	return key
}

// ValidScore reports whether a rating value is inside the allowed range.
func ValidScore(v int) bool {
	return v >= MinScore && v <= MaxScore
}

// UserReview is a customer's review of a merchant, one row per order.
type UserReview struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	OrderID    uint `json:"order_id" gorm:"not null;index"`
	MerchantID uint `json:"merchant_id" gorm:"not null;index"`
	// UserID is the customer's Telegram id, denormalized from the order.
	UserID int64 `json:"user_id" gorm:"not null;index"`

	Appearance  int `json:"appearance" gorm:"type:int;not null;check:appearance >= 1 AND appearance <= 10"`
	Figure      int `json:"figure" gorm:"type:int;not null;check:figure >= 1 AND figure <= 10"`
	Service     int `json:"service" gorm:"type:int;not null;check:service >= 1 AND service <= 10"`
	Attitude    int `json:"attitude" gorm:"type:int;not null;check:attitude >= 1 AND attitude <= 10"`
	Environment int `json:"environment" gorm:"type:int;not null;check:environment >= 1 AND environment <= 10"`

	Text        *string `json:"text" gorm:"type:text"`
	IsAnonymous bool    `json:"is_anonymous" gorm:"default:false"`

	IsConfirmedByAdmin bool       `json:"is_confirmed_by_admin" gorm:"default:false"`
	ConfirmedByAdminID *int64     `json:"confirmed_by_admin_id"`
	ConfirmedAt        *time.Time `json:"confirmed_at"`

	IsActive  bool `json:"is_active" gorm:"default:true"`
	IsDeleted bool `json:"is_deleted" gorm:"default:false"`

	ReportPostURL   *string    `json:"report_post_url" gorm:"size:255"`
	ReportMessageID *int       `json:"report_message_id"`
	PublishedAt     *time.Time `json:"published_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the UserReview model
func (UserReview) TableName() string {
	return "user_reviews"
}

// Scores returns the rating vector keyed by dimension.
func (r *UserReview) Scores() map[string]int {
	return map[string]int{
		DimAppearance:  r.Appearance,
		DimFigure:      r.Figure,
		DimService:     r.Service,
		DimAttitude:    r.Attitude,
		DimEnvironment: r.Environment,
	}
}

// SetScores applies a full rating vector. Callers validate first.
func (r *UserReview) SetScores(scores map[string]int) {
	r.Appearance = scores[DimAppearance]
	r.Figure = scores[DimFigure]
	r.Service = scores[DimService]
	r.Attitude = scores[DimAttitude]
	r.Environment = scores[DimEnvironment]
}

// MerchantReview is a merchant's review of a customer, one row per order.
type MerchantReview struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	OrderID    uint  `json:"order_id" gorm:"not null;index"`
	MerchantID uint  `json:"merchant_id" gorm:"not null;index"`
	UserID     int64 `json:"user_id" gorm:"not null;index"`

	AttackQuality   int `json:"attack_quality" gorm:"type:int;not null;check:attack_quality >= 1 AND attack_quality <= 10"`
	Length          int `json:"length" gorm:"type:int;not null;check:length >= 1 AND length <= 10"`
	Hardness        int `json:"hardness" gorm:"type:int;not null;check:hardness >= 1 AND hardness <= 10"`
	Duration        int `json:"duration" gorm:"type:int;not null;check:duration >= 1 AND duration <= 10"`
	UserTemperament int `json:"user_temperament" gorm:"type:int;not null;check:user_temperament >= 1 AND user_temperament <= 10"`

	Text        *string `json:"text" gorm:"type:text"`
	IsAnonymous bool    `json:"is_anonymous" gorm:"default:false"`

	IsConfirmedByAdmin bool       `json:"is_confirmed_by_admin" gorm:"default:false"`
	ConfirmedByAdminID *int64     `json:"confirmed_by_admin_id"`
	ConfirmedAt        *time.Time `json:"confirmed_at"`

	IsActive  bool `json:"is_active" gorm:"default:true"`
	IsDeleted bool `json:"is_deleted" gorm:"default:false"`

	ReportPostURL   *string    `json:"report_post_url" gorm:"size:255"`
	ReportMessageID *int       `json:"report_message_id"`
	PublishedAt     *time.Time `json:"published_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the MerchantReview model
func (MerchantReview) TableName() string {
	return "merchant_reviews"
}

// Scores returns the rating vector keyed by dimension.
func (r *MerchantReview) Scores() map[string]int {
	return map[string]int{
		DimAttackQuality:   r.AttackQuality,
		DimLength:          r.Length,
		DimHardness:        r.Hardness,
		DimDuration:        r.Duration,
		DimUserTemperament: r.UserTemperament,
	}
}

// SetScores applies a full rating vector. Callers validate first.
func (r *MerchantReview) SetScores(scores map[string]int) {
	r.AttackQuality = scores[DimAttackQuality]
	r.Length = scores[DimLength]
	r.Hardness = scores[DimHardness]
	r.Duration = scores[DimDuration]
	r.UserTemperament = scores[DimUserTemperament]
}
