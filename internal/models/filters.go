package models

// IndicatorFilter represents query parameters for computing indicators
type IndicatorFilter struct {
	GroupBy     string `form:"groupby" binding:"omitempty,oneof=none day week month year"`
	Summary     string `form:"summary" binding:"omitempty,oneof=default extended none"`
	SplitWeek   bool   `form:"split_week"`
	SplitDay    bool   `form:"split_day"`
	FilterEmpty *bool  `form:"filter_empty"` // nil keeps the indicator default (true)
	Interaction string `form:"interaction"`  // Comma separated: callandtext, call, text, gps
	Flat        bool   `form:"flat"`         // Flatten the result tree into "a__b__c" keys
}

// UserProfile is the stored configuration of a subject
type UserProfile struct {
	ID         string  `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	NightStart string  `json:"nightStart" db:"night_start"` // HH:MM
	NightEnd   string  `json:"nightEnd" db:"night_end"`     // HH:MM
	Weekend    []int   `json:"weekend" db:"weekend"`        // ISO weekdays, 6=Saturday 7=Sunday
	CreatedAt  *string `json:"createdAt,omitempty" db:"created_at"`
}
