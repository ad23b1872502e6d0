package analyzer

// SessionParams controls session segmentation.
type SessionParams struct {
	// GapSeconds is the largest gap between one event's end and the next
	// event's start that still continues a session.
	GapSeconds float64 `mapstructure:"gap_seconds" json:"gap_seconds"`
}

// TimeOfDayWindow adjusts a session's score when its local start hour falls
// in [StartHour, EndHour).
type TimeOfDayWindow struct {
	StartHour int     `mapstructure:"start_hour" json:"start_hour"`
	EndHour   int     `mapstructure:"end_hour" json:"end_hour"`
	Points    float64 `mapstructure:"points" json:"points"`
}

// Contains reports whether hour falls inside the window.
func (w TimeOfDayWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// FocusParams controls session qualification and scoring.
type FocusParams struct {
	MinSessionSeconds       float64           `mapstructure:"min_session_seconds" json:"min_session_seconds"`
	PassiveInputThreshold   float64           `mapstructure:"passive_input_threshold" json:"passive_input_threshold"`
	PassivePenaltyPerMinute float64           `mapstructure:"passive_penalty_per_minute" json:"passive_penalty_per_minute"`
	ContextSwitchPenalty    float64           `mapstructure:"context_switch_penalty" json:"context_switch_penalty"`
	DistractionCategories   []string          `mapstructure:"distraction_categories" json:"distraction_categories"`
	DistractionPenalty      float64           `mapstructure:"distraction_penalty" json:"distraction_penalty"`
	TimeOfDay               []TimeOfDayWindow `mapstructure:"time_of_day" json:"time_of_day"`
}

// AnomalyParams controls daily anomaly detection.
type AnomalyParams struct {
	MinDataPoints   int     `mapstructure:"min_data_points" json:"min_data_points"`
	ZScoreThreshold float64 `mapstructure:"z_score_threshold" json:"z_score_threshold"`
	ScoreDivisor    float64 `mapstructure:"score_divisor" json:"score_divisor"`
	MaxResults      int     `mapstructure:"max_results" json:"max_results"`
}

// TrendParams controls trend classification and seasonality detection.
type TrendParams struct {
	RisingSlope   float64 `mapstructure:"rising_slope" json:"rising_slope"`
	FallingSlope  float64 `mapstructure:"falling_slope" json:"falling_slope"`
	MaxCategories int     `mapstructure:"max_categories" json:"max_categories"`

	// Seasonality runs only when the series has strictly more days than this.
	SeasonalityMinDays         int     `mapstructure:"seasonality_min_days" json:"seasonality_min_days"`
	SeasonalityBand            float64 `mapstructure:"seasonality_band" json:"seasonality_band"`
	SeasonalityMinObservations int     `mapstructure:"seasonality_min_observations" json:"seasonality_min_observations"`
}

// IdleParams controls idle pattern detection.
type IdleParams struct {
	MinAFKSeconds float64 `mapstructure:"min_afk_seconds" json:"min_afk_seconds"`
}

// DefaultSessionParams returns the standard 5-minute gap rule.
func DefaultSessionParams() SessionParams {
	return SessionParams{GapSeconds: 300}
}

// DefaultFocusParams returns the standard scoring policy.
func DefaultFocusParams() FocusParams {
	return FocusParams{
		MinSessionSeconds:       300,
		PassiveInputThreshold:   0.1,
		PassivePenaltyPerMinute: 0.5,
		ContextSwitchPenalty:    1,
		DistractionCategories:   []string{"social"},
		DistractionPenalty:      10,
		TimeOfDay: []TimeOfDayWindow{
			{StartHour: 9, EndHour: 12, Points: 5},
			{StartHour: 0, EndHour: 6, Points: -5},
		},
	}
}

// DefaultAnomalyParams returns the standard z-score policy.
func DefaultAnomalyParams() AnomalyParams {
	return AnomalyParams{
		MinDataPoints:   5,
		ZScoreThreshold: 2,
		ScoreDivisor:    3,
		MaxResults:      10,
	}
}

// DefaultTrendParams returns the standard ±100 s/day policy.
func DefaultTrendParams() TrendParams {
	return TrendParams{
		RisingSlope:                100,
		FallingSlope:               -100,
		MaxCategories:              5,
		SeasonalityMinDays:         7,
		SeasonalityBand:            0.3,
		SeasonalityMinObservations: 2,
	}
}

// DefaultIdleParams flags AFK stretches longer than five minutes.
func DefaultIdleParams() IdleParams {
	return IdleParams{MinAFKSeconds: 300}
}
