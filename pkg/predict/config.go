package predict

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig contains every weight, threshold and label that influences a prediction.
// The engine copies it on construction and never mutates it, so one config can be
// shared between goroutines.
type EngineConfig struct {

	// === WIN-MARGIN WEIGHTS ===

	RecordWeight       float64  `yaml:"record_weight"`        // Awarded for the better season record (default: 35)
	RecordGapPct       float64  `yaml:"record_gap_pct"`       // Win% gap required (default: 15)
	FormWeight         float64  `yaml:"form_weight"`          // Awarded for better recent form (default: 20)
	FormGapPoints      int      `yaml:"form_gap_points"`      // Form points gap required (default: 3)
	H2HWeight          float64  `yaml:"h2h_weight"`           // Awarded for head-to-head dominance (default: 15)
	H2HDominancePct    float64  `yaml:"h2h_dominance_pct"`    // Share of meetings won required (default: 50)
	ScoringWeight      float64  `yaml:"scoring_weight"`       // Awarded for the higher scoring average (default: 15)
	ScoringGap         float64  `yaml:"scoring_gap"`          // Average scored gap required (default: 0.5)
	NewsPenalty        float64  `yaml:"news_penalty"`         // Applied to a side with roster news (default: -15)
	FormWinPoints      int      `yaml:"form_win_points"`      // Points per win in form (default: 3)
	FormDrawPoints     int      `yaml:"form_draw_points"`     // Points per draw in form (default: 1)
	FormLossPoints     int      `yaml:"form_loss_points"`     // Points per loss in form (default: 0)
	RosterNewsKeywords []string `yaml:"roster_news_keywords"` // Case-insensitive injury/suspension keywords

	// === WIN-MARGIN BANDS ===

	WinBand          float64 `yaml:"win_band"`           // Differential above which a straight win is tipped (default: 25)
	DoubleChanceBand float64 `yaml:"double_chance_band"` // Differential above which 1X/X2 is tipped (default: 10)
	WinBase          float64 `yaml:"win_base"`           // Straight win base confidence (default: 60)
	WinCap           float64 `yaml:"win_cap"`            // Straight win confidence cap (default: 95)
	DoubleChanceBase float64 `yaml:"double_chance_base"` // 1X/X2 base confidence (default: 70)
	DoubleChanceCap  float64 `yaml:"double_chance_cap"`  // 1X/X2 confidence cap (default: 90)
	DrawBase         float64 `yaml:"draw_base"`          // Close match base confidence (default: 50)

	// === GOALS (NON-BASKETBALL) ===

	GoalThresholds     []float64 `yaml:"goal_thresholds"`      // Over/Under lines evaluated (default: 1.5..5.5)
	GoalMargin         float64   `yaml:"goal_margin"`          // Required clearance either side of a line (default: 0.35)
	GoalBase           float64   `yaml:"goal_base"`            // Base confidence for a goals tip (default: 60)
	GoalSlope          float64   `yaml:"goal_slope"`           // Confidence per goal of clearance (default: 30)
	GoalCap            float64   `yaml:"goal_cap"`             // Goals confidence cap (default: 95)
	GoalRecentWeight   float64   `yaml:"goal_recent_weight"`   // Weight of recent averages when H2H exists (default: 0.7)
	HighGoalExpectancy float64   `yaml:"high_goal_expectancy"` // Factor threshold (default: 2.8)
	LowGoalExpectancy  float64   `yaml:"low_goal_expectancy"`  // Factor threshold (default: 2.2)
	H2HHighGoals       float64   `yaml:"h2h_high_goals"`       // H2H info factor threshold (default: 2.8)
	H2HLowGoals        float64   `yaml:"h2h_low_goals"`        // H2H info factor threshold (default: 1.8)

	// === POINTS (BASKETBALL) ===

	PointsAverageWeight float64 `yaml:"points_average_weight"`  // Weight of averages when H2H exists (default: 0.6)
	PointsTrendWeight   float64 `yaml:"points_trend_weight"`    // Weight of last-game trend (default: 0.2)
	PointsOverBand      float64 `yaml:"points_over_band"`       // Projection above which Over is tipped (default: 220)
	PointsUnderBand     float64 `yaml:"points_under_band"`      // Projection below which Under is tipped (default: 210)
	PointsBandBase      float64 `yaml:"points_band_base"`       // Confidence outside the bands (default: 70)
	PointsLeanBase      float64 `yaml:"points_lean_base"`       // Confidence inside the bands (default: 60)
	PointsLineBuffer    float64 `yaml:"points_line_buffer"`     // Distance between projection and line (default: 7.5)
	PointsH2HBoost      float64 `yaml:"points_h2h_boost"`       // Boost per H2H floor/ceiling check (default: 5)
	PointsH2HTightRange float64 `yaml:"points_h2h_tight_range"` // Max H2H range counted as tight (default: 20)
	PointsCap           float64 `yaml:"points_cap"`             // Points confidence cap (default: 95)
	H2HHighPoints       float64 `yaml:"h2h_high_points"`        // H2H info factor threshold (default: 225)

	// === SPREAD / TEAM TOTALS (BASKETBALL) ===

	SplitMinGames        int     `yaml:"split_min_games"`         // Venue games needed for a split rating (default: 2)
	SplitFallbackGames   int     `yaml:"split_fallback_games"`    // Games used by the fallback rating (default: 5)
	VenueProxy           float64 `yaml:"venue_proxy"`             // Home/away proxy added to the fallback (default: 3)
	FatigueDays          float64 `yaml:"fatigue_days"`            // Rest window that counts as tired (default: 2)
	FatigueAdjustment    float64 `yaml:"fatigue_adjustment"`      // Margin swing for a tired side (default: 4)
	SpreadH2HPct         float64 `yaml:"spread_h2h_pct"`          // H2H share needed to move the margin (default: 60)
	SpreadH2HAdjustment  float64 `yaml:"spread_h2h_adjustment"`   // Margin swing for H2H dominance (default: 3)
	TeamTotalBuffer      float64 `yaml:"team_total_buffer"`       // Safety buffer under the implied score (default: 4.5)
	TeamTotalFloor       float64 `yaml:"team_total_floor"`        // Implied score sanity floor (default: 100)
	TeamTotalBase        float64 `yaml:"team_total_base"`         // Base confidence (default: 60)
	TeamTotalBoost       float64 `yaml:"team_total_boost"`        // Boost when the average clears the line (default: 10)
	TeamTotalClearMargin float64 `yaml:"team_total_clear_margin"` // What "clearly" exceeds means (default: 3)
	TeamTotalCap         float64 `yaml:"team_total_cap"`          // Team total confidence cap (default: 95)

	// === PRESENTATION ===

	Colors Palette `yaml:"colors"`
}

// Palette holds the colour tags attached to candidates.
type Palette struct {
	HomeWin string `yaml:"home_win"`
	AwayWin string `yaml:"away_win"`
	HomeDC  string `yaml:"home_double_chance"`
	AwayDC  string `yaml:"away_double_chance"`
	Neutral string `yaml:"neutral"`
	Totals  string `yaml:"totals"`
}

// DefaultEngineConfig returns the default configuration with all standard values
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		RecordWeight:       35,
		RecordGapPct:       15,
		FormWeight:         20,
		FormGapPoints:      3,
		H2HWeight:          15,
		H2HDominancePct:    50,
		ScoringWeight:      15,
		ScoringGap:         0.5,
		NewsPenalty:        -15,
		FormWinPoints:      3,
		FormDrawPoints:     1,
		FormLossPoints:     0,
		RosterNewsKeywords: []string{"injury", "injured", "out", "miss", "suspended", "surgery"},

		WinBand:          25,
		DoubleChanceBand: 10,
		WinBase:          60,
		WinCap:           95,
		DoubleChanceBase: 70,
		DoubleChanceCap:  90,
		DrawBase:         50,

		GoalThresholds:     []float64{1.5, 2.5, 3.5, 4.5, 5.5},
		GoalMargin:         0.35,
		GoalBase:           60,
		GoalSlope:          30,
		GoalCap:            95,
		GoalRecentWeight:   0.7,
		HighGoalExpectancy: 2.8,
		LowGoalExpectancy:  2.2,
		H2HHighGoals:       2.8,
		H2HLowGoals:        1.8,

		PointsAverageWeight: 0.6,
		PointsTrendWeight:   0.2,
		PointsOverBand:      220,
		PointsUnderBand:     210,
		PointsBandBase:      70,
		PointsLeanBase:      60,
		PointsLineBuffer:    7.5,
		PointsH2HBoost:      5,
		PointsH2HTightRange: 20,
		PointsCap:           95,
		H2HHighPoints:       225,

		SplitMinGames:        2,
		SplitFallbackGames:   5,
		VenueProxy:           3,
		FatigueDays:          2,
		FatigueAdjustment:    4,
		SpreadH2HPct:         60,
		SpreadH2HAdjustment:  3,
		TeamTotalBuffer:      4.5,
		TeamTotalFloor:       100,
		TeamTotalBase:        60,
		TeamTotalBoost:       10,
		TeamTotalClearMargin: 3,
		TeamTotalCap:         95,

		Colors: Palette{
			HomeWin: "#4CAF50",
			AwayWin: "#FF3D00",
			HomeDC:  "#4dabf7",
			AwayDC:  "#ff8787",
			Neutral: "#AAAAAA",
			Totals:  "#EBD5AB",
		},
	}
}

// Clone returns a deep copy so callers can tweak weights without touching a shared config
func (c *EngineConfig) Clone() *EngineConfig {
	ret := *c
	ret.RosterNewsKeywords = append([]string(nil), c.RosterNewsKeywords...)
	ret.GoalThresholds = append([]float64(nil), c.GoalThresholds...)
	return &ret
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *EngineConfig) error {
	if config == nil {
		return fmt.Errorf("engine config must not be nil")
	}

	if config.NewsPenalty > 0 {
		return fmt.Errorf("NewsPenalty must not be positive, got: %f", config.NewsPenalty)
	}

	if config.DoubleChanceBand < 0 || config.WinBand <= config.DoubleChanceBand {
		return fmt.Errorf("WinBand (%f) must be greater than DoubleChanceBand (%f) and both non-negative", config.WinBand, config.DoubleChanceBand)
	}

	if len(config.GoalThresholds) == 0 {
		return fmt.Errorf("GoalThresholds must contain at least one line")
	}

	if config.GoalRecentWeight < 0 || config.GoalRecentWeight > 1 {
		return fmt.Errorf("GoalRecentWeight must be between 0.0 and 1.0, got: %f", config.GoalRecentWeight)
	}

	if config.PointsAverageWeight < 0 || config.PointsAverageWeight > 1 {
		return fmt.Errorf("PointsAverageWeight must be between 0.0 and 1.0, got: %f", config.PointsAverageWeight)
	}

	if config.PointsTrendWeight < 0 || config.PointsTrendWeight > 1 {
		return fmt.Errorf("PointsTrendWeight must be between 0.0 and 1.0, got: %f", config.PointsTrendWeight)
	}

	if config.PointsUnderBand > config.PointsOverBand {
		return fmt.Errorf("PointsUnderBand (%f) must not exceed PointsOverBand (%f)", config.PointsUnderBand, config.PointsOverBand)
	}

	if config.SplitMinGames < 1 || config.SplitFallbackGames < 1 {
		return fmt.Errorf("SplitMinGames and SplitFallbackGames must be at least 1")
	}

	caps := map[string]float64{
		"WinCap":          config.WinCap,
		"DoubleChanceCap": config.DoubleChanceCap,
		"GoalCap":         config.GoalCap,
		"PointsCap":       config.PointsCap,
		"TeamTotalCap":    config.TeamTotalCap,
	}
	for name, v := range caps {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s should be between 0 and 100, got: %f", name, v)
		}
	}

	return nil
}

// LoadEngineConfig reads YAML overrides from path on top of the defaults.
// Keys missing from the file keep their default value.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config: %w", err)
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig applies YAML overrides held in data to the default config
func ParseEngineConfig(data []byte) (*EngineConfig, error) {
	config := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse engine config: %w", err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}
