package domain

// Correlation links a habit to a shift in same-day screen time.
// Strength is bounded to [0, 100].
type Correlation struct {
	HabitID     string `json:"habit_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Strength    int    `json:"strength"`
}

type RecommendationCategory string

const (
	RecommendationScreenTime RecommendationCategory = "screen_time"
	RecommendationAppLimit   RecommendationCategory = "app_limit"
	RecommendationDetox      RecommendationCategory = "detox"
	RecommendationHabit      RecommendationCategory = "habit"
	RecommendationGeneral    RecommendationCategory = "general"
)

type Recommendation struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    RecommendationCategory `json:"category"`
}

type HabitSummaryBand string

const (
	HabitSummaryExcellent        HabitSummaryBand = "excellent"
	HabitSummaryGood             HabitSummaryBand = "good"
	HabitSummaryModerate         HabitSummaryBand = "moderate"
	HabitSummaryNeedsImprovement HabitSummaryBand = "needs_improvement"
)

type UsageBand string

const (
	UsageHigh         UsageBand = "high"
	UsageModerateHigh UsageBand = "moderate_high"
	UsageModerate     UsageBand = "moderate"
	UsageLow          UsageBand = "low"
)

// WeeklyReport aggregates one week of habit and screen-time metrics
// into a single scored structure for the presentation layer.
type WeeklyReport struct {
	OverallScore int `json:"overall_score"`

	HabitSummary         HabitSummaryBand `json:"habit_summary"`
	HabitCompletionRate  int              `json:"habit_completion_rate"`
	ActiveHabits         int              `json:"active_habits"`
	LongestStreak        int              `json:"longest_streak"`

	ScreenTimeSummary UsageBand `json:"screen_time_summary"`
	AvgScreenTime     int       `json:"avg_screen_time"`
	ScreenTimeChange  int       `json:"screen_time_change"`
	MostUsedApp       string    `json:"most_used_app"`

	Recommendations []Recommendation `json:"recommendations"`
}
