package insight

// Engine runs all registered rules against a Context and collects the
// resulting insights.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			FocusSummary,
			FocusDrop,
			DistractionLoad,
			AnomalySummary,
			BehavioralTrend,
			WeeklyRhythm,
			IdleBreaks,
		},
	}
}

// Run executes every rule and returns the insights ranked by impact.
func (e *Engine) Run(ctx *Context) []Insight {
	if ctx == nil || ctx.Report == nil {
		return nil
	}
	var all []Insight
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	return Rank(all)
}
