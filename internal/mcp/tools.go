package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/insight"
)

// eventsArgs carries a timeline and an optional zone override.
type eventsArgs struct {
	Events   []activity.Event `json:"events"`
	TimeZone string           `json:"time_zone,omitempty"`
}

type anomaliesArgs struct {
	eventsArgs
	DailyTotals []activity.DailyTotal `json:"daily_totals,omitempty"`
}

type trendsArgs struct {
	eventsArgs
	CategoryDailyTotals []activity.CategoryDailyTotal `json:"category_daily_totals,omitempty"`
	Window              int                           `json:"window,omitempty"`
}

type textArgs struct {
	App   string `json:"app"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type ruleArgs struct {
	textArgs
	Rules []analyzer.CommunityRule `json:"rules,omitempty"`
}

type idleArgs struct {
	Events        []activity.Event `json:"events"`
	MinAFKSeconds *float64         `json:"min_afk_seconds,omitempty"`
}

// IdlePatternsResult wraps detected idle patterns.
type IdlePatternsResult struct {
	Patterns []analyzer.IdlePattern `json:"patterns"`
}

const eventsProp = `"events":{"type":"array","description":"Activity events with timestamp_start, timestamp_end, duration_sec, app, title, category, window_change_count, input_frequency, is_afk, url","items":{"type":"object"}}`
const zoneProp = `"time_zone":{"type":"string","description":"IANA time zone for local hours and days (default from config)"}`
const textProps = `"app":{"type":"string"},"title":{"type":"string"},"url":{"type":"string"}`

var (
	eventsSchema    = json.RawMessage(`{"type":"object","properties":{` + eventsProp + `,` + zoneProp + `},"required":["events"]}`)
	anomaliesSchema = json.RawMessage(`{"type":"object","properties":{` + eventsProp + `,` + zoneProp + `,"daily_totals":{"type":"array","description":"Pre-aggregated {date, total_seconds} rows; used instead of events when given","items":{"type":"object"}}}}`)
	trendsSchema    = json.RawMessage(`{"type":"object","properties":{` + eventsProp + `,` + zoneProp + `,"category_daily_totals":{"type":"array","description":"Pre-aggregated {date, categories} rows; used instead of events when given","items":{"type":"object"}},"window":{"type":"integer","description":"Window size in days to record on the result"}}}`)
	textSchema      = json.RawMessage(`{"type":"object","properties":{` + textProps + `},"required":["app","title"]}`)
	ruleSchema      = json.RawMessage(`{"type":"object","properties":{` + textProps + `,"rules":{"type":"array","description":"Community rules {pattern, category, popularity}; defaults to the server's rule file","items":{"type":"object"}}},"required":["app","title"]}`)
	idleSchema      = json.RawMessage(`{"type":"object","properties":{` + eventsProp + `,"min_afk_seconds":{"type":"number","description":"AFK events longer than this are reported (default 300)"}},"required":["events"]}`)
)

// addTools registers every MCP tool handler on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "score_focus",
		Description: "Segment events into sessions and score each session's focus quality 0-100, with daily averages.",
		InputSchema: eventsSchema,
		Handler:     s.handleScoreFocus,
	})
	s.registerTool(toolDef{
		Name:        "detect_anomalies",
		Description: "Flag days whose total active time deviates from the baseline by z-score.",
		InputSchema: anomaliesSchema,
		Handler:     s.handleDetectAnomalies,
	})
	s.registerTool(toolDef{
		Name:        "analyze_trends",
		Description: "Classify per-category daily time as rising, falling, or stable and note weekday seasonality.",
		InputSchema: trendsSchema,
		Handler:     s.handleAnalyzeTrends,
	})
	s.registerTool(toolDef{
		Name:        "categorize_event",
		Description: "Assign a category to an app/title/url with a softmax confidence and rationale.",
		InputSchema: textSchema,
		Handler:     s.handleCategorizeEvent,
	})
	s.registerTool(toolDef{
		Name:        "match_community_rule",
		Description: "Match an app/title/url against community glob rules, most popular first.",
		InputSchema: ruleSchema,
		Handler:     s.handleMatchCommunityRule,
	})
	s.registerTool(toolDef{
		Name:        "detect_idle_patterns",
		Description: "Report AFK stretches longer than the idle threshold.",
		InputSchema: idleSchema,
		Handler:     s.handleDetectIdlePatterns,
	})
	s.registerTool(toolDef{
		Name:        "focus_report",
		Description: "Run focus, anomaly, trend, and idle analyses over one timeline.",
		InputSchema: eventsSchema,
		Handler:     s.handleFocusReport,
	})
	s.registerTool(toolDef{
		Name:        "generate_insights",
		Description: "Run every analysis and return ranked findings about focus, anomalies, trends, and breaks.",
		InputSchema: eventsSchema,
		Handler:     s.handleGenerateInsights,
	})
}

func decodeArgs(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// zone returns the requested time zone, falling back to the configured one.
func (s *Server) zone(requested string) string {
	if requested != "" {
		return requested
	}
	return s.opts.TimeZone
}

func (s *Server) handleScoreFocus(_ context.Context, args json.RawMessage) (any, error) {
	var a eventsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return analyzer.AnalyzeFocus(a.Events, s.zone(a.TimeZone), s.opts.Sessions, s.opts.Focus)
}

// dailySeries aggregates events into local days after validating them.
func (s *Server) dailySeries(a eventsArgs) (activity.DailySeries, error) {
	if err := activity.ValidateEvents(a.Events); err != nil {
		return activity.DailySeries{}, err
	}
	loc, err := activity.LoadLocation(s.zone(a.TimeZone))
	if err != nil {
		return activity.DailySeries{}, err
	}
	return activity.AggregateDaily(a.Events, loc), nil
}

func (s *Server) handleDetectAnomalies(_ context.Context, args json.RawMessage) (any, error) {
	var a anomaliesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	days := a.DailyTotals
	if days == nil {
		series, err := s.dailySeries(a.eventsArgs)
		if err != nil {
			return nil, err
		}
		days = series.Totals
	}
	return analyzer.DetectAnomalies(days, s.opts.Anomaly)
}

func (s *Server) handleAnalyzeTrends(_ context.Context, args json.RawMessage) (any, error) {
	var a trendsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	days := a.CategoryDailyTotals
	if days == nil {
		series, err := s.dailySeries(a.eventsArgs)
		if err != nil {
			return nil, err
		}
		days = series.Categories
	}
	window := a.Window
	if window <= 0 {
		window = len(days)
	}
	return analyzer.AnalyzeTrends(days, window, s.opts.Trends)
}

func (s *Server) handleCategorizeEvent(_ context.Context, args json.RawMessage) (any, error) {
	var a textArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.App == "" && a.Title == "" && a.URL == "" {
		return nil, errors.New("app, title, or url is required")
	}
	e := activity.Event{App: a.App, Title: a.Title, URL: a.URL}
	return analyzer.CategorizeEvents([]activity.Event{e}, s.rules, s.classifier, s.taxonomy)[0], nil
}

func (s *Server) handleMatchCommunityRule(_ context.Context, args json.RawMessage) (any, error) {
	var a ruleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rules := s.rules
	if a.Rules != nil {
		rs, err := analyzer.NewRuleSet(a.Rules)
		if err != nil {
			return nil, err
		}
		rules = rs
	}
	return rules.Match(analyzer.EventText{App: a.App, Title: a.Title, URL: a.URL}), nil
}

func (s *Server) handleDetectIdlePatterns(_ context.Context, args json.RawMessage) (any, error) {
	var a idleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	params := s.opts.Idle
	if a.MinAFKSeconds != nil {
		params.MinAFKSeconds = *a.MinAFKSeconds
	}
	patterns, err := analyzer.DetectIdlePatterns(a.Events, params)
	if err != nil {
		return nil, err
	}
	return IdlePatternsResult{Patterns: patterns}, nil
}

func (s *Server) handleFocusReport(ctx context.Context, args json.RawMessage) (any, error) {
	return s.buildReport(ctx, args)
}

func (s *Server) buildReport(ctx context.Context, args json.RawMessage) (*analyzer.Report, error) {
	var a eventsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts := s.opts
	opts.TimeZone = s.zone(a.TimeZone)
	return analyzer.BuildReport(ctx, a.Events, opts)
}

// InsightsResult wraps the ranked findings so an empty list is still an
// object.
type InsightsResult struct {
	Insights []insight.Insight `json:"insights"`
}

func (s *Server) handleGenerateInsights(ctx context.Context, args json.RawMessage) (any, error) {
	report, err := s.buildReport(ctx, args)
	if err != nil {
		return nil, err
	}
	insights := insight.NewEngine().Run(&insight.Context{Report: report})
	if insights == nil {
		insights = []insight.Insight{}
	}
	return InsightsResult{Insights: insights}, nil
}
