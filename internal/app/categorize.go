package app

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

var (
	categorizeRules string
	categorizeApp   string
	categorizeTitle string
	categorizeURL   string
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize [timeline]",
	Short: "Categorize events by keywords and community rules",
	Long: `Assign a category to every event in a timeline, or to a single
app/title/url given with flags. Community rules (a JSON list of
{"pattern", "category", "popularity"} glob rules) are tried first, most
popular first; otherwise keyword hits in the title and URL host plus an
application bonus are turned into a softmax confidence.

Examples:
  focuslens categorize events.jsonl --rules community.json
  focuslens categorize --app chrome.exe --title "Pull requests - GitHub"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCategorize,
}

func init() {
	categorizeCmd.Flags().StringVar(&categorizeRules, "rules", "", "JSON file of community rules (default: rules_file from config)")
	categorizeCmd.Flags().StringVar(&categorizeApp, "app", "", "Categorize a single event with this application name")
	categorizeCmd.Flags().StringVar(&categorizeTitle, "title", "", "Window title of the single event")
	categorizeCmd.Flags().StringVar(&categorizeURL, "url", "", "URL of the single event")
	rootCmd.AddCommand(categorizeCmd)
}

func runCategorize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tax, err := cfg.Taxonomy.Compile()
	if err != nil {
		return err
	}

	rulesPath := categorizeRules
	if rulesPath == "" {
		rulesPath = cfg.RulesFile
	}
	rules, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	var events []activity.Event
	single := categorizeApp != "" || categorizeTitle != "" || categorizeURL != ""
	switch {
	case single && len(args) > 0:
		return errors.New("pass either a timeline or --app/--title/--url, not both")
	case single:
		events = []activity.Event{{App: categorizeApp, Title: categorizeTitle, URL: categorizeURL}}
	default:
		path, err := timelinePath(cfg, args)
		if err != nil {
			return err
		}
		events, err = loadTimeline(path)
		if err != nil {
			return err
		}
	}

	results := analyzer.CategorizeEvents(events, rules, analyzer.NewKeywordClassifier(), tax)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	renderCategorizations(cmd.OutOrStdout(), results)
	return nil
}
