package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/quality"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

var scoreJSON bool

// draft is the YAML layout of a goal statement to score. Kind defaults to a
// key result, which also gets the SMART rubric.
type draft struct {
	Kind        string   `yaml:"kind"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	TargetValue *float64 `yaml:"target_value"`
	Unit        string   `yaml:"unit"`
	Deadline    string   `yaml:"deadline"`
}

type scoreReport struct {
	Kind      goal.EntityType         `json:"kind"`
	Statement quality.StatementResult `json:"statement"`
	SMART     *quality.SMARTResult    `json:"smart,omitempty"`
}

var scoreCmd = &cobra.Command{
	Use:   "score FILE",
	Short: "Score a goal draft with the SMART rubric and the statement checks",
	Long: `Score reads a YAML draft ("-" for stdin) such as

  kind: key_result
  title: Increase monthly revenue to 50000
  description: Grow recurring revenue from the new plans
  target_value: 50000
  unit: BRL
  deadline: 2025-12-31

and prints the statement confidence plus, for key results, the SMART score.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func readDraft(path string, stdin io.Reader) (draft, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return draft{}, fmt.Errorf("read draft: %w", err)
	}

	var d draft
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return draft{}, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return d, nil
}

func score(d draft, now time.Time) (scoreReport, error) {
	kind := goal.EntityKeyResult
	if strings.TrimSpace(d.Kind) != "" {
		k, err := goal.ParseEntityType(d.Kind)
		if err != nil {
			return scoreReport{}, err
		}
		kind = k
	}

	var deadline *time.Time
	if strings.TrimSpace(d.Deadline) != "" {
		t, err := util.ParseLocalDateTime(d.Deadline)
		if err != nil {
			return scoreReport{}, fmt.Errorf("%w: deadline: %v", goal.ErrInvalidInput, err)
		}
		deadline = &t
	}

	r := scoreReport{
		Kind: kind,
		Statement: quality.ScoreStatement(quality.Statement{
			Title:       d.Title,
			Description: d.Description,
			Deadline:    deadline,
		}, now),
	}
	if kind == goal.EntityKeyResult || kind == goal.EntityQuarterlyKeyResult {
		smart := quality.ScoreSMART(quality.KeyResultCandidate{
			Title:       d.Title,
			Description: d.Description,
			TargetValue: d.TargetValue,
			Unit:        d.Unit,
			Deadline:    deadline,
		}, now)
		r.SMART = &smart
	}
	return r, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	d, err := readDraft(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	r, err := score(d, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	printReport(out, d.Title, r)
	return nil
}

func verdict(valid bool) string {
	if valid {
		return green("valid")
	}
	return red("needs work")
}

func check(ok bool) string {
	if ok {
		return green("✓")
	}
	return red("✗")
}

func printReport(w io.Writer, title string, r scoreReport) {
	fmt.Fprintf(w, "%s %s\n\n", bold(r.Kind.String()+":"), title)

	fmt.Fprintf(w, "%s %d%% (%s)\n", cyan("Statement confidence:"), r.Statement.Confidence, verdict(r.Statement.Valid))
	for _, issue := range r.Statement.Issues {
		fmt.Fprintf(w, "  %s %s\n", red("issue"), issue)
	}
	for _, warn := range r.Statement.Warnings {
		fmt.Fprintf(w, "  %s %s\n", yellow("warning"), warn)
	}
	for _, s := range r.Statement.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}

	if r.SMART == nil {
		return
	}
	s := r.SMART
	fmt.Fprintf(w, "\n%s %d/100 (%s)\n", cyan("SMART score:"), s.Score, verdict(s.Valid))
	fmt.Fprintf(w, "  %s specific  %s measurable  %s achievable  %s relevant  %s time-bound\n",
		check(s.Specific), check(s.Measurable), check(s.Achievable), check(s.Relevant), check(s.TimeBound))
	for _, rec := range s.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}
