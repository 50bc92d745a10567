package quality

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type Service interface {
	SMART(req SMARTRequest) SMARTResult
	Statement(req StatementRequest) StatementResult
	Review(ctx context.Context, req ReviewRequest) ReviewResponse
}

type service struct {
	advisor Advisor
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(advisor Advisor, m *metrics.Metrics) Service {
	if advisor == nil {
		advisor = NoopAdvisor{}
	}
	return &service{advisor: advisor, metrics: m, now: time.Now}
}

func (s *service) SMART(req SMARTRequest) SMARTResult {
	return ScoreSMART(req.candidate(), s.now())
}

func (s *service) Statement(req StatementRequest) StatementResult {
	return ScoreStatement(req.statement(), s.now())
}

// Review runs the heuristics and asks the advisor for more. An advisor
// failure only costs the extra suggestions.
func (s *service) Review(ctx context.Context, req ReviewRequest) ReviewResponse {
	now := s.now()
	deadline := util.ToTimePtr(req.Deadline)

	resp := ReviewResponse{
		Statement: ScoreStatement(Statement{Title: req.Title, Description: req.Description, Deadline: deadline}, now),
	}
	heuristic := resp.Statement.Suggestions
	if req.Kind == goal.EntityKeyResult || req.Kind == goal.EntityQuarterlyKeyResult {
		smart := ScoreSMART(KeyResultCandidate{
			Title:       req.Title,
			Description: req.Description,
			TargetValue: req.TargetValue,
			Unit:        req.Unit,
			Deadline:    deadline,
		}, now)
		resp.SMART = &smart
		heuristic = append(append([]string{}, smart.Recommendations...), heuristic...)
	}

	advice, err := s.advisor.Suggest(ctx, Candidate{
		Kind:        req.Kind,
		Title:       req.Title,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Deadline:    deadline,
		Profile:     req.Profile,
	})
	if err != nil {
		config.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
			"kind": req.Kind.String(),
		}).Warn("Advisor unavailable, using heuristic suggestions")
		s.metrics.Advice(metrics.OutcomeFallback)
		advice = nil
	}
	resp.AdvisorUsed = len(advice) > 0
	resp.Suggestions = dedupe(append(heuristic, advice...))
	return resp
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
