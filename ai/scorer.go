package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is the four-band rubric verdict. It is kept alongside the two-value
// wire category so internal callers and tests see the full resolution.
type Tier string

const (
	TierDreamTeam Tier = "Dream Team"
	TierStrong    Tier = "Strong"
	TierAverage   Tier = "Average"
	TierWeak      Tier = "Weak"
)

// TierFor maps a clamped score onto the rubric bands.
func TierFor(score float64) Tier {
	switch {
	case score >= 90:
		return TierDreamTeam
	case score >= 70:
		return TierStrong
	case score >= 40:
		return TierAverage
	default:
		return TierWeak
	}
}

// Wire categories. The four rubric tiers collapse to these two values at
// the serialization boundary.
const (
	CategoryStrongMatch = "Strong Match"
	CategoryGoodMatch   = "Good Match"
)

// MatchResult is the canonical scoring verdict. Computed fresh on every
// request, never persisted.
type MatchResult struct {
	Score       float64
	Tier        Tier
	Reason      string
	NeededRoles []string
	Degraded    bool
}

// Category collapses the verdict to the surfaced two-value form:
// Strong Match at score >= 85, Good Match otherwise.
func (r *MatchResult) Category() string {
	if r.Score >= 85 {
		return CategoryStrongMatch
	}
	return CategoryGoodMatch
}

// Degraded builds the fixed fallback verdict for a failed scoring pipeline,
// with the failure class as the reason. Callers always hand the client a
// well-formed score object.
func Degraded(err error) *MatchResult {
	return &MatchResult{
		Score:       50,
		Tier:        TierAverage,
		Reason:      FailureClass(err),
		NeededRoles: []string{},
		Degraded:    true,
	}
}

// Generator is the prompt-in, text-out capability the scoring and
// extraction engines consume. *Gateway implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

//go:embed prompts/match_pair.md
var pairTemplate string

//go:embed prompts/match_team.md
var teamTemplate string

const defaultMaxLogLength = 200

// Scorer builds evaluation prompts, calls the reasoning service, and
// normalizes the structured verdict. Failures are returned, not absorbed:
// the service boundary decides when to substitute Degraded.
type Scorer struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator Generator, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// Score evaluates candidate against evaluator one-on-one, or against the
// evaluator's team when roster is non-empty.
func (s *Scorer) Score(ctx context.Context, evaluator, candidate *models.UserProfile, roster []models.UserProfile) (*MatchResult, error) {
	if evaluator == nil || candidate == nil {
		return nil, errors.New("evaluator and candidate profiles are required")
	}

	prompt := buildMatchPrompt(evaluator, candidate, roster)

	s.logger.Debug("match scoring request",
		zap.String("evaluator_id", evaluator.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("roster_size", len(roster)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("match scoring response",
		zap.String("evaluator_id", evaluator.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseMatchResponse(raw)
}

// buildMatchPrompt is pure: identical inputs produce byte-identical prompts,
// which golden tests depend on.
func buildMatchPrompt(evaluator, candidate *models.UserProfile, roster []models.UserProfile) string {
	if len(roster) == 0 {
		prompt := strings.ReplaceAll(pairTemplate, "{{EVALUATOR_PROFILE}}", renderProfile(evaluator))
		return strings.ReplaceAll(prompt, "{{CANDIDATE_PROFILE}}", renderProfile(candidate))
	}

	var rosterBlock strings.Builder
	for i := range roster {
		if i > 0 {
			rosterBlock.WriteString("\n\n")
		}
		rosterBlock.WriteString(fmt.Sprintf("Member %d:\n", i+1))
		rosterBlock.WriteString(renderProfile(&roster[i]))
	}

	prompt := strings.ReplaceAll(teamTemplate, "{{TEAM_ROSTER}}", rosterBlock.String())
	return strings.ReplaceAll(prompt, "{{CANDIDATE_PROFILE}}", renderProfile(candidate))
}

// renderProfile flattens a profile into the fixed field order the templates
// expect. List fields are deduplicated first-occurrence-first and joined
// with ", "; blank fields render as "not specified" so the rubric always
// sees every line.
func renderProfile(u *models.UserProfile) string {
	var b strings.Builder
	line := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = "not specified"
		}
		b.WriteString("- ")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	line("Name", u.Name)
	line("Role preference", u.Role)
	line("Skills", joinList(u.Skills))
	line("Tech stack", joinList(u.TechStack))
	line("Experience", joinList(u.Experience))
	line("School", u.School)
	line("Location", u.Location)
	line("Bio", u.Description)

	return strings.TrimRight(b.String(), "\n")
}

// joinList dedups case-insensitively keeping the first occurrence, then
// joins with ", ".
func joinList(items []string) string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return strings.Join(out, ", ")
}

func parseMatchResponse(raw string) (*MatchResult, error) {
	data, err := DecodeObject(raw)
	if err != nil {
		return nil, err
	}

	score, err := fieldFloat(data, "score")
	if err != nil {
		return nil, err
	}
	score = clampScore(score)

	reason := fieldString(data, "reason")
	if reason == "" {
		reason = "no reasoning returned"
	}

	// The upstream category claim is ignored: both the tier and the wire
	// category derive from the clamped score.
	return &MatchResult{
		Score:       score,
		Tier:        TierFor(score),
		Reason:      reason,
		NeededRoles: titleRoles(fieldStringList(data, "needed_roles")),
	}, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// roleTitle keeps acronyms intact: "frontend" becomes "Frontend" while "ML"
// stays "ML".
var roleTitle = cases.Title(language.English, cases.NoLower)

func titleRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		out = append(out, roleTitle.String(role))
	}
	return out
}
