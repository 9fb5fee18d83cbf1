package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/ai"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/metrics"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultMatchConcurrency = 4

// MatchService exposes the scoring engine over HTTP. This is the only place
// allowed to collapse a scoring failure into the degraded result; everywhere
// else errors stay errors.
type MatchService struct {
	DB          *gorm.DB
	Scorer      *ai.Scorer
	Concurrency int
}

func NewMatchService(db *gorm.DB, scorer *ai.Scorer, concurrency int) *MatchService {
	if concurrency <= 0 {
		concurrency = defaultMatchConcurrency
	}
	return &MatchService{DB: db, Scorer: scorer, Concurrency: concurrency}
}

// MatchResponse is the wire shape of a single verdict. Category carries the
// collapsed two-value form; the four-tier band stays internal.
type MatchResponse struct {
	Score       float64  `json:"score"`
	Category    string   `json:"category"`
	Reason      string   `json:"reason"`
	NeededRoles []string `json:"needed_roles"`
	Degraded    bool     `json:"degraded,omitempty"`
}

func toMatchResponse(result *ai.MatchResult) MatchResponse {
	return MatchResponse{
		Score:       result.Score,
		Category:    result.Category(),
		Reason:      result.Reason,
		NeededRoles: result.NeededRoles,
		Degraded:    result.Degraded,
	}
}

// ScoreMatch evaluates user2 as a teammate for user1, against user1's team
// roster when one is given or found. The response always carries a score:
// pipeline failures degrade, they do not 500.
func (s *MatchService) ScoreMatch(c *fiber.Ctx) error {
	type Req struct {
		User1ID       string   `json:"user1_id" validate:"required"`
		User2ID       string   `json:"user2_id" validate:"required"`
		TeamMemberIDs []string `json:"team_member_ids"`
		HackathonID   string   `json:"hackathon_id"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "user1_id and user2_id are required"})
	}
	if req.User1ID == req.User2ID {
		return c.Status(400).JSON(fiber.Map{"error": "cannot score a user against themselves"})
	}

	var evaluator, candidate models.UserProfile
	if err := s.DB.First(&evaluator, "id = ?", req.User1ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if err := s.DB.First(&candidate, "id = ?", req.User2ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	roster, err := s.resolveRoster(req.TeamMemberIDs, req.HackathonID, &evaluator, &candidate)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	result := s.scoreOne(c.Context(), &evaluator, &candidate, roster)
	return c.JSON(toMatchResponse(result))
}

// resolveRoster loads the scoring context: explicit member ids win; else the
// evaluator's current open team for the hackathon, if any. The evaluator and
// candidate never appear in their own roster.
func (s *MatchService) resolveRoster(memberIDs []string, hackathonID string, evaluator, candidate *models.UserProfile) ([]models.UserProfile, error) {
	ids := memberIDs
	if len(ids) == 0 && hackathonID != "" {
		team, err := findUserTeamTx(s.DB, hackathonID, evaluator.ID)
		if err != nil {
			return nil, err
		}
		if team != nil {
			ids = team.Members
		}
	}
	return s.rosterProfiles(ids, evaluator.ID, candidate.ID)
}

// rosterProfiles loads the named members' profiles, leaving out the excluded
// ids. Returns nil when nobody is left.
func (s *MatchService) rosterProfiles(ids []string, exclude ...string) ([]models.UserProfile, error) {
	filtered := withoutIDs(ids, exclude...)
	if len(filtered) == 0 {
		return nil, nil
	}

	var roster []models.UserProfile
	if err := s.DB.Where("id IN ?", filtered).Find(&roster).Error; err != nil {
		return nil, fmt.Errorf("failed to load roster profiles: %w", err)
	}
	return roster, nil
}

func withoutIDs(ids []string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if !skip[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

// scoreOne runs a single scoring call and applies the degraded fallback.
func (s *MatchService) scoreOne(ctx context.Context, evaluator, candidate *models.UserProfile, roster []models.UserProfile) *ai.MatchResult {
	start := time.Now()
	result, err := s.Scorer.Score(ctx, evaluator, candidate, roster)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		log.Printf("⚠️ Scoring %s vs %s degraded: %v", evaluator.ID, candidate.ID, err)
		metrics.RecordScoring("degraded", elapsed)
		return ai.Degraded(err)
	}
	metrics.RecordScoring("ok", elapsed)
	return result
}

// ScoredCandidate pairs a candidate profile with their verdict on the
// matching page.
type ScoredCandidate struct {
	User models.UserProfile `json:"user"`
	MatchResponse
}

// ListMatches scores every eligible candidate for a hackathon against the
// requesting user, concurrently with a bounded fan-out, and returns them
// best first. Individual failures degrade without failing the batch.
func (s *MatchService) ListMatches(c *fiber.Ctx) error {
	hackathonID := c.Query("hackathon_id")
	if hackathonID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "hackathon_id query parameter is required"})
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	var evaluator models.UserProfile
	if err := s.DB.First(&evaluator, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	candidates, err := s.candidatePool(hackathonID, &evaluator)
	if err != nil {
		log.Printf("ERROR building candidate pool for user %s: %v", evaluator.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load candidates"})
	}

	var roster []models.UserProfile
	if team, err := findUserTeamTx(s.DB, hackathonID, evaluator.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	} else if team != nil {
		roster, err = s.rosterProfiles(team.Members, evaluator.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
	}

	scored := make([]ScoredCandidate, len(candidates))
	g, ctx := errgroup.WithContext(c.Context())
	g.SetLimit(s.Concurrency)
	for i := range candidates {
		g.Go(func() error {
			result := s.scoreOne(ctx, &evaluator, &candidates[i], roster)
			scored[i] = ScoredCandidate{User: candidates[i], MatchResponse: toMatchResponse(result)}
			return nil
		})
	}
	// Workers never return errors; Wait is the batch barrier.
	_ = g.Wait()

	sortScoredCandidates(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return c.JSON(scored)
}

// candidatePool lists users registered for the hackathon, minus the
// requester and minus anyone already on a full team for it.
func (s *MatchService) candidatePool(hackathonID string, evaluator *models.UserProfile) ([]models.UserProfile, error) {
	var registered []models.UserProfile
	if err := s.DB.Where("hackathons @> ?", fmt.Sprintf("[%q]", hackathonID)).
		Order("name ASC").
		Find(&registered).Error; err != nil {
		return nil, err
	}

	var fullTeams []models.Team
	if err := s.DB.Where("hackathon_id = ? AND is_full = ?", hackathonID, true).
		Find(&fullTeams).Error; err != nil {
		return nil, err
	}
	locked := make(map[string]bool)
	for _, team := range fullTeams {
		for _, member := range team.Members {
			locked[member] = true
		}
	}

	pool := make([]models.UserProfile, 0, len(registered))
	for _, user := range registered {
		if user.ID == evaluator.ID || locked[user.ID] {
			continue
		}
		pool = append(pool, user)
	}
	return pool, nil
}

// sortScoredCandidates orders by score descending, then name ascending so
// equal scores render deterministically.
func sortScoredCandidates(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].User.Name < scored[j].User.Name
	})
}
