package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/metrics"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// baseRoles is the canonical set a hackathon team wants covered. NeededRoles
// is always this set minus what the current members bring.
var baseRoles = []string{"Frontend", "Backend", "Design", "Data"}

var ErrAlreadyTeamed = errors.New("user already belongs to another team for this hackathon")

type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

// JoinTeam places the user on the hackathon's open team, creating one when
// none exists. Joining again returns the current team unchanged.
func (s *TeamService) JoinTeam(c *fiber.Ctx) error {
	type Req struct {
		HackathonID string `json:"hackathon_id" validate:"required"`
		UserID      string `json:"user_id" validate:"required"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "hackathon_id and user_id are required"})
	}

	var user models.UserProfile
	if err := s.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var hackathon models.Hackathon
	if err := s.DB.First(&hackathon, "id = ?", req.HackathonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "hackathon not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var team *models.Team
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		team, txErr = s.joinTeamTx(tx, hackathon.ID, &user)
		return txErr
	})
	if err != nil {
		if errors.Is(err, models.ErrTeamFull) {
			metrics.RecordAssemblyRejection("team_full")
			return c.Status(400).JSON(fiber.Map{"error": "team is already full"})
		}
		log.Printf("Transaction failed joining user %s to hackathon %s: %v", user.ID, hackathon.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to join team"})
	}

	return c.JSON(team)
}

// joinTeamTx is the team-join critical section and must run inside a
// transaction. The open-team row is locked FOR UPDATE so two concurrent
// joins serialize instead of both observing three members.
func (s *TeamService) joinTeamTx(tx *gorm.DB, hackathonID string, user *models.UserProfile) (*models.Team, error) {
	if existing, err := findUserTeamTx(tx, hackathonID, user.ID); err != nil {
		return nil, err
	} else if existing != nil {
		// The containment lookup takes no row lock. Re-read FOR UPDATE so a
		// caller that goes on to append members (accept flow) holds the row
		// for the rest of the transaction; otherwise two concurrent accepts
		// against the same team would blind-save over each other's roster.
		return lockTeamTx(tx, existing.ID)
	}

	var team models.Team
	err := openTeamQuery(tx, hackathonID).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		team = models.Team{
			ID:          uuid.NewString(),
			HackathonID: hackathonID,
			Name:        fmt.Sprintf("%s's Team", user.Name),
			Members:     []string{user.ID},
			NeededRoles: neededRolesFor([]models.UserProfile{*user}),
		}
		if err := tx.Create(&team).Error; err != nil {
			return nil, fmt.Errorf("failed to create team: %w", err)
		}
		return &team, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock open team: %w", err)
	}

	return s.addMemberTx(tx, &team, user)
}

// openTeamQuery is the locked lookup for the hackathon's oldest open team.
// Must run inside a transaction.
func openTeamQuery(tx *gorm.DB, hackathonID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hackathon_id = ? AND is_full = ?", hackathonID, false).
		Order("created_at ASC")
}

func lockTeamQuery(tx *gorm.DB, teamID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", teamID)
}

// lockTeamTx re-reads a team row FOR UPDATE. Every membership mutation must
// run against a row fetched here or through openTeamQuery; the team-size
// invariant only holds when concurrent joins serialize on the row.
func lockTeamTx(tx *gorm.DB, teamID string) (*models.Team, error) {
	var team models.Team
	if err := lockTeamQuery(tx, teamID).First(&team).Error; err != nil {
		return nil, fmt.Errorf("failed to lock team %s: %w", teamID, err)
	}
	return &team, nil
}

// addMemberTx appends user to an already-locked team, recomputes the needed
// roles, and fires the full-team cascade when the roster hits capacity.
func (s *TeamService) addMemberTx(tx *gorm.DB, team *models.Team, user *models.UserProfile) (*models.Team, error) {
	if team.HasMember(user.ID) {
		return team, nil
	}
	if err := team.AddMember(user.ID); err != nil {
		return nil, err
	}

	var profiles []models.UserProfile
	if err := tx.Where("id IN ?", team.Members).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to load member profiles: %w", err)
	}
	team.NeededRoles = neededRolesFor(profiles)

	if err := tx.Save(team).Error; err != nil {
		return nil, fmt.Errorf("failed to save team: %w", err)
	}

	if team.IsFull {
		cancelled, err := cascadeCancelPendingTx(tx, team.Members)
		if err != nil {
			return nil, err
		}
		if cancelled > 0 {
			log.Printf("🔒 Team %s is full, cancelled %d pending requests", team.ID, cancelled)
			metrics.RecordRequestsCancelled("team_full", int(cancelled))
		}
	}

	return team, nil
}

// cascadeCancelPendingTx cancels every pending request in which any of the
// given users appears as sender or recipient. Runs in the same transaction
// as the membership update that filled the team.
func cascadeCancelPendingTx(tx *gorm.DB, memberIDs []string) (int64, error) {
	result := tx.Model(&models.TeamRequest{}).
		Where("status = ? AND (from_user_id IN ? OR to_user_id IN ?)",
			models.RequestStatusPending, memberIDs, memberIDs).
		Update("status", models.RequestStatusCancelled)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cancel pending requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// findUserTeamTx locates the team containing userID for the hackathon via a
// jsonb containment query. Returns nil when the user is unaffiliated.
func findUserTeamTx(tx *gorm.DB, hackathonID, userID string) (*models.Team, error) {
	var team models.Team
	err := tx.Where("hackathon_id = ? AND members @> ?", hackathonID, fmt.Sprintf("[%q]", userID)).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user team: %w", err)
	}
	return &team, nil
}

// neededRolesFor subtracts the roles the members cover from the base role
// set, preserving the base order.
func neededRolesFor(members []models.UserProfile) []string {
	covered := make(map[string]bool, len(baseRoles))
	for _, member := range members {
		for _, role := range rolesCovered(member.Role) {
			covered[role] = true
		}
	}

	needed := []string{}
	for _, role := range baseRoles {
		if !covered[role] {
			needed = append(needed, role)
		}
	}
	return needed
}

// rolesCovered buckets a free-text role preference into the base roles it
// satisfies. A full-stack member covers both engineering buckets.
func rolesCovered(role string) []string {
	r := strings.ToLower(role)
	if r == "" {
		return nil
	}

	if strings.Contains(r, "full") && strings.Contains(r, "stack") {
		return []string{"Frontend", "Backend"}
	}

	var covered []string
	if strings.Contains(r, "front") || strings.Contains(r, "web dev") || strings.Contains(r, "mobile") {
		covered = append(covered, "Frontend")
	}
	if strings.Contains(r, "back") || strings.Contains(r, "api") || strings.Contains(r, "server") || strings.Contains(r, "devops") || strings.Contains(r, "infra") {
		covered = append(covered, "Backend")
	}
	if strings.Contains(r, "design") || strings.Contains(r, "ui") || strings.Contains(r, "ux") || strings.Contains(r, "product") {
		covered = append(covered, "Design")
	}
	if strings.Contains(r, "data") || strings.Contains(r, "ml") || strings.Contains(r, "machine learning") || strings.Contains(r, "ai ") || strings.HasSuffix(r, "ai") || strings.Contains(r, "scientist") {
		covered = append(covered, "Data")
	}
	return covered
}

func (s *TeamService) GetTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := s.DB.First(&team, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "team not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(team)
}

func (s *TeamService) ListHackathonTeams(c *fiber.Ctx) error {
	var teams []models.Team
	if err := s.DB.Where("hackathon_id = ?", c.Params("id")).
		Order("created_at ASC").
		Find(&teams).Error; err != nil {
		log.Printf("ERROR fetching teams for hackathon %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch teams"})
	}
	return c.JSON(teams)
}

// GetUserTeam returns the caller's current team for a hackathon, 404 when
// unaffiliated.
func (s *TeamService) GetUserTeam(c *fiber.Ctx) error {
	hackathonID := c.Query("hackathon_id")
	if hackathonID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "hackathon_id query parameter is required"})
	}

	team, err := findUserTeamTx(s.DB, hackathonID, c.Params("id"))
	if err != nil {
		log.Printf("ERROR fetching team for user %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if team == nil {
		return c.Status(404).JSON(fiber.Map{"error": "user has no team for this hackathon"})
	}
	return c.JSON(team)
}
