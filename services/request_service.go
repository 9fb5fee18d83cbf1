package services

import (
	"errors"
	"log"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/metrics"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRequestLimit     = errors.New("sender already has the maximum number of pending requests")
	ErrDuplicateRequest = errors.New("a pending request to this user already exists")
)

// RequestService owns every TeamRequest write. Accepting a request reuses
// the TeamService join transaction so both paths share one critical section.
type RequestService struct {
	DB    *gorm.DB
	Teams *TeamService
}

func NewRequestService(db *gorm.DB, teams *TeamService) *RequestService {
	return &RequestService{DB: db, Teams: teams}
}

// senderLockQuery takes a transaction-scoped advisory lock keyed by the
// sender id. Locking the existing pending rows is not enough here: with zero
// pending rows nothing is locked, and a concurrent insert is invisible to
// this transaction's snapshot either way. The advisory lock serializes the
// whole check-and-insert per sender.
func senderLockQuery(tx *gorm.DB, senderID string) *gorm.DB {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", senderID)
}

// pendingSendCheck enforces the duplicate and request-cap invariants over
// the sender's currently pending requests.
func pendingSendCheck(pending []models.TeamRequest, toUserID string) error {
	for _, p := range pending {
		if p.ToUserID == toUserID {
			return ErrDuplicateRequest
		}
	}
	if len(pending) >= models.MaxPendingRequests {
		return ErrRequestLimit
	}
	return nil
}

// SendRequest creates a pending invite. The duplicate and limit checks run
// inside a transaction serialized per sender by an advisory lock, so two
// concurrent sends cannot both slip under the cap or both create the same
// pending pair; a partial unique index on (from, to) WHERE pending backstops
// the duplicate rule at the schema level.
func (s *RequestService) SendRequest(c *fiber.Ctx) error {
	type Req struct {
		FromUserID  string `json:"from_user_id" validate:"required"`
		ToUserID    string `json:"to_user_id" validate:"required"`
		HackathonID string `json:"hackathon_id" validate:"required"`
		Message     string `json:"message"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "from_user_id, to_user_id and hackathon_id are required"})
	}
	if req.FromUserID == req.ToUserID {
		return c.Status(400).JSON(fiber.Map{"error": "cannot send a team request to yourself"})
	}

	for _, id := range []string{req.FromUserID, req.ToUserID} {
		var user models.UserProfile
		if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
	}

	// An invite involving a member of a full team is moot from the start.
	for _, id := range []string{req.FromUserID, req.ToUserID} {
		team, err := findUserTeamTx(s.DB, req.HackathonID, id)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
		if team != nil && team.IsFull {
			metrics.RecordAssemblyRejection("team_full")
			return c.Status(400).JSON(fiber.Map{"error": "user is already on a full team for this hackathon"})
		}
	}

	var created models.TeamRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := senderLockQuery(tx, req.FromUserID).Error; err != nil {
			return err
		}

		var pending []models.TeamRequest
		if err := tx.Where("from_user_id = ? AND status = ?", req.FromUserID, models.RequestStatusPending).
			Find(&pending).Error; err != nil {
			return err
		}
		if err := pendingSendCheck(pending, req.ToUserID); err != nil {
			return err
		}

		created = models.TeamRequest{
			ID:          uuid.NewString(),
			FromUserID:  req.FromUserID,
			ToUserID:    req.ToUserID,
			HackathonID: req.HackathonID,
			Message:     req.Message,
			Status:      models.RequestStatusPending,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRequest), errors.Is(err, gorm.ErrDuplicatedKey):
			metrics.RecordAssemblyRejection("duplicate_request")
			return c.Status(400).JSON(fiber.Map{"error": "a pending request to this user already exists"})
		case errors.Is(err, ErrRequestLimit):
			metrics.RecordAssemblyRejection("request_limit")
			return c.Status(400).JSON(fiber.Map{"error": "request limit reached: at most 5 pending requests at a time"})
		default:
			log.Printf("Transaction failed creating request from %s to %s: %v", req.FromUserID, req.ToUserID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to create request"})
		}
	}

	return c.Status(201).JSON(created)
}

// AcceptRequest joins the sender onto the recipient's team. Retrying an
// already-handled request is a no-op success, never a second join.
func (s *RequestService) AcceptRequest(c *fiber.Ctx) error {
	type Req struct {
		CurrentUserID string `json:"current_user_id" validate:"required"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "current_user_id is required"})
	}

	var request models.TeamRequest
	if err := s.DB.First(&request, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "request not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	if request.ToUserID != req.CurrentUserID {
		return c.Status(400).JSON(fiber.Map{"error": "only the recipient can accept a request"})
	}
	if !request.Pending() {
		return c.JSON(fiber.Map{"message": "request already handled", "status": request.Status})
	}

	var sender, recipient models.UserProfile
	if err := s.DB.First(&sender, "id = ?", request.FromUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "sender not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if err := s.DB.First(&recipient, "id = ?", request.ToUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "recipient not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var team *models.Team
	alreadyHandled := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read the request under lock: a concurrent accept or the
		// full-team cascade may have closed it since the check above.
		var locked models.TeamRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", request.ID).Error; err != nil {
			return err
		}
		if !locked.Pending() {
			alreadyHandled = true
			return nil
		}

		var txErr error
		team, txErr = s.Teams.joinTeamTx(tx, request.HackathonID, &recipient)
		if txErr != nil {
			return txErr
		}

		if senderTeam, err := findUserTeamTx(tx, request.HackathonID, sender.ID); err != nil {
			return err
		} else if senderTeam != nil && senderTeam.ID != team.ID {
			return ErrAlreadyTeamed
		}

		team, txErr = s.Teams.addMemberTx(tx, team, &sender)
		if txErr != nil {
			return txErr
		}

		return tx.Model(&models.TeamRequest{}).
			Where("id = ?", locked.ID).
			Update("status", models.RequestStatusAccepted).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTeamFull):
			metrics.RecordAssemblyRejection("team_full")
			return c.Status(400).JSON(fiber.Map{"error": "team is already full"})
		case errors.Is(err, ErrAlreadyTeamed):
			return c.Status(400).JSON(fiber.Map{"error": "sender already belongs to another team for this hackathon"})
		default:
			log.Printf("Transaction failed accepting request %s: %v", request.ID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to accept request"})
		}
	}
	if alreadyHandled {
		return c.JSON(fiber.Map{"message": "request already handled", "status": request.Status})
	}

	return c.JSON(team)
}

// CancelRequest lets the sender withdraw a pending invite. Cancelling an
// already-closed request is a no-op success.
func (s *RequestService) CancelRequest(c *fiber.Ctx) error {
	type Req struct {
		CurrentUserID string `json:"current_user_id" validate:"required"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "current_user_id is required"})
	}

	var request models.TeamRequest
	if err := s.DB.First(&request, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "request not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	if request.FromUserID != req.CurrentUserID {
		return c.Status(400).JSON(fiber.Map{"error": "only the sender can cancel a request"})
	}
	if !request.Pending() {
		return c.JSON(fiber.Map{"message": "request already handled", "status": request.Status})
	}

	result := s.DB.Model(&models.TeamRequest{}).
		Where("id = ? AND status = ?", request.ID, models.RequestStatusPending).
		Update("status", models.RequestStatusCancelled)
	if result.Error != nil {
		log.Printf("DB Error cancelling request %s: %v", request.ID, result.Error)
		return c.Status(500).JSON(fiber.Map{"error": "failed to cancel request"})
	}
	metrics.RecordRequestsCancelled("manual", int(result.RowsAffected))

	request.Status = models.RequestStatusCancelled
	return c.JSON(request)
}

// PendingCount reports how many pending invites a user has sent, for the
// client's "n of 5" indicator.
func (s *RequestService) PendingCount(c *fiber.Ctx) error {
	userID := c.Params("id")

	var count int64
	if err := s.DB.Model(&models.TeamRequest{}).
		Where("from_user_id = ? AND status = ?", userID, models.RequestStatusPending).
		Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{
		"userId":       userID,
		"requestCount": count,
		"maxRequests":  models.MaxPendingRequests,
	})
}

// ListRequests returns a user's pending requests; ?direction=outgoing
// switches from received to sent.
func (s *RequestService) ListRequests(c *fiber.Ctx) error {
	userID := c.Params("id")

	column := "to_user_id"
	if c.Query("direction") == "outgoing" {
		column = "from_user_id"
	}

	var requests []models.TeamRequest
	if err := s.DB.Where(column+" = ? AND status = ?", userID, models.RequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		log.Printf("ERROR fetching requests for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch requests"})
	}
	return c.JSON(requests)
}
