package services

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService is team chat. Clients poll ListMessages with ?since=; full
// teams keep chatting after membership locks.
type MessageService struct {
	DB *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

func (s *MessageService) SendMessage(c *fiber.Ctx) error {
	type Req struct {
		SenderID string `json:"sender_id" validate:"required"`
		Content  string `json:"content" validate:"required"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "sender_id and content are required"})
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content must not be empty"})
	}
	if len(content) > models.MaxMessageLength {
		return c.Status(400).JSON(fiber.Map{"error": "content exceeds the 2000 character limit"})
	}

	var team models.Team
	if err := s.DB.First(&team, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "team not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !team.HasMember(req.SenderID) {
		return c.Status(400).JSON(fiber.Map{"error": "sender is not a member of this team"})
	}

	message := models.Message{
		ID:       uuid.NewString(),
		TeamID:   team.ID,
		SenderID: req.SenderID,
		Content:  content,
	}
	if err := s.DB.Create(&message).Error; err != nil {
		log.Printf("DB Error creating message in team %s: %v", team.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to send message"})
	}

	return c.Status(201).JSON(message)
}

// ListMessages returns a team's chat ascending by time. ?since=RFC3339
// narrows to messages after that instant, which is all a polling client
// needs.
func (s *MessageService) ListMessages(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}

	var team models.Team
	if err := s.DB.First(&team, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "team not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	db := s.DB.Where("team_id = ?", team.ID).Order("created_at ASC").Limit(limit)
	if since := c.Query("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid since (use RFC3339)"})
		}
		db = db.Where("created_at > ?", ts)
	}

	var messages []models.Message
	if err := db.Find(&messages).Error; err != nil {
		log.Printf("ERROR fetching messages for team %s: %v", team.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch messages"})
	}
	return c.JSON(messages)
}
