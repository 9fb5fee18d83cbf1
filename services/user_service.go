package services

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// CreateUserRequest is also the shape the profile-extraction flow submits
// after the user confirms the draft.
type CreateUserRequest struct {
	Name          string   `json:"name" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	Role          string   `json:"role"`
	Skills        []string `json:"skills"`
	TechStack     []string `json:"tech_stack"`
	Experience    []string `json:"experience"`
	School        string   `json:"school"`
	Location      string   `json:"location"`
	Description   string   `json:"description"`
	GitHub        string   `json:"github"`
	Devpost       string   `json:"devpost"`
	NumHackathons int      `json:"num_hackathons"`
	ResumeURL     string   `json:"resume_url"`
}

func (s *UserService) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "name and a valid email are required"})
	}

	var existing models.UserProfile
	if err := s.DB.Where("email = ?", strings.ToLower(req.Email)).First(&existing).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{"error": "a profile with this email already exists"})
	}

	user := models.UserProfile{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Role:          strings.TrimSpace(req.Role),
		Skills:        emptyIfNil(req.Skills),
		TechStack:     emptyIfNil(req.TechStack),
		Experience:    emptyIfNil(req.Experience),
		School:        req.School,
		Location:      req.Location,
		Description:   req.Description,
		GitHub:        req.GitHub,
		Devpost:       req.Devpost,
		Hackathons:    []string{},
		NumHackathons: req.NumHackathons,
		ResumeURL:     req.ResumeURL,
	}

	if err := s.DB.Create(&user).Error; err != nil {
		log.Printf("DB Error creating user: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create user"})
	}

	return c.Status(201).JSON(user)
}

func (s *UserService) GetUser(c *fiber.Ctx) error {
	var user models.UserProfile
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}

// UpdateUser applies a partial update. Absent fields stay untouched; list
// fields are replaced whole when present.
func (s *UserService) UpdateUser(c *fiber.Ctx) error {
	type Req struct {
		Name          *string   `json:"name"`
		Role          *string   `json:"role"`
		Skills        *[]string `json:"skills"`
		TechStack     *[]string `json:"tech_stack"`
		Experience    *[]string `json:"experience"`
		School        *string   `json:"school"`
		Location      *string   `json:"location"`
		Description   *string   `json:"description"`
		GitHub        *string   `json:"github"`
		Devpost       *string   `json:"devpost"`
		NumHackathons *int      `json:"num_hackathons"`
		ResumeURL     *string   `json:"resume_url"`
	}

	var user models.UserProfile
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return c.Status(400).JSON(fiber.Map{"error": "name must not be empty"})
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		user.Role = strings.TrimSpace(*req.Role)
	}
	if req.Skills != nil {
		user.Skills = *req.Skills
	}
	if req.TechStack != nil {
		user.TechStack = *req.TechStack
	}
	if req.Experience != nil {
		user.Experience = *req.Experience
	}
	if req.School != nil {
		user.School = *req.School
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Description != nil {
		user.Description = *req.Description
	}
	if req.GitHub != nil {
		user.GitHub = *req.GitHub
	}
	if req.Devpost != nil {
		user.Devpost = *req.Devpost
	}
	if req.NumHackathons != nil {
		user.NumHackathons = *req.NumHackathons
	}
	if req.ResumeURL != nil {
		user.ResumeURL = *req.ResumeURL
	}

	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("DB Error updating user %s: %v", user.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update user"})
	}

	return c.JSON(user)
}

// SearchUsers lists profiles, optionally filtered by a free-text query
// matched against name, email, and school. The query is folded to ascii so
// accented input still matches ascii-stored names.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.UserProfile{}).Limit(limit).Order("name ASC")

	if query != "" {
		searchTerm := "%" + strings.ToLower(unidecode.Unidecode(strings.TrimSpace(query))) + "%"
		db = db.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(school) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var users []models.UserProfile
	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	return c.JSON(users)
}

// RegisterForHackathon adds a hackathon id to the user's registration list.
// Registering twice is a no-op.
func (s *UserService) RegisterForHackathon(c *fiber.Ctx) error {
	type Req struct {
		HackathonID string `json:"hackathon_id" validate:"required"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "hackathon_id is required"})
	}

	var user models.UserProfile
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
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

	if !user.RegisteredFor(hackathon.ID) {
		user.Hackathons = append(user.Hackathons, hackathon.ID)
		if err := s.DB.Save(&user).Error; err != nil {
			log.Printf("DB Error registering user %s for hackathon %s: %v", user.ID, hackathon.ID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to register for hackathon"})
		}
	}

	return c.JSON(user)
}

func (s *UserService) DeleteUser(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.UserProfile{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
