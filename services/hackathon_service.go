package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type HackathonService struct {
	DB *gorm.DB
}

func NewHackathonService(db *gorm.DB) *HackathonService {
	return &HackathonService{DB: db}
}

func (s *HackathonService) CreateHackathon(c *fiber.Ctx) error {
	type Req struct {
		Name        string `json:"name" validate:"required"`
		Type        string `json:"type"`
		Location    string `json:"location"`
		URL         string `json:"url"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		StartDate   string `json:"start_date" validate:"required"`
		EndDate     string `json:"end_date" validate:"required"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "name, start_date and end_date are required"})
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
	}
	if endDate.Before(startDate) {
		return c.Status(400).JSON(fiber.Map{"error": "end_date must not be before start_date"})
	}

	hackathonSlug, err := s.uniqueSlug(req.Name)
	if err != nil {
		log.Printf("DB Error resolving slug for %q: %v", req.Name, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create hackathon"})
	}

	hackathon := models.Hackathon{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        hackathonSlug,
		Type:        req.Type,
		Location:    req.Location,
		URL:         req.URL,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    endDate.After(time.Now()),
	}

	if err := s.DB.Create(&hackathon).Error; err != nil {
		log.Printf("DB Error creating hackathon: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create hackathon"})
	}

	return c.Status(201).JSON(hackathon)
}

// slugBase slugifies name, falling back to a constant when nothing of the
// name survives slugification.
func slugBase(name string) string {
	base := slug.Make(name)
	if base == "" {
		return "hackathon"
	}
	return base
}

// uniqueSlug suffixes -2, -3... onto the slugified name until it finds a
// free slug. A failed lookup aborts rather than guessing: returning an
// unverified candidate would surface later as an opaque unique-index error.
func (s *HackathonService) uniqueSlug(name string) (string, error) {
	base := slugBase(name)

	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.Model(&models.Hackathon{}).
			Where("slug = ?", candidate).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// ListHackathons returns hackathons ordered by start date; ?active=true
// narrows to currently active ones.
func (s *HackathonService) ListHackathons(c *fiber.Ctx) error {
	db := s.DB.Model(&models.Hackathon{}).Order("start_date ASC")
	if c.Query("active") == "true" {
		db = db.Where("is_active = ?", true)
	}

	var hackathons []models.Hackathon
	if err := db.Find(&hackathons).Error; err != nil {
		log.Printf("ERROR fetching hackathons: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch hackathons"})
	}
	return c.JSON(hackathons)
}

// GetHackathon resolves by id first, then by slug, so both
// /hackathons/<uuid> and /hackathons/hacktech-2026 work.
func (s *HackathonService) GetHackathon(c *fiber.Ctx) error {
	key := c.Params("id")

	var hackathon models.Hackathon
	err := s.DB.First(&hackathon, "id = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.First(&hackathon, "slug = ?", key).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "hackathon not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(hackathon)
}

func (s *HackathonService) UpdateHackathon(c *fiber.Ctx) error {
	type Req struct {
		Name        *string `json:"name"`
		Type        *string `json:"type"`
		Location    *string `json:"location"`
		URL         *string `json:"url"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
		IsActive    *bool   `json:"is_active"`
	}

	var hackathon models.Hackathon
	if err := s.DB.First(&hackathon, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "hackathon not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if req.Name != nil && *req.Name != hackathon.Name {
		newSlug, err := s.uniqueSlug(*req.Name)
		if err != nil {
			log.Printf("DB Error resolving slug for %q: %v", *req.Name, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to update hackathon"})
		}
		hackathon.Name = *req.Name
		hackathon.Slug = newSlug
	}
	if req.Type != nil {
		hackathon.Type = *req.Type
	}
	if req.Location != nil {
		hackathon.Location = *req.Location
	}
	if req.URL != nil {
		hackathon.URL = *req.URL
	}
	if req.Description != nil {
		hackathon.Description = *req.Description
	}
	if req.ImageURL != nil {
		hackathon.ImageURL = *req.ImageURL
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(time.RFC3339, *req.StartDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
		}
		hackathon.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse(time.RFC3339, *req.EndDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
		}
		hackathon.EndDate = endDate
	}
	if req.IsActive != nil {
		hackathon.IsActive = *req.IsActive
	}

	if err := s.DB.Save(&hackathon).Error; err != nil {
		log.Printf("DB Error updating hackathon %s: %v", hackathon.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update hackathon"})
	}

	return c.JSON(hackathon)
}

// DeactivateEnded flips is_active off for hackathons whose end date has
// passed. The lifecycle scheduler calls this every 10 minutes.
func (s *HackathonService) DeactivateEnded() (int64, error) {
	result := s.DB.Model(&models.Hackathon{}).
		Where("is_active = ? AND end_date < ?", true, time.Now()).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
