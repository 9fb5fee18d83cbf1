package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/ai"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/metrics"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProfileService turns a GitHub account or an uploaded resume into a
// UserProfile draft. Extraction failures surface verbatim: a wrong draft on
// onboarding is worse than asking the user to retry.
type ProfileService struct {
	Extractor *ai.Extractor
	GitHub    *GitHubClient
}

func NewProfileService(extractor *ai.Extractor, github *GitHubClient) *ProfileService {
	return &ProfileService{Extractor: extractor, GitHub: github}
}

// ExtractProfile accepts exactly one source: githubUrl, resumeText, or
// resumeBase64 (a PDF). The response is a draft with every field present,
// possibly empty.
func (s *ProfileService) ExtractProfile(c *fiber.Ctx) error {
	type Req struct {
		GitHubURL    string `json:"githubUrl"`
		ResumeText   string `json:"resumeText"`
		ResumeBase64 string `json:"resumeBase64"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	sources := 0
	for _, v := range []string{req.GitHubURL, req.ResumeText, req.ResumeBase64} {
		if strings.TrimSpace(v) != "" {
			sources++
		}
	}
	if sources != 1 {
		return c.Status(400).JSON(fiber.Map{"error": "provide exactly one of githubUrl, resumeText, or resumeBase64"})
	}

	switch {
	case req.GitHubURL != "":
		return s.extractFromGitHub(c, req.GitHubURL)
	case req.ResumeText != "":
		return s.extractFromBlob(c, req.ResumeText, "resume", "")
	default:
		return s.extractFromPDF(c, req.ResumeBase64)
	}
}

func (s *ProfileService) extractFromGitHub(c *fiber.Ctx, githubURL string) error {
	handle, err := HandleFromURL(githubURL)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	blob, err := s.GitHub.FetchRepoBlob(c.Context(), handle)
	if err != nil {
		metrics.RecordExtraction("github", false)
		log.Printf("⚠️ GitHub fetch failed for %s: %v", handle, err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return s.extractFromBlob(c, blob, "github", "")
}

func (s *ProfileService) extractFromPDF(c *fiber.Ctx, encoded string) error {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "resumeBase64 is not valid base64"})
	}

	text, err := utils.ExtractPDFText(data)
	if err != nil {
		metrics.RecordExtraction("resume_pdf", false)
		return c.Status(400).JSON(fiber.Map{"error": "could not read text from the uploaded PDF"})
	}

	// Keep the original document. R2 when configured, local disk otherwise;
	// a storage failure only costs the stored copy, not the extraction.
	key := fmt.Sprintf("resumes/%s.pdf", uuid.NewString())
	resumeURL := ""
	if utils.R2Enabled() {
		resumeURL, err = utils.UploadBytesToR2(data, key, "application/pdf")
		if err != nil {
			log.Printf("⚠️ Failed to store resume in R2: %v", err)
			resumeURL = ""
		}
	} else if err := utils.SaveBytes(data, utils.GetUploadPath(key)); err != nil {
		log.Printf("⚠️ Failed to store resume locally: %v", err)
	} else {
		resumeURL = "/uploads/" + key
	}

	return s.extractFromBlob(c, text, "resume", resumeURL)
}

func (s *ProfileService) extractFromBlob(c *fiber.Ctx, blob, source, resumeURL string) error {
	draft, err := s.Extractor.Extract(c.Context(), blob, source)
	if err != nil {
		metrics.RecordExtraction(source, false)
		log.Printf("❌ Profile extraction (%s) failed: %v", source, err)
		return c.Status(500).JSON(fiber.Map{"error": fmt.Sprintf("profile extraction failed: %v", err)})
	}

	draft.ResumeURL = resumeURL
	metrics.RecordExtraction(source, true)
	return c.JSON(draft)
}
