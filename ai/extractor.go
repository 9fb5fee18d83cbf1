package ai

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"go.uber.org/zap"
)

// ProfileDraft is the structured output of profile extraction. Every field
// is always present; the zero value means the model could not infer it.
type ProfileDraft struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
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
	ResumeURL     string   `json:"resume_url,omitempty"`
}

//go:embed prompts/profile_extract.md
var extractTemplate string

// Extractor turns flattened GitHub repo metadata or resume text into a
// ProfileDraft. Unlike scoring there is no degraded fallback here:
// onboarding with silently wrong data is worse than an explicit retry, so
// every failure surfaces to the caller.
type Extractor struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator Generator, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// Extract runs the universal extraction prompt over blob. sourceHint names
// the blob origin ("github", "resume") inside the prompt.
func (e *Extractor) Extract(ctx context.Context, blob, sourceHint string) (*ProfileDraft, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil, errors.New("source text is empty")
	}

	prompt := buildExtractPrompt(blob, sourceHint)

	e.logger.Debug("profile extraction request",
		zap.String("source", sourceHint),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("profile extraction response",
		zap.String("source", sourceHint),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseDraft(raw)
}

func buildExtractPrompt(blob, sourceHint string) string {
	if strings.TrimSpace(sourceHint) == "" {
		sourceHint = "unspecified"
	}
	prompt := strings.ReplaceAll(extractTemplate, "{{SOURCE_KIND}}", sourceHint)
	return strings.ReplaceAll(prompt, "{{SOURCE_TEXT}}", blob)
}

func parseDraft(raw string) (*ProfileDraft, error) {
	data, err := DecodeObject(raw)
	if err != nil {
		return nil, err
	}

	return &ProfileDraft{
		Name:          fieldString(data, "name"),
		Email:         fieldString(data, "email"),
		Role:          fieldString(data, "role"),
		Skills:        fieldStringList(data, "skills"),
		TechStack:     fieldStringList(data, "tech_stack"),
		Experience:    fieldStringList(data, "experience"),
		School:        fieldString(data, "school"),
		Location:      fieldString(data, "location"),
		Description:   fieldString(data, "description"),
		GitHub:        fieldString(data, "github"),
		Devpost:       fieldString(data, "devpost"),
		NumHackathons: fieldInt(data, "num_hackathons"),
	}, nil
}
