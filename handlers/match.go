// handlers/match.go
package handlers

import (
	"github.com/Arwa-786/MLH-HackForhackers-sub000/services"
	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, profileService *services.ProfileService) {
	app.Post("/matches/score", matchService.ScoreMatch)
	app.Get("/users/:id/matches", matchService.ListMatches)

	app.Post("/profile/extract", profileService.ExtractProfile)
}
