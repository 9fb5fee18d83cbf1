// handlers/hackathon.go
package handlers

import (
	"github.com/Arwa-786/MLH-HackForhackers-sub000/services"
	"github.com/gofiber/fiber/v2"
)

func SetupHackathonRoutes(app *fiber.App, hackathonService *services.HackathonService, teamService *services.TeamService) {
	app.Post("/hackathons", hackathonService.CreateHackathon)
	app.Get("/hackathons", hackathonService.ListHackathons)
	app.Get("/hackathons/:id", hackathonService.GetHackathon)
	app.Put("/hackathons/:id", hackathonService.UpdateHackathon)
	app.Patch("/hackathons/:id", hackathonService.UpdateHackathon)

	app.Get("/hackathons/:id/teams", teamService.ListHackathonTeams)
}
