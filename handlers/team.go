// handlers/team.go
package handlers

import (
	"github.com/Arwa-786/MLH-HackForhackers-sub000/services"
	"github.com/gofiber/fiber/v2"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService, messageService *services.MessageService) {
	app.Post("/teams/join", teamService.JoinTeam)
	app.Get("/teams/:id", teamService.GetTeam)
	app.Get("/users/:id/team", teamService.GetUserTeam)

	// Team chat stays open after the roster locks.
	app.Post("/teams/:id/messages", messageService.SendMessage)
	app.Get("/teams/:id/messages", messageService.ListMessages)
}
