// handlers/user.go
package handlers

import (
	"github.com/Arwa-786/MLH-HackForhackers-sub000/services"
	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	app.Post("/users", userService.CreateUser)
	app.Get("/users", userService.SearchUsers)
	app.Get("/users/:id", userService.GetUser)
	app.Put("/users/:id", userService.UpdateUser)
	app.Patch("/users/:id", userService.UpdateUser)
	app.Delete("/users/:id", userService.DeleteUser)

	app.Post("/users/:id/hackathons", userService.RegisterForHackathon)
}
