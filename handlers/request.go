// handlers/request.go
package handlers

import (
	"github.com/Arwa-786/MLH-HackForhackers-sub000/services"
	"github.com/gofiber/fiber/v2"
)

func SetupRequestRoutes(app *fiber.App, requestService *services.RequestService) {
	app.Post("/requests", requestService.SendRequest)
	app.Post("/requests/:id/accept", requestService.AcceptRequest)
	app.Post("/requests/:id/cancel", requestService.CancelRequest)

	app.Get("/users/:id/requests", requestService.ListRequests)
	app.Get("/users/:id/requests/count", requestService.PendingCount)
}
