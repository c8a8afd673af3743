package api

import "github.com/humidorapp/humidor-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Tastings  *service.TastingService
	Inventory *service.InventoryService
	Stats     *service.StatsService
	Import    *service.ImportService
}
