package api

import (
	"time"

	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/database"
	"github.com/rpupo63/video-catalog-backend/services/identity"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, rules catalog.Rules, gate adminGate, exchanger identity.CodeExchanger, siteRoot string, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		videoHandler:  newVideoHandler(database.VideoRepo(), rules),
		authHandler:   newAuthHandler(gate, exchanger, siteRoot),
		healthHandler: newHealthHandler(startupTime),
	}
}
