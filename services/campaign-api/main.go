package main

import (
	"log/slog"
	"time"

	"github.com/soshogle/nexrel-crm-sub019/pkg/apihelpers"
	"github.com/soshogle/nexrel-crm-sub019/services/campaign-api/apihandlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const DEFAULT_CYCLE_TIMEOUT = 5 * time.Minute

var conf config

func main() {
	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "Api-Key"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	cycleTimeout := conf.SchedulerConfigs.CycleTimeout
	if cycleTimeout <= 0 {
		cycleTimeout = DEFAULT_CYCLE_TIMEOUT
	}

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)

	apiModule := apihandlers.NewHTTPHandler(
		conf.ApiKeys,
		conf.InstanceIDs,
		campaignDBService,
		schedulerService,
		conf.TrackingConfigs.UnsubscribeSecret,
		conf.TrackingConfigs.UnsubscribeTokenTTL,
		cycleTimeout,
	)

	v1Root := router.Group("/v1")
	apiModule.AddCampaignManagementAPI(v1Root)

	// tracking endpoints live at the root, their URLs are embedded into emails
	root := router.Group("/")
	apiModule.AddTrackingAPI(root)

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "campaign-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Campaign API", slog.String("port", conf.GinConfig.Port))
	err := router.Run(":" + conf.GinConfig.Port)
	if err != nil {
		slog.Error("Exited Campaign API", slog.String("error", err.Error()))
		return
	}
}
