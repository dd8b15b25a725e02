package apihandlers

import (
	"net/http"
	"time"

	campaignDB "github.com/soshogle/nexrel-crm-sub019/pkg/db/campaigns"
	"github.com/gin-gonic/gin"

	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/scheduler"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	apiKeys              []string
	allowedInstanceIDs   []string
	campaignDBService    *campaignDB.CampaignDBService
	scheduler            *scheduler.Scheduler
	unsubscribeJWTSecret string
	unsubscribeTokenTTL  time.Duration
	cycleTimeout         time.Duration
}

func NewHTTPHandler(
	apiKeys []string,
	allowedInstanceIDs []string,
	campaignDBService *campaignDB.CampaignDBService,
	sched *scheduler.Scheduler,
	unsubscribeJWTSecret string,
	unsubscribeTokenTTL time.Duration,
	cycleTimeout time.Duration,
) *HttpEndpoints {
	return &HttpEndpoints{
		apiKeys:              apiKeys,
		allowedInstanceIDs:   allowedInstanceIDs,
		campaignDBService:    campaignDBService,
		scheduler:            sched,
		unsubscribeJWTSecret: unsubscribeJWTSecret,
		unsubscribeTokenTTL:  unsubscribeTokenTTL,
		cycleTimeout:         cycleTimeout,
	}
}
