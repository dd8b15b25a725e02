package apihandlers

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	mw "github.com/soshogle/nexrel-crm-sub019/pkg/apihelpers/middlewares"
	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/sequence"
	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *HttpEndpoints) AddCampaignManagementAPI(rg *gin.RouterGroup) {
	instanceGroup := rg.Group("/:instanceID")
	instanceGroup.Use(mw.HasValidAPIKey(h.apiKeys))
	instanceGroup.Use(mw.IsInstanceIDAllowed(h.allowedInstanceIDs))

	campaignsGroup := instanceGroup.Group("/campaigns")
	campaignsGroup.POST("", mw.RequirePayload(), h.createCampaign)
	campaignsGroup.GET("", h.getCampaigns)
	campaignsGroup.GET("/:campaignID", h.getCampaign)
	campaignsGroup.POST("/:campaignID/sequences", mw.RequirePayload(), h.saveSequence)
	campaignsGroup.GET("/:campaignID/sequences", h.getSequences)
	campaignsGroup.DELETE("/:campaignID/sequences/:sequenceID", h.deleteSequence)
	campaignsGroup.POST("/:campaignID/activate", h.activateCampaign)
	campaignsGroup.POST("/:campaignID/pause", h.pauseCampaign)
	campaignsGroup.POST("/:campaignID/enrollments", mw.RequirePayload(), h.enrollLead)
	campaignsGroup.GET("/:campaignID/enrollments", h.getEnrollments)

	enrollmentsGroup := instanceGroup.Group("/enrollments")
	enrollmentsGroup.POST("/:enrollmentID/cancel", h.cancelEnrollment)

	leadsGroup := instanceGroup.Group("/leads")
	leadsGroup.POST("", mw.RequirePayload(), h.createLead)
	leadsGroup.GET("", h.getLeads)

	schedulerGroup := instanceGroup.Group("/scheduler")
	schedulerGroup.POST("/run-cycle", h.runSchedulerCycle)
}

func (h *HttpEndpoints) createCampaign(c *gin.Context) {
	instanceID := c.Param("instanceID")

	var campaign campaignTypes.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		slog.Error("Failed to bind campaign", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// campaigns always start out as draft, activation is a separate step
	campaign.ID = primitive.NilObjectID
	campaign.Status = campaignTypes.CAMPAIGN_STATUS_DRAFT
	campaign.TotalSent = 0
	campaign.TotalCompleted = 0

	saved, err := h.campaignDBService.AddCampaign(instanceID, campaign)
	if err != nil {
		slog.Error("Failed to save campaign", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save campaign"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": saved})
}

func (h *HttpEndpoints) getCampaigns(c *gin.Context) {
	instanceID := c.Param("instanceID")

	campaigns, err := h.campaignDBService.GetCampaigns(instanceID)
	if err != nil {
		slog.Error("Failed to fetch campaigns", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *HttpEndpoints) getCampaign(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		slog.Warn("Campaign not found", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID))
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	stats, err := h.campaignDBService.GetCampaignMessageStats(instanceID, campaign.ID)
	if err != nil {
		slog.Error("Failed to compute campaign message stats", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute campaign stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign":     campaign,
		"messageStats": stats,
	})
}

func (h *HttpEndpoints) saveSequence(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	var seq campaignTypes.Sequence
	if err := c.ShouldBindJSON(&seq); err != nil {
		slog.Error("Failed to bind sequence", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seq.CampaignID = campaign.ID

	saved, err := h.campaignDBService.SaveSequence(instanceID, seq)
	if err != nil {
		slog.Error("Failed to save sequence", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save sequence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sequence": saved})
}

func (h *HttpEndpoints) getSequences(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	sequences, err := h.campaignDBService.GetSequencesForCampaign(instanceID, campaign.ID)
	if err != nil {
		slog.Error("Failed to fetch sequences", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sequences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sequences": sequences})
}

func (h *HttpEndpoints) deleteSequence(c *gin.Context) {
	instanceID := c.Param("instanceID")
	sequenceID := c.Param("sequenceID")

	if err := h.campaignDBService.DeleteSequence(instanceID, sequenceID); err != nil {
		slog.Error("Failed to delete sequence", slog.String("instanceID", instanceID), slog.String("sequenceID", sequenceID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete sequence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sequence deleted"})
}

func (h *HttpEndpoints) activateCampaign(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	sequences, err := h.campaignDBService.GetSequencesForCampaign(instanceID, campaign.ID)
	if err != nil {
		slog.Error("Failed to fetch sequences for activation", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sequences"})
		return
	}

	if err := sequence.ValidateForActivation(campaign, sequences); err != nil {
		slog.Warn("Campaign activation rejected", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.campaignDBService.UpdateCampaignStatus(instanceID, campaignID, campaignTypes.CAMPAIGN_STATUS_ACTIVE); err != nil {
		slog.Error("Failed to activate campaign", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate campaign"})
		return
	}
	slog.Info("Campaign activated", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID))
	c.JSON(http.StatusOK, gin.H{"message": "campaign activated"})
}

func (h *HttpEndpoints) pauseCampaign(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if campaign.Status != campaignTypes.CAMPAIGN_STATUS_ACTIVE {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only active campaigns can be paused"})
		return
	}

	if err := h.campaignDBService.UpdateCampaignStatus(instanceID, campaignID, campaignTypes.CAMPAIGN_STATUS_PAUSED); err != nil {
		slog.Error("Failed to pause campaign", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to pause campaign"})
		return
	}
	slog.Info("Campaign paused", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID))
	c.JSON(http.StatusOK, gin.H{"message": "campaign paused"})
}

type enrollLeadReq struct {
	LeadID string `json:"leadID"`
}

func (h *HttpEndpoints) enrollLead(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	var req enrollLeadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	lead, err := h.campaignDBService.GetLeadByID(instanceID, req.LeadID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}

	sequences, err := h.campaignDBService.GetSequencesForCampaign(instanceID, campaign.ID)
	if err != nil {
		slog.Error("Failed to fetch sequences for enrollment", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sequences"})
		return
	}

	enrollment := campaignTypes.Enrollment{
		CampaignID:  campaign.ID,
		LeadID:      lead.ID,
		Status:      campaignTypes.ENROLLMENT_STATUS_ACTIVE,
		CurrentStep: 1,
		EnrolledAt:  time.Now().Unix(),
	}

	// the A/B group is assigned exactly once, at enrollment
	if campaign.ABTestingEnabled {
		groups := sequence.ABTestGroups(sequences)
		if len(groups) > 0 {
			enrollment.ABTestGroup = groups[rand.Intn(len(groups))]
		}
	}

	firstStep := sequence.FindVisibleAt(campaign, sequences, enrollment, 1)
	if firstStep == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign has no first sequence step"})
		return
	}
	enrollment.CurrentSequenceID = firstStep.ID
	enrollment.NextSendAt = sequence.NextSendAt(time.Now(), *firstStep).Unix()

	saved, err := h.campaignDBService.AddEnrollment(instanceID, enrollment)
	if err != nil {
		// the unique campaignID+leadID index rejects double enrollment
		slog.Warn("Failed to save enrollment", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("leadID", req.LeadID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead could not be enrolled"})
		return
	}
	slog.Info("Lead enrolled", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("enrollmentID", saved.ID.Hex()))
	c.JSON(http.StatusOK, gin.H{"enrollment": saved})
}

func (h *HttpEndpoints) getEnrollments(c *gin.Context) {
	instanceID := c.Param("instanceID")
	campaignID := c.Param("campaignID")

	campaign, err := h.campaignDBService.GetCampaignByID(instanceID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	enrollments, err := h.campaignDBService.GetEnrollmentsForCampaign(instanceID, campaign.ID)
	if err != nil {
		slog.Error("Failed to fetch enrollments", slog.String("instanceID", instanceID), slog.String("campaignID", campaignID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch enrollments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

func (h *HttpEndpoints) cancelEnrollment(c *gin.Context) {
	instanceID := c.Param("instanceID")
	enrollmentID := c.Param("enrollmentID")

	_id, err := primitive.ObjectIDFromHex(enrollmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment id"})
		return
	}

	if err := h.campaignDBService.CancelEnrollment(instanceID, _id); err != nil {
		slog.Warn("Failed to cancel enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollmentID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "enrollment not found or not active"})
		return
	}
	slog.Info("Enrollment cancelled", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollmentID))
	c.JSON(http.StatusOK, gin.H{"message": "enrollment cancelled"})
}

func (h *HttpEndpoints) createLead(c *gin.Context) {
	instanceID := c.Param("instanceID")

	var lead campaignTypes.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead.ID = primitive.NilObjectID
	lead.Unsubscribed = false

	saved, err := h.campaignDBService.AddLead(instanceID, lead)
	if err != nil {
		slog.Error("Failed to save lead", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save lead"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": saved})
}

func (h *HttpEndpoints) getLeads(c *gin.Context) {
	instanceID := c.Param("instanceID")

	leads, err := h.campaignDBService.GetLeads(instanceID)
	if err != nil {
		slog.Error("Failed to fetch leads", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch leads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (h *HttpEndpoints) runSchedulerCycle(c *gin.Context) {
	instanceID := c.Param("instanceID")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cycleTimeout)
	defer cancel()

	start := time.Now()
	summary := h.scheduler.RunCycle(ctx, instanceID)
	slog.Info("Scheduler cycle finished",
		slog.String("instanceID", instanceID),
		slog.String("duration", time.Since(start).String()),
		slog.Int("processed", summary.Processed),
		slog.Int("sent", summary.Sent),
		slog.Int("skipped", summary.Skipped),
		slog.Int("completed", summary.Completed),
		slog.Int("errors", summary.Errors),
	)
	c.JSON(http.StatusOK, summary)
}
