package apihandlers

import (
	"log/slog"
	"net/http"
	"time"

	mw "github.com/soshogle/nexrel-crm-sub019/pkg/apihelpers/middlewares"
	jwthandling "github.com/soshogle/nexrel-crm-sub019/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 1x1 transparent GIF served for open tracking.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// AddTrackingAPI registers the endpoints embedded into outgoing emails. These
// are hit by recipients' mail clients and browsers, so they carry no API key.
func (h *HttpEndpoints) AddTrackingAPI(rg *gin.RouterGroup) {
	trackingGroup := rg.Group("/t/:instanceID")
	trackingGroup.Use(mw.IsInstanceIDAllowed(h.allowedInstanceIDs))

	trackingGroup.GET("/open/:trackingID", h.trackOpen)
	trackingGroup.GET("/click/:trackingID", h.trackClick)
	trackingGroup.GET("/unsubscribe/:token", h.unsubscribe)
}

// trackOpen always answers with the pixel, even for unknown tracking IDs, so
// the response does not reveal whether an ID exists.
func (h *HttpEndpoints) trackOpen(c *gin.Context) {
	instanceID := c.Param("instanceID")
	trackingID := c.Param("trackingID")

	h.recordEngagement(instanceID, trackingID, true)

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/gif", trackingPixel)
}

func (h *HttpEndpoints) trackClick(c *gin.Context) {
	instanceID := c.Param("instanceID")
	trackingID := c.Param("trackingID")
	targetURL := c.Query("url")

	if targetURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url missing"})
		return
	}

	h.recordEngagement(instanceID, trackingID, false)

	c.Redirect(http.StatusFound, targetURL)
}

func (h *HttpEndpoints) recordEngagement(instanceID string, trackingID string, isOpen bool) {
	message, err := h.campaignDBService.GetMessageByTrackingID(instanceID, trackingID)
	if err != nil {
		slog.Warn("Engagement event for unknown tracking ID", slog.String("instanceID", instanceID), slog.String("trackingID", trackingID))
		return
	}

	now := time.Now().Unix()
	if isOpen {
		err = h.campaignDBService.MarkMessageOpened(instanceID, trackingID, now)
	} else {
		err = h.campaignDBService.MarkMessageClicked(instanceID, trackingID, now)
	}
	if err != nil {
		slog.Error("Failed to record engagement on message", slog.String("instanceID", instanceID), slog.String("trackingID", trackingID), slog.String("error", err.Error()))
	}

	if err := h.campaignDBService.MarkEnrollmentEngaged(instanceID, message.EnrollmentID, now); err != nil {
		slog.Error("Failed to record engagement on enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", message.EnrollmentID.Hex()), slog.String("error", err.Error()))
	}
}

func (h *HttpEndpoints) unsubscribe(c *gin.Context) {
	instanceID := c.Param("instanceID")
	token := c.Param("token")

	claims, valid, err := jwthandling.ValidateUnsubscribeToken(token, h.unsubscribeJWTSecret)
	if err != nil || !valid || claims.InstanceID != instanceID {
		slog.Warn("Invalid unsubscribe token", slog.String("instanceID", instanceID))
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte("<html><body><p>This unsubscribe link is invalid or has expired.</p></body></html>"))
		return
	}

	enrollmentID, err := primitive.ObjectIDFromHex(claims.EnrollmentID)
	if err == nil {
		if err := h.campaignDBService.CancelEnrollment(instanceID, enrollmentID); err != nil {
			// already completed or cancelled, the lead opt-out below still applies
			slog.Debug("Enrollment not cancelled on unsubscribe", slog.String("instanceID", instanceID), slog.String("enrollmentID", claims.EnrollmentID), slog.String("error", err.Error()))
		}
	}

	leadID, err := primitive.ObjectIDFromHex(claims.LeadID)
	if err == nil {
		if err := h.campaignDBService.MarkLeadUnsubscribed(instanceID, leadID); err != nil {
			slog.Error("Failed to mark lead unsubscribed", slog.String("instanceID", instanceID), slog.String("leadID", claims.LeadID), slog.String("error", err.Error()))
		}
	}

	slog.Info("Lead unsubscribed", slog.String("instanceID", instanceID), slog.String("leadID", claims.LeadID), slog.String("enrollmentID", claims.EnrollmentID))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html><body><p>You have been unsubscribed.</p></body></html>"))
}
