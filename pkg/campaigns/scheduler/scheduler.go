package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/delivery"
	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/personalization"
	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/sequence"
	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/tracking"
	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	jwthandling "github.com/soshogle/nexrel-crm-sub019/pkg/jwt-handling"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DEFAULT_ENROLLMENT_BATCH_SIZE = 50
	DEFAULT_CLAIM_LOCK_DURATION   = 60 * time.Minute
	DEFAULT_MAX_SEND_ATTEMPTS     = 5
	DEFAULT_SEND_TIMEOUT          = 30 * time.Second

	MAX_ERRORS_BEFORE_CAMPAIGN_STOP = 10
)

// Config carries the tuning knobs of the scheduler. Zero values fall back to
// the defaults above.
type Config struct {
	BatchSize           int
	ClaimLockDuration   time.Duration
	MaxSendAttempts     int
	SendTimeout         time.Duration
	TrackingBaseURL     string
	UnsubscribeSecret   string
	UnsubscribeTokenTTL time.Duration
}

// Scheduler drives active campaigns' enrollments forward. It keeps no state
// between cycles and runs no internal timer: RunCycle is invoked by an
// external periodic trigger and is a bounded unit of work.
type Scheduler struct {
	campaigns   CampaignStore
	enrollments EnrollmentStore
	messages    MessageStore
	leads       LeadStore
	adapters    delivery.Adapters
	config      Config
}

// CycleSummary reports what one cycle did.
type CycleSummary struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Completed int `json:"completed"`
	Errors    int `json:"errors"`
}

func (s *CycleSummary) add(other CycleSummary) {
	s.Processed += other.Processed
	s.Sent += other.Sent
	s.Skipped += other.Skipped
	s.Completed += other.Completed
	s.Errors += other.Errors
}

func New(
	campaigns CampaignStore,
	enrollments EnrollmentStore,
	messages MessageStore,
	leads LeadStore,
	adapters delivery.Adapters,
	config Config,
) *Scheduler {
	if config.BatchSize < 1 {
		config.BatchSize = DEFAULT_ENROLLMENT_BATCH_SIZE
	}
	if config.ClaimLockDuration <= 0 {
		config.ClaimLockDuration = DEFAULT_CLAIM_LOCK_DURATION
	}
	if config.MaxSendAttempts < 1 {
		config.MaxSendAttempts = DEFAULT_MAX_SEND_ATTEMPTS
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = DEFAULT_SEND_TIMEOUT
	}
	return &Scheduler{
		campaigns:   campaigns,
		enrollments: enrollments,
		messages:    messages,
		leads:       leads,
		adapters:    adapters,
		config:      config,
	}
}

// RunCycle processes every active campaign of the instance once. Failures
// inside one campaign or one enrollment are logged and do not stop the rest
// of the cycle.
func (s *Scheduler) RunCycle(ctx context.Context, instanceID string) CycleSummary {
	summary := CycleSummary{}

	activeCampaigns, err := s.campaigns.GetCampaignsByStatus(instanceID, campaignTypes.CAMPAIGN_STATUS_ACTIVE)
	if err != nil {
		slog.Error("Failed to load active campaigns", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		summary.Errors += 1
		return summary
	}

	for _, campaign := range activeCampaigns {
		if ctx.Err() != nil {
			slog.Warn("Cycle aborted", slog.String("instanceID", instanceID), slog.String("error", ctx.Err().Error()))
			break
		}
		campaignSummary := s.runCampaign(ctx, instanceID, campaign)
		summary.add(campaignSummary)
	}
	return summary
}

func (s *Scheduler) runCampaign(ctx context.Context, instanceID string, campaign campaignTypes.Campaign) CycleSummary {
	summary := CycleSummary{}

	sequences, err := s.campaigns.GetSequencesForCampaign(instanceID, campaign.ID)
	if err != nil {
		slog.Error("Failed to load sequences for campaign", slog.String("instanceID", instanceID), slog.String("campaignID", campaign.ID.Hex()), slog.String("error", err.Error()))
		summary.Errors += 1
		return summary
	}

	for i := 0; i < s.config.BatchSize; i++ {
		if ctx.Err() != nil {
			return summary
		}
		if summary.Errors >= MAX_ERRORS_BEFORE_CAMPAIGN_STOP {
			slog.Error("Too many errors, stopping batch for campaign", slog.String("instanceID", instanceID), slog.String("campaignID", campaign.ID.Hex()))
			return summary
		}

		enrollment, err := s.enrollments.ClaimDueEnrollment(instanceID, campaign.ID, s.config.ClaimLockDuration)
		if err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				slog.Error("Failed to claim due enrollment", slog.String("instanceID", instanceID), slog.String("campaignID", campaign.ID.Hex()), slog.String("error", err.Error()))
				summary.Errors += 1
			}
			return summary
		}

		s.processEnrollment(ctx, instanceID, campaign, sequences, enrollment, &summary)
	}
	return summary
}

// processEnrollment advances one claimed enrollment by at most one state
// transition: send, skip, completion, or a recorded delivery failure.
func (s *Scheduler) processEnrollment(
	ctx context.Context,
	instanceID string,
	campaign campaignTypes.Campaign,
	sequences []campaignTypes.Sequence,
	enrollment campaignTypes.Enrollment,
	summary *CycleSummary,
) {
	summary.Processed += 1

	// honor external cancellation that happened since the claim
	current, err := s.enrollments.GetEnrollmentByID(instanceID, enrollment.ID.Hex())
	if err != nil {
		slog.Error("Failed to re-load enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		summary.Errors += 1
		return
	}
	if current.Status != campaignTypes.ENROLLMENT_STATUS_ACTIVE {
		slog.Debug("Enrollment no longer active, skipping", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("status", current.Status))
		summary.Skipped += 1
		return
	}
	enrollment = current

	engaged := enrollment.LastEngagedAt > 0
	if !engaged {
		latest, err := s.messages.GetLatestMessageForEnrollment(instanceID, enrollment.ID)
		if err == nil {
			engaged = latest.Engaged()
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			slog.Error("Failed to load latest message for enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		}
	}

	resolution := sequence.ResolveNext(campaign, sequences, enrollment, engaged)

	if resolution.Sequence == nil {
		s.completeEnrollment(instanceID, campaign, enrollment, summary)
		return
	}

	if len(resolution.SkippedSteps) > 0 {
		// engagement skip: same transition as a successful send, but
		// without a message and without calling the delivery adapter
		s.advancePastStep(instanceID, campaign, sequences, enrollment, resolution.Step-1, summary)
		slog.Info("Skipped engaged steps", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.Int("fromStep", enrollment.CurrentStep), slog.Int("toStep", resolution.Step))
		return
	}

	if enrollment.SendAttempts >= s.config.MaxSendAttempts {
		slog.Warn("Giving up on step after max send attempts", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.Int("step", resolution.Step), slog.Int("attempts", enrollment.SendAttempts))
		s.advancePastStep(instanceID, campaign, sequences, enrollment, resolution.Step, summary)
		return
	}

	s.sendStep(ctx, instanceID, campaign, sequences, enrollment, *resolution.Sequence, resolution.Step, summary)
}

// advancePastStep moves the enrollment to the step after the given one
// without sending, or completes it when no further step is visible.
func (s *Scheduler) advancePastStep(
	instanceID string,
	campaign campaignTypes.Campaign,
	sequences []campaignTypes.Sequence,
	enrollment campaignTypes.Enrollment,
	step int,
	summary *CycleSummary,
) {
	next := sequence.FindVisibleAt(campaign, sequences, enrollment, step+1)
	if next == nil {
		s.completeEnrollment(instanceID, campaign, enrollment, summary)
		return
	}

	nextSendAt := sequence.NextSendAt(time.Now(), *next).Unix()
	_, err := s.enrollments.AdvanceEnrollment(instanceID, enrollment.ID, enrollment.CurrentStep, step+1, next.ID, nextSendAt)
	if err != nil {
		slog.Warn("Could not advance enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		summary.Errors += 1
		return
	}
	summary.Skipped += 1
}

func (s *Scheduler) completeEnrollment(
	instanceID string,
	campaign campaignTypes.Campaign,
	enrollment campaignTypes.Enrollment,
	summary *CycleSummary,
) {
	if err := s.enrollments.CompleteEnrollment(instanceID, enrollment.ID, enrollment.CurrentStep); err != nil {
		slog.Error("Failed to complete enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		summary.Errors += 1
		return
	}
	if err := s.campaigns.IncrementCampaignTotalCompleted(instanceID, campaign.ID); err != nil {
		slog.Error("Failed to increment campaign completion counter", slog.String("instanceID", instanceID), slog.String("campaignID", campaign.ID.Hex()), slog.String("error", err.Error()))
	}
	summary.Completed += 1
	slog.Info("Enrollment completed", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("campaignID", campaign.ID.Hex()))
}

// sendStep renders, records, and delivers the message for the resolved step,
// then advances or completes the enrollment.
func (s *Scheduler) sendStep(
	ctx context.Context,
	instanceID string,
	campaign campaignTypes.Campaign,
	sequences []campaignTypes.Sequence,
	enrollment campaignTypes.Enrollment,
	seq campaignTypes.Sequence,
	step int,
	summary *CycleSummary,
) {
	lead, err := s.leads.GetLeadByID(instanceID, enrollment.LeadID.Hex())
	if err != nil {
		slog.Error("Failed to load lead for enrollment", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		s.releaseClaim(instanceID, enrollment.ID)
		summary.Errors += 1
		return
	}

	// recipient data problems are not delivery failures: nothing is
	// marked failed, the claim lock defers the next look at this
	// enrollment so one bad lead cannot eat the whole batch
	recipient := lead.Email
	if campaign.Channel == campaignTypes.CAMPAIGN_CHANNEL_SMS {
		recipient = lead.Phone
	}
	if recipient == "" {
		slog.Warn("Lead has no contact address for channel", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("leadID", lead.ID.Hex()), slog.String("channel", campaign.Channel))
		summary.Skipped += 1
		return
	}
	if lead.Unsubscribed {
		slog.Info("Lead is unsubscribed, not sending", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()))
		summary.Skipped += 1
		return
	}

	subject, body := personalization.ResolveContent(seq, lead, campaign.Name)
	trackingID := tracking.NewTrackingID()

	content := body
	if campaign.Channel == campaignTypes.CAMPAIGN_CHANNEL_EMAIL {
		urlBuilder := tracking.URLBuilder{BaseURL: s.config.TrackingBaseURL, InstanceID: instanceID}
		if s.config.UnsubscribeSecret != "" {
			token, err := jwthandling.GenerateNewUnsubscribeToken(s.config.UnsubscribeTokenTTL, instanceID, enrollment.ID.Hex(), lead.ID.Hex(), s.config.UnsubscribeSecret)
			if err != nil {
				slog.Error("Failed to generate unsubscribe token", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
			} else {
				content = appendUnsubscribeFooter(content, urlBuilder.UnsubscribeURL(token))
			}
		}
		content = urlBuilder.InjectTracking(content, trackingID)
	}

	message, err := s.messages.AddMessage(instanceID, campaignTypes.Message{
		EnrollmentID: enrollment.ID,
		CampaignID:   campaign.ID,
		SequenceID:   seq.ID,
		LeadID:       lead.ID,
		TrackingID:   trackingID,
		Subject:      subject,
		Content:      content,
		Status:       campaignTypes.MESSAGE_STATUS_PENDING,
	})
	if err != nil {
		slog.Error("Failed to create message record", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		s.releaseClaim(instanceID, enrollment.ID)
		summary.Errors += 1
		return
	}

	adapter, err := s.adapters.ForChannel(campaign.Channel)
	if err != nil {
		slog.Error("No delivery adapter for campaign channel", slog.String("instanceID", instanceID), slog.String("campaignID", campaign.ID.Hex()), slog.String("error", err.Error()))
		s.releaseClaim(instanceID, enrollment.ID)
		summary.Errors += 1
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	defer cancel()
	sendErr := adapter.Send(sendCtx, delivery.SendRequest{
		To:         recipient,
		Subject:    subject,
		HTML:       content,
		Text:       body,
		FromName:   campaign.FromName,
		FromEmail:  campaign.FromEmail,
		ReplyTo:    campaign.ReplyTo,
		TrackingID: trackingID,
	})

	if sendErr != nil {
		slog.Error("Failed to send message", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("messageID", message.ID.Hex()), slog.String("error", sendErr.Error()))
		if err := s.messages.MarkMessageFailed(instanceID, message.ID, sendErr.Error()); err != nil {
			slog.Error("Failed to mark message failed", slog.String("instanceID", instanceID), slog.String("messageID", message.ID.Hex()), slog.String("error", err.Error()))
		}
		if err := s.enrollments.IncrementEnrollmentSendAttempts(instanceID, enrollment.ID); err != nil {
			slog.Error("Failed to increment send attempts", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		}
		// the claim stays in place so the retry waits out the lock
		// duration instead of hammering the transport in this cycle
		summary.Errors += 1
		return
	}

	if err := s.messages.MarkMessageSent(instanceID, message.ID); err != nil {
		slog.Error("Failed to mark message sent", slog.String("instanceID", instanceID), slog.String("messageID", message.ID.Hex()), slog.String("error", err.Error()))
	}
	if err := s.campaigns.IncrementCampaignTotalSent(instanceID, campaign.ID); err != nil {
		slog.Error("Failed to increment campaign sent counter", slog.String("instanceID", instanceID), slog.String("campaignID", campaign.ID.Hex()), slog.String("error", err.Error()))
	}
	summary.Sent += 1

	next := sequence.FindVisibleAt(campaign, sequences, enrollment, step+1)
	if next == nil {
		s.completeEnrollment(instanceID, campaign, enrollment, summary)
		return
	}
	nextSendAt := sequence.NextSendAt(time.Now(), *next).Unix()
	if _, err := s.enrollments.AdvanceEnrollment(instanceID, enrollment.ID, step, step+1, next.ID, nextSendAt); err != nil {
		slog.Error("Failed to advance enrollment after send", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollment.ID.Hex()), slog.String("error", err.Error()))
		summary.Errors += 1
	}
}

// releaseClaim frees the enrollment after an internal error before any send
// attempt, so the next cycle retries right away.
func (s *Scheduler) releaseClaim(instanceID string, enrollmentID primitive.ObjectID) {
	if err := s.enrollments.ReleaseEnrollmentClaim(instanceID, enrollmentID); err != nil {
		slog.Error("Failed to release enrollment claim", slog.String("instanceID", instanceID), slog.String("enrollmentID", enrollmentID.Hex()), slog.String("error", err.Error()))
	}
}

func appendUnsubscribeFooter(content string, unsubscribeURL string) string {
	footer := `<p style="font-size:11px;color:#888;"><a href="` + unsubscribeURL + `">Unsubscribe</a></p>`
	idx := strings.LastIndex(strings.ToLower(content), "</body>")
	if idx < 0 {
		return content + footer
	}
	return content[:idx] + footer + content[idx:]
}
