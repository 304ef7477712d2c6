package vendor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-tripbooking/internal/access"
	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
)

type DBLayer interface {
	CreateApplication(ctx context.Context, app models.VendorApplication) error
	GetApplicationByID(ctx context.Context, id string) (*models.VendorApplication, error)
	HasPendingByApplicant(ctx context.Context, applicantID string) (bool, error)
	ResolveApplication(ctx context.Context, id string, status models.ApplicationStatus, reviewerID string) error
	ListByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.VendorApplication, error)
}

type AccessChecker interface {
	Require(ctx context.Context, principalID string, capability access.Capability) error
	GrantCapability(ctx context.Context, principalID string, capability access.Capability) error
}

type EventPublisher interface {
	PublishVendorApproved(app models.VendorApplication) error
}

// Service runs vendor onboarding: pending -> approved|rejected, exactly once.
// Approval also grants the vendor capability, strictly after the status write
// commits; a failed grant never unwinds the approval.
type Service struct {
	DB     DBLayer
	Access AccessChecker
	Events EventPublisher
	logger *logger.Logger
}

func NewService(db DBLayer, checker AccessChecker, events EventPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Access: checker, Events: events, logger: log}
}

// Submit files a vendor application for the calling principal.
func (s *Service) Submit(ctx context.Context, applicantID string, req models.VendorApplicationRequest) (*models.VendorApplication, error) {
	if applicantID == "" {
		return nil, fmt.Errorf("applicant id is required: %w", apperr.ErrInvalidInput)
	}
	if req.BusinessName == "" {
		return nil, fmt.Errorf("business name is required: %w", apperr.ErrInvalidInput)
	}

	pending, err := s.DB.HasPendingByApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}
	if pending {
		return nil, fmt.Errorf("applicant %s already has a pending application: %w", applicantID, apperr.ErrDuplicatePending)
	}

	app := models.VendorApplication{
		ApplicationID: uuid.NewString(),
		ApplicantID:   applicantID,
		BusinessName:  req.BusinessName,
		ContactPhone:  req.ContactPhone,
		Description:   req.Description,
		DocumentRef:   req.DocumentRef,
		Status:        models.ApplicationPending,
		CreatedAt:     time.Now(),
	}
	if err := s.DB.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}

	s.logger.Info("VENDOR", fmt.Sprintf("application %s submitted by %s (%s)", app.ApplicationID, applicantID, req.BusinessName))
	return &app, nil
}

// Review resolves a pending application. Admin only.
func (s *Service) Review(ctx context.Context, applicationID, reviewerID, decision string) (*models.VendorApplication, error) {
	if err := s.Access.Require(ctx, reviewerID, access.CapabilityAdmin); err != nil {
		return nil, err
	}

	var status models.ApplicationStatus
	switch decision {
	case string(models.ApplicationApproved):
		status = models.ApplicationApproved
	case string(models.ApplicationRejected):
		status = models.ApplicationRejected
	default:
		return nil, fmt.Errorf("decision must be approved or rejected, got %q: %w", decision, apperr.ErrInvalidInput)
	}

	app, err := s.DB.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationPending {
		return nil, fmt.Errorf("application %s is %s: %w", applicationID, app.Status, apperr.ErrInvalidTransition)
	}

	if err := s.DB.ResolveApplication(ctx, applicationID, status, reviewerID); err != nil {
		return nil, err
	}

	app.Status = status
	app.ReviewerID = reviewerID
	now := time.Now()
	app.ReviewedAt = &now

	s.logger.Info("VENDOR", fmt.Sprintf("application %s %s by %s", applicationID, status, reviewerID))

	if status == models.ApplicationApproved {
		// The approval is durable at this point. The grant gets one retry; if
		// it still fails, the application stays approved and the grant is left
		// for an operator or the next review pass.
		if err := s.grantVendor(ctx, app.ApplicantID); err != nil {
			s.logger.Error("VENDOR", fmt.Sprintf("vendor grant for %s failed after approval of %s: %v", app.ApplicantID, applicationID, err))
		}
		if s.Events != nil {
			if err := s.Events.PublishVendorApproved(*app); err != nil {
				s.logger.LogKafka("ERROR", "vendor-approved", err.Error())
			}
		}
	}

	return app, nil
}

func (s *Service) grantVendor(ctx context.Context, applicantID string) error {
	err := s.Access.GrantCapability(ctx, applicantID, access.CapabilityVendor)
	if err == nil {
		return nil
	}
	s.logger.Warn("VENDOR", fmt.Sprintf("vendor grant for %s failed, retrying once: %v", applicantID, err))
	return s.Access.GrantCapability(ctx, applicantID, access.CapabilityVendor)
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context, adminID string) ([]models.VendorApplication, error) {
	if err := s.Access.Require(ctx, adminID, access.CapabilityAdmin); err != nil {
		return nil, err
	}
	return s.DB.ListByStatus(ctx, models.ApplicationPending)
}

// GetApplication returns an application to its applicant or an admin.
func (s *Service) GetApplication(ctx context.Context, principalID, applicationID string) (*models.VendorApplication, error) {
	app, err := s.DB.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != principalID {
		if err := s.Access.Require(ctx, principalID, access.CapabilityAdmin); err != nil {
			return nil, err
		}
	}
	return app, nil
}
