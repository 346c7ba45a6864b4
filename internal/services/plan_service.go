package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "investclub/internal/errors"
	"investclub/internal/models"
	"investclub/internal/pagination"
)

// planService handles the investment plan catalog.
type planService struct {
	db *gorm.DB
}

// NewPlanService creates a new PlanServicer.
func NewPlanService(db *gorm.DB) PlanServicer {
	return &planService{db: db}
}

// CreatePlan adds a new plan to the catalog.
func (s *planService) CreatePlan(name string, invest, daily, total int64, days int, roi float64, benefits, badge string) (*models.Plan, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "plan name is required")
	}
	if invest <= 0 || daily <= 0 || days <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invest, daily, and days must be greater than zero")
	}

	plan := &models.Plan{
		Name:     name,
		Invest:   invest,
		Daily:    daily,
		Total:    total,
		Days:     days,
		ROI:      roi,
		Benefits: benefits,
		Badge:    badge,
		IsActive: true,
	}
	if err := s.db.Create(plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

// UpdatePlan applies the provided (non-nil) fields to an existing plan.
func (s *planService) UpdatePlan(planID string, name *string, invest, daily, total *int64, days *int, roi *float64, benefits, badge *string, isActive *bool) (*models.Plan, error) {
	plan, err := s.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if invest != nil {
		updates["invest"] = *invest
	}
	if daily != nil {
		updates["daily"] = *daily
	}
	if total != nil {
		updates["total"] = *total
	}
	if days != nil {
		updates["days"] = *days
	}
	if roi != nil {
		updates["roi"] = *roi
	}
	if benefits != nil {
		updates["benefits"] = *benefits
	}
	if badge != nil {
		updates["badge"] = *badge
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) == 0 {
		return plan, nil
	}

	if err := s.db.Model(plan).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

// DeletePlan removes a plan from the catalog. Existing investments keep
// their plan reference; the accrual engine skips them once the plan is gone.
func (s *planService) DeletePlan(planID string) error {
	plan, err := s.GetPlanByID(planID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(plan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetPlanByID retrieves a plan by ID.
func (s *planService) GetPlanByID(planID string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// ListActivePlans returns all active plans, cheapest first.
func (s *planService) ListActivePlans() ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.Where("is_active = ?", true).Order("invest").Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plans, nil
}

// ListPlans returns a paginated list of all plans, including inactive ones.
func (s *planService) ListPlans(page pagination.PageRequest) (*pagination.PageResponse[models.Plan], error) {
	page.Defaults()

	base := s.db.Model(&models.Plan{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var plans []models.Plan
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(plans, page.Page, page.PageSize, totalItems)
	return &result, nil
}
