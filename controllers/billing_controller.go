package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"prizewheel/models"
	"prizewheel/services"
	"prizewheel/utils"
)

type BillingController struct {
	DB     *gorm.DB
	Ledger *services.Ledger
}

func NewBillingController(db *gorm.DB, ledger *services.Ledger) *BillingController {
	return &BillingController{DB: db, Ledger: ledger}
}

type GrantRequest struct {
	Plan            string `json:"plan" validate:"omitempty,max=50"`
	CampaignCredits int    `json:"campaign_credits" validate:"min=0"`
	LeadCredits     int    `json:"lead_credits" validate:"min=0"`
	Description     string `json:"description" validate:"omitempty,max=255"`
	ReferenceID     string `json:"reference_id" validate:"omitempty,max=100"`
}

type SubscriptionRequest struct {
	PlanType           string     `json:"plan_type" validate:"required,oneof=free paid"`
	SubscriptionStatus string     `json:"subscription_status" validate:"required,oneof=active trialing past_due canceled none"`
	PlanExpiresAt      *time.Time `json:"plan_expires_at"`
}

// GetBalance returns the caller's remaining credits
func (bc *BillingController) GetBalance(c *fiber.Ctx) error {
	operator := currentOperator(c)

	balance, err := bc.Ledger.Balance(c.UserContext(), bc.DB, operator.ID)
	if err != nil {
		return respondError(c, "get_balance", err)
	}
	return c.JSON(utils.SuccessResponse(balance))
}

// GetPlans lists the credit bundles
func (bc *BillingController) GetPlans(c *fiber.Ctx) error {
	var plans []models.Plan
	if err := bc.DB.WithContext(c.UserContext()).Order("price ASC").Find(&plans).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch plans", err)
	}
	for i := range plans {
		if plans[i].Price == 0 {
			plans[i].DisplayPrice = "Free"
		} else {
			plans[i].DisplayPrice = fmt.Sprintf("$%d", plans[i].Price/100)
		}
	}
	return c.JSON(utils.SuccessResponse(plans))
}

// GetUsage returns the caller's most recent credit debits and grants
func (bc *BillingController) GetUsage(c *fiber.Ctx) error {
	operator := currentOperator(c)
	db := bc.DB.WithContext(c.UserContext())

	var usage []models.CreditUsage
	if err := db.Where("operator_id = ?", operator.ID).Order("created_at DESC").Limit(100).Find(&usage).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch usage", err)
	}
	var grants []models.CreditTransaction
	if err := db.Where("operator_id = ?", operator.ID).Preload("Plan").Order("created_at DESC").Limit(100).Find(&grants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch transactions", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"usage":        usage,
		"transactions": grants,
	}))
}

// GrantCredits adds a plan bundle or explicit amounts to an operator
func (bc *BillingController) GrantCredits(c *fiber.Ctx) error {
	admin := currentOperator(c)
	operatorID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid operator ID", nil)
	}

	var req GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var txn *models.CreditTransaction
	if req.Plan != "" {
		txn, err = bc.Ledger.GrantPlan(c.UserContext(), bc.DB, operatorID, req.Plan, &admin.ID, req.ReferenceID)
	} else {
		if req.CampaignCredits == 0 && req.LeadCredits == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Nothing to grant", nil)
		}
		txn = &models.CreditTransaction{
			OperatorID:      operatorID,
			CampaignCredits: req.CampaignCredits,
			LeadCredits:     req.LeadCredits,
			Description:     req.Description,
			ReferenceID:     req.ReferenceID,
			GrantedBy:       &admin.ID,
		}
		err = bc.Ledger.Grant(c.UserContext(), bc.DB, txn)
	}
	if err != nil {
		return respondError(c, "grant_credits", err)
	}

	utils.LogEvent("credits_granted", map[string]interface{}{
		"operator_id":      operatorID,
		"granted_by":       admin.ID,
		"campaign_credits": txn.CampaignCredits,
		"lead_credits":     txn.LeadCredits,
	})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(txn))
}

// UpdateSubscription records the plan state reported by the billing provider
func (bc *BillingController) UpdateSubscription(c *fiber.Ctx) error {
	operatorID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid operator ID", nil)
	}

	var req SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	result := bc.DB.WithContext(c.UserContext()).Model(&models.Operator{}).Where("id = ?", operatorID).Updates(map[string]interface{}{
		"plan_type":           req.PlanType,
		"subscription_status": req.SubscriptionStatus,
		"plan_expires_at":     req.PlanExpiresAt,
	})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update subscription", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Operator not found", nil)
	}
	return c.JSON(utils.SuccessResponse(req))
}
