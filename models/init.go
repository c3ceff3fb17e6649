package models

import "gorm.io/gorm"

// CreateDefaultPlans seeds the credit packages operators can be granted
func CreateDefaultPlans(db *gorm.DB) error {
	defaultPlans := []Plan{
		{
			Name:            "free",
			Description:     "Free plan with one campaign and 50 captured leads",
			PlanType:        PlanFree,
			CampaignCredits: 1,
			LeadCredits:     50,
			Price:           0,
		},
		{
			Name:            "starter",
			Description:     "Starter bundle with 5 campaigns and 1,000 leads",
			PlanType:        PlanPaid,
			CampaignCredits: 5,
			LeadCredits:     1000,
			Price:           1900, // $19
			DisplayPrice:    "$19",
			BillingInterval: "monthly",
		},
		{
			Name:            "pro",
			Description:     "Pro bundle with 25 campaigns and unmetered leads while subscribed",
			PlanType:        PlanPaid,
			CampaignCredits: 25,
			LeadCredits:     10000,
			Price:           4900, // $49
			DisplayPrice:    "$49",
			IsPopular:       true,
			BillingInterval: "monthly",
		},
	}
	for _, plan := range defaultPlans {
		if err := db.FirstOrCreate(&plan, "name = ?", plan.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
