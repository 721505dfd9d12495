package domain

type User struct {
	ID                  string `db:"id" json:"id"`
	ExternalID          string `db:"external_id" json:"externalId,omitempty"`
	Email               string `db:"email" json:"email"`
	Name                string `db:"name" json:"name"`
	Phone               string `db:"phone" json:"phone,omitempty"`
	BusinessName        string `db:"business_name" json:"businessName,omitempty"`
	BusinessType        string `db:"business_type" json:"businessType,omitempty"`
	Location            string `db:"location" json:"location,omitempty"`
	Role                string `db:"role" json:"role"`
	OnboardingCompleted bool   `db:"onboarding_completed" json:"onboardingCompleted"`
	Hash                string `db:"password_hash" json:"-"`
	CreatedAt           string `db:"created_at" json:"createdAt,omitempty"`
}
