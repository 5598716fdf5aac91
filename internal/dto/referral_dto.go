package dto

// ReferralApplyRequest carries a referral code entered by a student.
type ReferralApplyRequest struct {
	Code string `json:"code" validate:"required,alphanum,min=4,max=32"`
}

// ReferralInfoResponse describes a student's referral status.
type ReferralInfoResponse struct {
	ReferralCode      string `json:"referral_code"`
	ReferralCount     int    `json:"referral_count"`
	RequiredReferrals int    `json:"required_referrals"`
	Remaining         int    `json:"remaining"`
	IsPremiumUnlocked bool   `json:"is_premium_unlocked"`
	HasAppliedCode    bool   `json:"has_applied_code"`
}
