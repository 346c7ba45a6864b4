// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// referralCodeRegex matches the 8-character uppercase alphanumeric codes
// assigned at registration.
var referralCodeRegex = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("referral_code", validateReferralCode)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("transaction_status", validateTransactionStatus)
	}
}

func validateReferralCode(fl validator.FieldLevel) bool {
	return referralCodeRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "deposit", "withdraw", "investment", "daily_return", "referral_commission":
		return true
	}
	return false
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "completed", "failed":
		return true
	}
	return false
}
