package payment

import "nestlink/server/internal/models"

const MethodMobileMoney = "mpesa"

// DefaultMethods lists the options of the payment screen. Only mobile
// money is wired; the rest are shown as coming soon.
func DefaultMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{ID: MethodMobileMoney, Name: "M-Pesa", Description: "Pay instantly with M-Pesa", Available: true},
		{ID: "card", Name: "Credit/Debit Card", Description: "Pay with your card"},
		{ID: "airtel", Name: "Airtel Money", Description: "Airtel Money payment"},
		{ID: "cash", Name: "Cash", Description: "Pay with cash on delivery"},
	}
}
