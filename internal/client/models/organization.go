package models

// Organization is the employer a profile belongs to. VATNumber is the code
// typed during onboarding.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VATNumber string `json:"VAT_number"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Country   string `json:"country"`
}
