package models

// Input types for the asset creation wizard steps

// CompanyStepInput describes the SPV that will hold the asset.
type CompanyStepInput struct {
	Name               string `json:"name"`
	Jurisdiction       string `json:"jurisdiction"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	Description        string `json:"description,omitempty"`
}

// AssetStepInput describes the property being tokenized.
type AssetStepInput struct {
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	AreaSqm     float64 `json:"areaSqm,omitempty"`
	Description string  `json:"description,omitempty"`
}

// FeeStepInput drives the fee calculation of a draft.
type FeeStepInput struct {
	Category             string   `json:"category,omitempty"`
	BasePropertyValue    *float64 `json:"basePropertyValue"`
	ApprovedFeeStructure *bool    `json:"approvedFeeStructure"`
	DisabledItems        []string `json:"disabledItems,omitempty"`
}

// TokenStepInput holds the token parameters.
type TokenStepInput struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply int64  `json:"totalSupply"`
}
