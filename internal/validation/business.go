package validation

import (
	"tokenadmin/internal/models"
)

// Company validates the SPV step of the asset wizard
func (v *Validator) Company(in *models.CompanyStepInput) {
	v.Required("name", in.Name)
	v.MinLength("name", in.Name, MinNameLength)
	v.MaxLength("name", in.Name, MaxNameLength)
	v.Required("jurisdiction", in.Jurisdiction)
	v.MaxLength("registrationNumber", in.RegistrationNumber, MaxReferenceLength)
	v.MaxLength("description", in.Description, MaxDescriptionLength)
}

// Asset validates the property step. knownCategory reports whether a fee
// schedule exists for the category.
func (v *Validator) Asset(in *models.AssetStepInput, knownCategory func(string) bool) {
	v.Required("name", in.Name)
	v.MinLength("name", in.Name, MinNameLength)
	v.MaxLength("name", in.Name, MaxNameLength)
	v.Required("location", in.Location)
	v.Required("category", in.Category)
	if in.Category != "" {
		v.Check(knownCategory(in.Category), "category", "must be a supported asset category")
	}
	v.Range("areaSqm", in.AreaSqm, 0, MaxAreaSqm)
	v.MaxLength("description", in.Description, MaxDescriptionLength)
}

// Token validates the token parameters
func (v *Validator) Token(in *models.TokenStepInput) {
	v.Required("name", in.Name)
	v.MinLength("name", in.Name, MinNameLength)
	v.MaxLength("name", in.Name, MaxNameLength)
	v.Required("symbol", in.Symbol)
	v.Matches("symbol", in.Symbol, symbolRegex, "must be 2 to 11 upper-case letters or digits")
	v.Check(in.TotalSupply > 0, "totalSupply", "must be greater than 0")
	v.Check(in.TotalSupply <= MaxTokenSupply, "totalSupply", "exceeds the maximum supply")
}
