package dto

// StoreProfile is printed on every receipt. Stored as JSON under the
// store_profile setting.
type StoreProfile struct {
	Name    string `json:"name"    validate:"required,max=60"`
	Address string `json:"address" validate:"max=120"`
	Phone   string `json:"phone"   validate:"omitempty,max=20"`
	GSTIN   string `json:"gstin"   validate:"omitempty,len=15,alphanum"`
	Footer  string `json:"footer"  validate:"max=80"`
}
