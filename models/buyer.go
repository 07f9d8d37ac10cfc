package models

// Buyer is an identity record from the caller's master data extract.
// Immutable once loaded; referenced from headers by BuyerId (weak key,
// resolved through DataContext.BuyerMap).
type Buyer struct {
	BuyerId           string `json:"buyer_id" binding:"required"`
	BuyerName         string `json:"buyer_name"`
	BuyerTRN          string `json:"buyer_trn"`
	AddressLine1      string `json:"address_line1"`
	AddressLine2      string `json:"address_line2"`
	Country           string `json:"country"`
	City              string `json:"city"`
	Subdivision       string `json:"subdivision"`
	ElectronicAddress string `json:"electronic_address"`
}
