package reward

// Voucher is a claimable item gated on the viewer's lifetime
// flexpoints.
type Voucher struct {
	ID             string `json:"id"`
	LogoURL        string `json:"logo_url"`
	Title          string `json:"title"`
	PointsRequired int    `json:"points_required"`
}

// Prize is a display-only reward catalog entry.
type Prize struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Points   int    `json:"points"`
}

// CatalogResponse is the rewards screen payload: the static catalog
// plus the viewer's spendable balance.
type CatalogResponse struct {
	FlexPoints int       `json:"flexpoints"`
	Vouchers   []Voucher `json:"vouchers"`
	Prizes     []Prize   `json:"prizes"`
}

// Vouchers returns the static voucher catalog.
func Vouchers() []Voucher {
	return []Voucher{
		{ID: "1", LogoURL: "https://logos-world.net/wp-content/uploads/2020/09/Starbucks-Logo.png", Title: "Claim Voucher", PointsRequired: 200},
		{ID: "2", LogoURL: "https://upload.wikimedia.org/wikipedia/commons/a/a6/Stripe_logo%2C_revised_2016.svg", Title: "Claim Voucher", PointsRequired: 400},
		{ID: "3", LogoURL: "https://via.placeholder.com/100", Title: "Claim Voucher", PointsRequired: 500},
		{ID: "4", LogoURL: "https://via.placeholder.com/100", Title: "Claim Voucher", PointsRequired: 150},
	}
}

// Prizes returns the static prize catalog.
func Prizes() []Prize {
	return []Prize{
		{ID: "1", ImageURL: "https://source.unsplash.com/100x100/?headphones", Points: 5999},
		{ID: "2", ImageURL: "https://source.unsplash.com/100x100/?headphones", Points: 5999},
		{ID: "3", ImageURL: "https://source.unsplash.com/100x100/?headphones", Points: 5000},
		{ID: "4", ImageURL: "https://source.unsplash.com/100x100/?headphones", Points: 5000},
	}
}

// FindVoucher looks a voucher up by id.
func FindVoucher(id string) (Voucher, bool) {
	for _, v := range Vouchers() {
		if v.ID == id {
			return v, true
		}
	}
	return Voucher{}, false
}
