package models

// Canteen is a food court.
type Canteen struct {
	CanteenID int64  `json:"canteenId"`
	Name      string `json:"name"`
}

// Shop is a vendor inside a canteen. Status true means open.
type Shop struct {
	ShopID    int64  `json:"shopId"`
	CanteenID int64  `json:"canteenId"`
	Name      string `json:"name"`
	Status    bool   `json:"status"`
}

// ShopInfo is the detail record of /admin/canteen/shop/info.
type ShopInfo struct {
	ShopID      int64  `json:"shopId"`
	Name        string `json:"name"`
	OwnerName   string `json:"ownerName"`
	PhoneNumber string `json:"phoneNumber"`
	Status      bool   `json:"status"`
	Description string `json:"description"`
}

// Menu is one dish of a shop.
type Menu struct {
	MenuID int64   `json:"menuId"`
	ShopID int64   `json:"shopId"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Status bool    `json:"status"`
}
