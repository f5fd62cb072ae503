package models

import (
	"bytes"
	"encoding/json"
)

// Status is the lifecycle state shared by orders and reports.
type Status string

const (
	StatusWaitingAdmin     Status = "waitingAdmin"
	StatusInProgress       Status = "inProgress"
	StatusLookingForWalker Status = "lookingForWalker"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{
	StatusWaitingAdmin,
	StatusInProgress,
	StatusLookingForWalker,
	StatusCompleted,
	StatusCancelled,
}

var statusPriority = map[Status]int{
	StatusWaitingAdmin:     1,
	StatusInProgress:       2,
	StatusLookingForWalker: 3,
	StatusCompleted:        4,
	StatusCancelled:        5,
}

// Priority ranks s for list ordering. Unknown statuses rank last.
func (s Status) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return len(statusPriority) + 1
}

// Known reports whether s is one of the five lifecycle statuses.
func (s Status) Known() bool {
	_, ok := statusPriority[s]
	return ok
}

// Contact is a party embedded in an order. The backend sends either a bare
// name or an object.
type Contact struct {
	Username    string `json:"username,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

func (c *Contact) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*c = Contact{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &c.Username)
	}
	var raw struct {
		Username    string `json:"username"`
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Username = raw.Username
	if c.Username == "" {
		c.Username = raw.Name
	}
	c.PhoneNumber = raw.PhoneNumber
	return nil
}

func (c Contact) String() string { return c.Username }

// OrderItem is one line of an order.
type OrderItem struct {
	MenuID   int64   `json:"menuId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Note     string  `json:"note,omitempty"`
}

// Order is a delivery order as returned by /admin/order and friends.
// RequesterID and WalkerID are zero when unassigned.
type Order struct {
	OrderID     int64       `json:"orderId"`
	OrderStatus Status      `json:"orderStatus"`
	RequesterID int64       `json:"requesterId"`
	WalkerID    int64       `json:"walkerId"`
	Requester   Contact     `json:"requester"`
	Walker      Contact     `json:"walker"`
	Address     string      `json:"address"`
	OrderItem   []OrderItem `json:"orderItem"`
	Canteen     string      `json:"canteen"`
	CanteenID   int64       `json:"canteenId"`
	ShopID      int64       `json:"shopId"`
	TotalPrice  float64     `json:"totalPrice"`
	ShippingFee float64     `json:"shippingFee"`
	OrderDate   Timestamp   `json:"orderDate"`
}

func (o Order) HasWalker() bool    { return o.WalkerID != 0 }
func (o Order) HasRequester() bool { return o.RequesterID != 0 }
