package models

// Role identifies a chat participant.
type Role string

const (
	RoleRequester Role = "requester"
	RoleWalker    Role = "walker"
	RoleAdmin     Role = "admin"
)

// ChatEntry is one open conversation as listed by /admin/chat. Requester
// entries carry requesterId, walker entries walkerId.
type ChatEntry struct {
	RequesterID int64     `json:"requesterId,omitempty"`
	WalkerID    int64     `json:"walkerId,omitempty"`
	OrderID     int64     `json:"orderId"`
	Username    string    `json:"username"`
	Message     string    `json:"message"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// ChatList is the response of /admin/chat.
type ChatList struct {
	Requester []ChatEntry `json:"requester"`
	Walker    []ChatEntry `json:"walker"`
}

// SupportRequest is a conversation from either population, tagged with its
// role and a normalized user id.
type SupportRequest struct {
	Role     Role      `json:"role"`
	UserID   int64     `json:"userId"`
	OrderID  int64     `json:"orderId"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
	At       Timestamp `json:"createdAt"`
}

// ChatMessage is one transcript line.
type ChatMessage struct {
	OrderID    int64  `json:"orderId"`
	Message    string `json:"message"`
	FromUser   string `json:"fromUser"`
	Role       Role   `json:"role"`
	TargetRole Role   `json:"targetRole"`
}

// JoinRequest scopes a chat connection.
type JoinRequest struct {
	UserID  int64 `json:"userId"`
	Role    Role  `json:"role"`
	OrderID int64 `json:"orderId"`
}
