package models

// Walker is a courier account.
type Walker struct {
	WalkerID    int64     `json:"walkerId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Verified    bool      `json:"verified"`
	RegisterAt  Timestamp `json:"registerAt"`
}

// Requester is a customer account.
type Requester struct {
	RequesterID int64     `json:"requesterId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	RegisterAt  Timestamp `json:"registerAt"`
}

// VerificationCandidate is a walker waiting for admin approval.
type VerificationCandidate struct {
	WalkerID        int64     `json:"walkerId"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phoneNumber"`
	BankAccountName string    `json:"bankAccountName"`
	BankAccountNo   string    `json:"bankAccountNo"`
	ProfilePicture  string    `json:"profilePicture"`
	RegisterAt      Timestamp `json:"registerAt"`
}

// Decision is the body of POST /admin/verify.
type Decision struct {
	WalkerID int64 `json:"walkerId"`
	Status   bool  `json:"status"`
}

// Credentials is the body of POST /admin/login.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the response of POST /admin/login.
type LoginResult struct {
	Token string `json:"token"`
}

// Email is the body of POST /admin/send-email.
type Email struct {
	Email   string `json:"email"   validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}
