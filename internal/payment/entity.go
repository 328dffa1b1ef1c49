package payment

// SessionRequest is what the storefront asks the gateway to charge.
type SessionRequest struct {
	OrderCode     string
	GrossAmount   int64
	CustomerID    string
	CustomerEmail string
	ItemID        string
	ItemName      string
}

// Session is the hosted payment page issued for one order code.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Notification is the asynchronous payment outcome posted by the gateway.
type Notification struct {
	OrderCode   string `json:"order_code" binding:"required"`
	Outcome     string `json:"outcome" binding:"required"`
	GrossAmount int64  `json:"gross_amount"`
	Signature   string `json:"signature" binding:"required"`
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type customerDetails struct {
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type itemDetails struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type snapRequest struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	CustomerDetails    customerDetails    `json:"customer_details"`
	ItemDetails        []itemDetails      `json:"item_details"`
}

type snapErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}
