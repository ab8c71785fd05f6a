package model

// DateLayout is the text form of Order.Date.
const DateLayout = "2006-01-02"

// Order is a purchase linked to a Customer through CustomerID.
// CustomerID may name a customer that no longer exists.
type Order struct {
	Product    string  `gorm:"column:product"     json:"product"`
	Date       string  `gorm:"column:date"        json:"date"`
	ID         int64   `gorm:"primaryKey"         json:"id"`
	CustomerID int64   `gorm:"column:customer_id" json:"customer_id"`
	Amount     float64 `gorm:"column:amount"      json:"amount"`
}

// OrderWithCustomer is one row of the orders-customers join.
type OrderWithCustomer struct {
	Product       string  `json:"product"`
	Date          string  `json:"date"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	ID            int64   `json:"id"`
	CustomerID    int64   `json:"customer_id"`
	Amount        float64 `json:"amount"`
}
