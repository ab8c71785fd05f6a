package model

// Customer is a person who places Orders.
// Identity is the surrogate ID only; no other field is unique.
type Customer struct {
	Name  string `gorm:"column:name"  json:"name"`
	Email string `gorm:"column:email" json:"email"`
	Phone string `gorm:"column:phone" json:"phone"`
	ID    int64  `gorm:"primaryKey"   json:"id"`
}
