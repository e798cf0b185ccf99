package db_models

// User is owned by the account service; this service only reads contact
// details for the payment page.
type User struct {
	BaseModel
	Name  string
	Email string `gorm:"unique"`
	Phone string
	Role  string `gorm:"size:16;default:user"`
}
