package db_models

import "time"

// Cart lives in Redis under cart:user:<id>, not in Postgres.
type Cart struct {
	UserID     string    `json:"user_id"`
	ProductIDs []string  `json:"product_ids"`
	UpdatedAt  time.Time `json:"updated_at"`
}
