package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"bookstore/pkg/freedompay"
	"bookstore/pkg/utils"
)

// PaymentGateway starts a hosted payment. *freedompay.Client satisfies it.
type PaymentGateway interface {
	InitPayment(ctx context.Context, req freedompay.InitRequest) (*freedompay.InitResponse, error)
}

func validatePaging(page, limit int) error {
	if page < 1 {
		return utils.ErrInvalidPage
	}
	if limit < 1 || limit > 100 {
		return utils.ErrInvalidPageSize
	}
	return nil
}

func jsonRaw(v any) datatypes.JSON {
	b, _ := json.Marshal(v)
	return b
}
