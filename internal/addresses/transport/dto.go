package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateAddressRequest is the body of POST /api/v1/addresses. ID is optional;
// clients that generated one locally send it so a retry stays idempotent.
type CreateAddressRequest struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	FullAddress     string     `json:"fullAddress" validate:"required,max=500"`
	Latitude        *float64   `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude       *float64   `json:"longitude" validate:"required,gte=-180,lte=180"`
	HouseNumber     string     `json:"houseNumber" validate:"required,max=100"`
	ApartmentOrRoad string     `json:"apartmentOrRoad" validate:"required,max=200"`
	Category        string     `json:"category" validate:"required,addresscategory"`
}

type AddressResponse struct {
	ID              uuid.UUID `json:"id"`
	FullAddress     string    `json:"fullAddress"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	HouseNumber     string    `json:"houseNumber"`
	ApartmentOrRoad string    `json:"apartmentOrRoad"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ListAddressesResponse struct {
	Items []AddressResponse `json:"items"`
	Total int               `json:"total"`
}
