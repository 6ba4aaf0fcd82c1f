package client

import (
	"context"
	"net/http"

	addresstransport "location_saver_backend/internal/addresses/transport"
)

const (
	msgSaveFailed  = "Failed to save address"
	msgFetchFailed = "Failed to fetch addresses"
)

// AddressGateway calls the address endpoints with the cached credential.
type AddressGateway struct {
	api  api
	auth *AuthGateway
}

func NewAddressGateway(baseURL string, auth *AuthGateway, httpClient *http.Client) *AddressGateway {
	return &AddressGateway{api: newAPI(baseURL, httpClient), auth: auth}
}

func (g *AddressGateway) Create(ctx context.Context, req CreateAddressRequest) (Address, error) {
	var out Address
	if err := g.api.do(ctx, http.MethodPost, "/addresses", g.auth.AuthHeader(), req, &out, msgSaveFailed); err != nil {
		return Address{}, err
	}
	return out, nil
}

// List returns the user's addresses, newest first.
func (g *AddressGateway) List(ctx context.Context) ([]Address, error) {
	var out addresstransport.ListAddressesResponse
	if err := g.api.do(ctx, http.MethodGet, "/addresses", g.auth.AuthHeader(), nil, &out, msgFetchFailed); err != nil {
		return nil, err
	}
	if out.Items == nil {
		return []Address{}, nil
	}
	return out.Items, nil
}
