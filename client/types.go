package client

import (
	addresstransport "location_saver_backend/internal/addresses/transport"
	authtransport "location_saver_backend/internal/auth/transport"
)

// Wire types shared with the server.
type (
	User                 = authtransport.UserResponse
	CreateAddressRequest = addresstransport.CreateAddressRequest
	Address              = addresstransport.AddressResponse
)
