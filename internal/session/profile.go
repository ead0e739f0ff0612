package session

import "github.com/example/catalog-flipbook/internal/readmodel"

// mockProfile builds the profile attached to every login; the remote API
// only answers with a token.
func mockProfile(username string) *readmodel.Profile {
	return &readmodel.Profile{
		ID:       1,
		Username: username,
		Email:    username,
		Name:     readmodel.UserName{Firstname: "Usuario", Lastname: "Demo"},
		Phone:    "300-123-4567",
		Address: readmodel.Address{
			City:        "Barranquilla",
			Street:      "Calle Ejemplo",
			Number:      123,
			Zipcode:     "080001",
			Geolocation: readmodel.Geolocation{Lat: "10.9639", Long: "-74.7964"},
		},
	}
}
