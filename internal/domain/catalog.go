package domain

type Country struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Airport struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	City      string `json:"city"`
	CountryID int64  `json:"country_id"`
}

type Airline struct {
	ID            int64  `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	HomeAirportID *int64 `json:"home_airport_id,omitempty"`
}

type Airplane struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	Model     string     `json:"model"`
	AirlineID int64      `json:"airline_id"`
	Seats     ClassSeats `json:"seats"`
}
