package httpgin

// ErrorResponse is the uniform error envelope returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type RegisterFacilityRequest struct {
	Name             string   `json:"name" binding:"required"`
	Location         string   `json:"location" binding:"required"`
	Distance         float64  `json:"distance"`
	Type             []string `json:"type"`
	PricePerKgPerDay float64  `json:"pricePerKgPerDay" binding:"required"`
	TotalCapacity    int      `json:"totalCapacity" binding:"required,gt=0"`
	Certifications   []string `json:"certifications"`
	ContactPhone     string   `json:"contactPhone"`
	OperatingHours   string   `json:"operatingHours"`
	MinBookingDays   int      `json:"minBookingDays"`
	Amenities        []string `json:"amenities"`
	ImageURL         string   `json:"imageUrl"`
}

// UpdateFacilityRequest uses pointers so absent fields are left untouched.
type UpdateFacilityRequest struct {
	Name              *string  `json:"name"`
	Location          *string  `json:"location"`
	PricePerKgPerDay  *float64 `json:"pricePerKgPerDay"`
	TotalCapacity     *int     `json:"totalCapacity"`
	AvailableCapacity *int     `json:"availableCapacity"`
	MinBookingDays    *int     `json:"minBookingDays"`
}

type CreateBookingRequest struct {
	FacilityID      string `json:"facilityId" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	Duration        int    `json:"duration" binding:"required,gt=0"`
	StorageCategory string `json:"storageCategory"`
	StorageType     string `json:"storageType"`
}

type SetBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
