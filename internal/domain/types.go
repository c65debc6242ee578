package domain

import "time"

type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleProvider
}

// Identity is the authenticated caller as seen by the services. How it was
// produced (password login, session, token) is the transport's business.
type Identity struct {
	UserID string
	Role   Role
}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// Facility is a cold-storage site with a finite capacity in kilograms.
// AvailableCapacity is owned by the capacity ledger and must stay within
// [0, TotalCapacity] after every mutation.
type Facility struct {
	ID                string   `json:"id"`
	OwnerID           string   `json:"ownerId,omitempty"` // empty for unclaimed demo seeds
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	Distance          float64  `json:"distance"`
	Type              []string `json:"type"`
	PricePerKgPerDay  float64  `json:"pricePerKgPerDay"`
	TotalCapacity     int      `json:"totalCapacity"`
	AvailableCapacity int      `json:"availableCapacity"`
	Rating            float64  `json:"rating"`
	ReviewCount       int      `json:"reviewCount"`
	Verified          bool     `json:"verified"`
	Certifications    []string `json:"certifications"`
	ContactPhone      string   `json:"contactPhone"`
	OperatingHours    string   `json:"operatingHours"`
	MinBookingDays    int      `json:"minBookingDays"`
	Amenities         []string `json:"amenities"`
	ImageURL          string   `json:"imageUrl,omitempty"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Booking reserves a quantity of facility capacity for a duration. Price and
// total cost are resolved once at creation time and never recomputed.
type Booking struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	FacilityID       string        `json:"facilityId"`
	FacilityName     string        `json:"facilityName"`
	FacilityLocation string        `json:"facilityLocation"`
	Quantity         int           `json:"quantity"`
	Duration         int           `json:"duration"`
	StartDate        time.Time     `json:"startDate"`
	EndDate          time.Time     `json:"endDate"`
	TotalCost        float64       `json:"totalCost"`
	PricePerKgPerDay float64       `json:"pricePerKgPerDay"`
	Status           BookingStatus `json:"status"`
	StorageType      string        `json:"storageType"`
	StorageCategory  string        `json:"storageCategory"`
}

type InsightType string

const (
	InsightWeather InsightType = "weather"
	InsightMarket  InsightType = "market"
	InsightDemand  InsightType = "demand"
)

type Insight struct {
	ID        string      `json:"id"`
	Type      InsightType `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Severity  string      `json:"severity"` // info, warning, danger
	Icon      string      `json:"icon"`
	Timestamp time.Time   `json:"timestamp"`
}

type Weather struct {
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
	Suggestion  string `json:"suggestion"`
}
