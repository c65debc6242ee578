package memory

import (
	"context"
	"time"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
)

// Seed loads the demo catalog: five unclaimed Maharashtra facilities and a
// few advisory insights. Handy for tests and local runs without a database.
func Seed(ctx context.Context, s *Store) error {
	facilities := []domain.Facility{
		{
			ID: "1", Name: "Sahyadri Cold Storage", Location: "Nashik, Maharashtra",
			Distance: 3.2, Type: []string{"Cold", "Frozen"}, PricePerKgPerDay: 0.85,
			TotalCapacity: 50000, AvailableCapacity: 32000, Rating: 4.6, ReviewCount: 128,
			Verified:       true,
			Certifications: []string{"FSSAI Certified", "ISO 22000", "Govt Verified"},
			ContactPhone:   "+91 98765 43210", OperatingHours: "6:00 AM - 10:00 PM",
			MinBookingDays: 1,
			Amenities:      []string{"24/7 CCTV", "Loading Dock", "Weighbridge", "Insurance"},
		},
		{
			ID: "2", Name: "KrishiSheetala Hub", Location: "Pune, Maharashtra",
			Distance: 5.8, Type: []string{"Cold", "Dairy"}, PricePerKgPerDay: 0.72,
			TotalCapacity: 35000, AvailableCapacity: 12000, Rating: 4.3, ReviewCount: 89,
			Verified:       true,
			Certifications: []string{"FSSAI Certified", "Govt Verified"},
			ContactPhone:   "+91 98765 12345", OperatingHours: "5:00 AM - 11:00 PM",
			MinBookingDays: 2,
			Amenities:      []string{"24/7 CCTV", "Loading Dock", "Power Backup"},
		},
		{
			ID: "3", Name: "AgroFrost Centre", Location: "Ahmednagar, Maharashtra",
			Distance: 8.5, Type: []string{"Cold"}, PricePerKgPerDay: 0.55,
			TotalCapacity: 20000, AvailableCapacity: 2500, Rating: 3.9, ReviewCount: 42,
			Certifications: []string{"FSSAI Certified"},
			ContactPhone:   "+91 97654 32109", OperatingHours: "7:00 AM - 9:00 PM",
			MinBookingDays: 3,
			Amenities:      []string{"CCTV", "Loading Dock"},
		},
		{
			ID: "4", Name: "Nandi Cold Chain", Location: "Solapur, Maharashtra",
			Distance: 12.3, Type: []string{"Frozen", "Dairy"}, PricePerKgPerDay: 0.95,
			TotalCapacity: 45000, AvailableCapacity: 28000, Rating: 4.8, ReviewCount: 215,
			Verified:       true,
			Certifications: []string{"FSSAI Certified", "ISO 22000", "HACCP", "Govt Verified"},
			ContactPhone:   "+91 99876 54321", OperatingHours: "24 Hours",
			MinBookingDays: 1,
			Amenities:      []string{"24/7 CCTV", "Loading Dock", "Weighbridge", "Insurance", "Power Backup", "Forklift"},
		},
		{
			ID: "5", Name: "Kisan Seva Storage", Location: "Satara, Maharashtra",
			Distance: 15.0, Type: []string{"Cold"}, PricePerKgPerDay: 0.48,
			TotalCapacity: 15000, AvailableCapacity: 8500, Rating: 4.1, ReviewCount: 67,
			Verified:       true,
			Certifications: []string{"FSSAI Certified", "Govt Verified"},
			ContactPhone:   "+91 98123 45678", OperatingHours: "6:00 AM - 9:00 PM",
			MinBookingDays: 2,
			Amenities:      []string{"CCTV", "Loading Dock", "Weighbridge"},
		},
	}

	for i := range facilities {
		if err := s.Facilities().Create(ctx, &facilities[i]); err != nil {
			return err
		}
	}

	now := time.Now()
	insights := []domain.Insight{
		{
			ID: "i1", Type: domain.InsightWeather, Title: "Heatwave Alert",
			Message:  "Temperature expected to reach 42 C this week. Store perishables immediately to avoid spoilage losses.",
			Severity: "danger", Icon: "thermometer", Timestamp: now,
		},
		{
			ID: "i2", Type: domain.InsightMarket, Title: "Tomato Prices Rising",
			Message:  "Tomato prices up 18% in Nashik APMC. Consider storing for 3-5 more days for better returns.",
			Severity: "info", Icon: "trending-up", Timestamp: now.Add(-time.Minute),
		},
		{
			ID: "i3", Type: domain.InsightDemand, Title: "High Storage Demand",
			Message:  "Cold storage utilization at 85% in your district. Book early to secure capacity.",
			Severity: "warning", Icon: "alert-circle", Timestamp: now.Add(-2 * time.Minute),
		},
	}

	for i := range insights {
		if err := s.Insights().Create(ctx, &insights[i]); err != nil {
			return err
		}
	}

	return nil
}
