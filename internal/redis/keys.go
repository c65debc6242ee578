package redisx

import "fmt"

const ns = "sangraha:v1"

func KeyFacility(facilityID string) string {
	return fmt.Sprintf("%s:facility:%s", ns, facilityID)
}

func KeyFacilityList() string {
	return ns + ":facilities:all"
}

func KeyInsights() string {
	return ns + ":insights"
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelFacilitiesChanged() string {
	return ns + ":facilities:changed"
}
