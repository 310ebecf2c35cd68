// Package catalog — встроенный демонстрационный каталог машин для режима
// деградации поиска (SEARCH_FALLBACK=static).
package catalog

import (
	"strings"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sample() []domain.Vehicle {
	return []domain.Vehicle{
		{
			ID: "1", Year: 2022, Make: "Toyota", Model: "Camry", Price: 28500,
			Mileage:  intPtr(15000),
			ImageURL: "https://images.unsplash.com/photo-1621007947382-bb3c3994e3fb?w=400",
			Features: []string{"Bluetooth", "Backup Camera", "Lane Assist"},
			VIN:      "1HGCM82633A004352",
			Dealer: domain.Dealer{
				Name: "Seattle Auto Center", Address: "123 Main St, Seattle, WA 98101",
				Lat: floatPtr(47.6062), Lng: floatPtr(-122.3321),
			},
		},
		{
			ID: "2", Year: 2021, Make: "Honda", Model: "CR-V", Price: 32000,
			Mileage:  intPtr(22000),
			ImageURL: "https://images.unsplash.com/photo-1606664515524-ed2f786a0bd6?w=400",
			Features: []string{"AWD", "Sunroof", "Heated Seats"},
			VIN:      "2HGCM82633A004353",
			Dealer: domain.Dealer{
				Name: "Bellevue Motors", Address: "456 Auto Way, Bellevue, WA 98004",
				Lat: floatPtr(47.6101), Lng: floatPtr(-122.2015),
			},
		},
		{
			ID: "3", Year: 2023, Make: "Subaru", Model: "Outback", Price: 35000,
			Mileage:  intPtr(5000),
			ImageURL: "https://images.unsplash.com/photo-1618843479313-40f8afb4b4d8?w=400",
			Features: []string{"AWD", "Eyesight Safety", "Apple CarPlay"},
			VIN:      "3HGCM82633A004354",
			Dealer: domain.Dealer{
				Name: "Tacoma Auto Group", Address: "789 Car Blvd, Tacoma, WA 98402",
				Lat: floatPtr(47.2529), Lng: floatPtr(-122.4443),
			},
		},
	}
}

// Search — отфильтровать каталог по параметрам. Локация и радиус не учитываются;
// «новой» считается машина без пробега.
func Search(p domain.SearchParams) domain.SearchResult {
	out := make([]domain.Vehicle, 0, 3)
	for _, v := range sample() {
		if matches(v, p) {
			out = append(out, v)
		}
	}
	return domain.SearchResult{Vehicles: out, TotalCount: len(out)}
}

func matches(v domain.Vehicle, p domain.SearchParams) bool {
	if p.MaxPrice != nil && v.Price > *p.MaxPrice {
		return false
	}
	if p.Make != nil && !containsFold(v.Make, *p.Make) {
		return false
	}
	if p.Model != nil && !containsFold(v.Model, *p.Model) {
		return false
	}
	used := v.Mileage != nil && *v.Mileage > 0
	switch p.Condition {
	case domain.ConditionNew:
		return !used
	case domain.ConditionUsed:
		return used
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
