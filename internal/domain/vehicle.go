package domain

// Condition — состояние автомобиля в поисковом запросе.
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// MaxResults — верхняя граница количества машин в одном результате поиска.
const MaxResults = 20

// SearchParams — параметры поиска. Необязательные поля — указатели:
// nil означает «не задано», что важно для ключа кэша.
type SearchParams struct {
	Location    string    `json:"location"`
	Condition   Condition `json:"condition"`
	MaxPrice    *float64  `json:"maxPrice,omitempty"`
	Make        *string   `json:"make,omitempty"`
	Model       *string   `json:"model,omitempty"`
	RadiusMiles *float64  `json:"radiusMiles,omitempty"`
}

// Dealer — дилер, у которого выставлена машина.
type Dealer struct {
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Vehicle — нормализованное объявление.
type Vehicle struct {
	ID       string   `json:"id"`
	Year     int      `json:"year"`
	Make     string   `json:"make"`
	Model    string   `json:"model"`
	Price    float64  `json:"price"`
	Mileage  *int     `json:"mileage,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Features []string `json:"features,omitempty"`
	VIN      string   `json:"vin,omitempty"`
	Dealer   Dealer   `json:"dealer"`
}

// SearchResult — результат поиска; в кэше хранится именно он.
type SearchResult struct {
	Vehicles   []Vehicle `json:"vehicles"`
	TotalCount int       `json:"totalCount"`
}

// Clone — глубокая копия результата, чтобы кэш и вызывающий код не делили срезы.
func (r SearchResult) Clone() SearchResult {
	out := SearchResult{TotalCount: r.TotalCount}
	if r.Vehicles == nil {
		return out
	}
	out.Vehicles = make([]Vehicle, len(r.Vehicles))
	for i := range r.Vehicles {
		out.Vehicles[i] = r.Vehicles[i].clone()
	}
	return out
}

func (v Vehicle) clone() Vehicle {
	c := v
	if v.Mileage != nil {
		m := *v.Mileage
		c.Mileage = &m
	}
	if v.Features != nil {
		c.Features = append([]string(nil), v.Features...)
	}
	if v.Dealer.Lat != nil {
		lat := *v.Dealer.Lat
		c.Dealer.Lat = &lat
	}
	if v.Dealer.Lng != nil {
		lng := *v.Dealer.Lng
		c.Dealer.Lng = &lng
	}
	return c
}

// Source — откуда получен результат поиска.
type Source string

const (
	SourceCache    Source = "cache"
	SourceUpstream Source = "upstream"
	SourceFallback Source = "fallback"
)

// SearchOutcome — результат поиска вместе с его источником.
type SearchOutcome struct {
	Result SearchResult
	Source Source
}
