package marketcheck

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

// searchResponse — ответ /v2/search/car/active (только используемые поля).
// Объявления разбираются по одному: кривое объявление не роняет весь ответ.
type searchResponse struct {
	NumFound flexNumber         `json:"num_found"`
	Listings *[]json.RawMessage `json:"listings"`
}

type listing struct {
	ID     flexString      `json:"id"`
	Price  flexNumber      `json:"price"`
	Miles  *flexNumber     `json:"miles"`
	VIN    flexString      `json:"vin"`
	Media  lenient[media]  `json:"media"`
	Build  lenient[build]  `json:"build"`
	Dealer lenient[dealer] `json:"dealer"`
}

type media struct {
	PhotoLinks lenient[[]flexString] `json:"photo_links"`
}

type build struct {
	Year         flexNumber `json:"year"`
	Make         flexString `json:"make"`
	Model        flexString `json:"model"`
	Trim         flexString `json:"trim"`
	Engine       flexString `json:"engine"`
	Transmission flexString `json:"transmission"`
	Drivetrain   flexString `json:"drivetrain"`
}

type dealer struct {
	Name      flexString  `json:"name"`
	Street    flexString  `json:"street"`
	City      flexString  `json:"city"`
	State     flexString  `json:"state"`
	Zip       flexString  `json:"zip"`
	Latitude  *flexNumber `json:"latitude"`
	Longitude *flexNumber `json:"longitude"`
}

// decodeListing — false, если элемент listings не объект (в том числе null).
func decodeListing(raw json.RawMessage) (listing, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return listing{}, false
	}
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return listing{}, false
	}
	return l, true
}

// lenient — вложенное значение; неожиданная форма даёт нулевое значение и Set=false.
type lenient[T any] struct {
	V   T
	Set bool
}

func (l *lenient[T]) UnmarshalJSON(data []byte) error {
	var v T
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) || json.Unmarshal(data, &v) != nil {
		*l = lenient[T]{}
		return nil
	}
	*l = lenient[T]{V: v, Set: true}
	return nil
}

// flexString — строка; число превращается в свой текст, прочие типы в "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = ""
	if len(data) == 0 {
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var v string
		if err := json.Unmarshal(data, &v); err == nil {
			*s = flexString(v)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		*s = flexString(data)
	}
	return nil
}

// flexNumber — число, которое апстрим отдаёт то числом, то строкой.
// Пустая или нечисловая строка даёт 0, а не ошибку разбора всего ответа.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(f)
	return nil
}

// toVehicle — нормализация объявления; отсутствующие поля получают нулевые значения.
// Фото: апстрим не помечает основное изображение, берём первую ссылку.
func (l *listing) toVehicle() domain.Vehicle {
	d := l.Dealer.V
	v := domain.Vehicle{
		ID:    string(l.ID),
		Price: float64(l.Price),
		VIN:   string(l.VIN),
		Dealer: domain.Dealer{
			Name:    string(d.Name),
			Address: joinNonEmpty(", ", string(d.Street), string(d.City), string(d.State), string(d.Zip)),
		},
	}
	if l.Miles != nil {
		m := int(*l.Miles)
		v.Mileage = &m
	}
	for _, link := range l.Media.V.PhotoLinks.V {
		if link != "" {
			v.ImageURL = string(link)
			break
		}
	}
	if b := l.Build.V; l.Build.Set {
		v.Year = int(b.Year)
		v.Make = string(b.Make)
		v.Model = string(b.Model)
		v.Features = nonEmpty(string(b.Trim), string(b.Engine), string(b.Transmission), string(b.Drivetrain))
	}
	if d.Latitude != nil && *d.Latitude != 0 {
		lat := float64(*d.Latitude)
		v.Dealer.Lat = &lat
	}
	if d.Longitude != nil && *d.Longitude != 0 {
		lng := float64(*d.Longitude)
		v.Dealer.Lng = &lng
	}
	return v
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(nonEmpty(parts...), sep)
}
