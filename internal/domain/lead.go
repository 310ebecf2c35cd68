package domain

// LeadUser — контакт пользователя (PII; хранится только в зашифрованном виде).
type LeadUser struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	PreferredTime string `json:"preferredTime,omitempty"`
}

// LeadRequest — аргументы инструмента submit-lead.
type LeadRequest struct {
	VehicleID string   `json:"vehicleId"`
	VIN       string   `json:"vin"`
	DealerID  string   `json:"dealerId,omitempty"`
	User      LeadUser `json:"user"`
	Consent   bool     `json:"consent"`
}

// LeadPayload — то, что шифруется и уходит дилеру.
type LeadPayload struct {
	User      LeadUser `json:"user"`
	VehicleID string   `json:"vehicleId"`
	DealerID  string   `json:"dealerId,omitempty"`
	VIN       string   `json:"vin,omitempty"`
}

// LeadRecord — строка хранилища заявок. CreatedAt — миллисекунды Unix.
type LeadRecord struct {
	ID         string
	DealerID   string
	VehicleID  string
	VIN        string
	EncPayload string
	Consent    bool
	CreatedAt  int64
	IPAddress  string
}

// ForwardedLead — формат передачи заявки в дашборд (HTTP и Kafka).
type ForwardedLead struct {
	LeadID     string `json:"leadId"`
	DealerID   string `json:"dealerId,omitempty"`
	VehicleID  string `json:"vehicleId"`
	VIN        string `json:"vin,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	EncPayload string `json:"encPayload"`
}

// LeadReceipt — ответ на успешную заявку.
type LeadReceipt struct {
	LeadID    string `json:"leadId"`
	VehicleID string `json:"vehicleId"`
	DealerID  string `json:"dealerId,omitempty"`
	VIN       string `json:"vin"`
}

// DashboardLead — заявка в выдаче дашборда; User заполнен, если payload удалось расшифровать.
type DashboardLead struct {
	ID        string    `json:"id"`
	DealerID  string    `json:"dealerId,omitempty"`
	VehicleID string    `json:"vehicleId"`
	VIN       string    `json:"vin,omitempty"`
	CreatedAt int64     `json:"createdAt"`
	User      *LeadUser `json:"user,omitempty"`
}

// Record — превращает входящую заявку в строку хранилища дашборда.
func (l ForwardedLead) Record() LeadRecord {
	return LeadRecord{
		ID:         l.LeadID,
		DealerID:   l.DealerID,
		VehicleID:  l.VehicleID,
		VIN:        l.VIN,
		EncPayload: l.EncPayload,
		Consent:    true,
		CreatedAt:  l.CreatedAt,
	}
}
