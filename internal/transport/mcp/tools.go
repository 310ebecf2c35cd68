package mcp

// Имена инструментов.
const (
	ToolSearchVehicles = "search-vehicles"
	ToolSubmitLead     = "submit-lead"
	ToolPingUI         = "ping-ui"
	ToolPingMicroUI    = "ping-micro-ui"
)

// Tool — описание инструмента для tools/list.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema Schema `json:"inputSchema"`
}

// Schema — подмножество JSON Schema, которого хватает для аргументов инструментов.
type Schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Pattern     string            `json:"pattern,omitempty"`
	Format      string            `json:"format,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

func emptyObject() Schema {
	return Schema{Type: "object", Properties: map[string]Schema{}, Required: []string{}}
}

// Tools — инструменты сервера в порядке объявления.
func Tools() []Tool {
	return []Tool{
		{
			Name:        ToolPingUI,
			Description: "Test UI component loading and ChatGPT bridge connectivity",
			InputSchema: emptyObject(),
		},
		{
			Name:        ToolPingMicroUI,
			Description: "Ultra-minimal UI test with immediate ui:ready emission",
			InputSchema: emptyObject(),
		},
		{
			Name:        ToolSearchVehicles,
			Description: "Search for vehicles based on location, price, make, model, and other criteria",
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Schema{
					"location":    {Type: "string", Description: `Location to search for vehicles (e.g., "Seattle, WA", "New York, NY")`},
					"condition":   {Type: "string", Enum: []string{"new", "used"}, Description: "Vehicle condition (new or used)"},
					"maxPrice":    {Type: "number", Description: "Maximum price in USD"},
					"make":        {Type: "string", Description: `Vehicle make (e.g., "Toyota", "Honda")`},
					"model":       {Type: "string", Description: `Vehicle model (e.g., "Camry", "CR-V")`},
					"radiusMiles": {Type: "number", Description: "Search radius in miles (default: 50)"},
				},
				Required: []string{"location", "condition"},
			},
		},
		{
			Name:        ToolSubmitLead,
			Description: "Submit a lead for a vehicle test drive or quote request",
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Schema{
					"vehicleId": {Type: "string", Description: "ID of the vehicle"},
					"vin":       {Type: "string", Pattern: "^[A-HJ-NPR-Z0-9]{11,17}$", Description: "Vehicle Identification Number (VIN)"},
					"dealerId":  {Type: "string", Description: "ID of the dealer (optional)"},
					"user": {
						Type: "object",
						Properties: map[string]Schema{
							"name":          {Type: "string", Description: "Full name"},
							"email":         {Type: "string", Format: "email", Description: "Email address"},
							"phone":         {Type: "string", Description: "Phone number (optional)"},
							"preferredTime": {Type: "string", Description: "Preferred contact time (optional)"},
						},
						Required: []string{"name", "email"},
					},
					"consent": {Type: "boolean", Description: "User consent to be contacted (must be true)"},
				},
				Required: []string{"vehicleId", "vin", "user", "consent"},
			},
		},
	}
}
