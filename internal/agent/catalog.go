package agent

import "github.com/tmarkell/quotebot/internal/llm"

// Tool names exposed to the completion backend. The schemas below and the
// Dispatch switch must stay consistent; both live in this package for that
// reason.
const (
	ToolVehicleMakes   = "get_vehicle_makes"
	ToolVehicleModels  = "get_vehicle_models"
	ToolPricedQuote    = "get_priced_quote"
	ToolCreateContract = "create_contract"
)

// Catalog returns the tool declarations sent with every completion request.
func (d *Dispatcher) Catalog() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        ToolVehicleMakes,
			Description: "Get all available vehicle makes for a specific year. Use this when the customer provides a year. Include the state when known so pricing is scoped correctly.",
			Parameters: `{
				"type": "object",
				"properties": {
					"year": {"type": "string", "description": "The vehicle year, e.g. '2023'"},
					"state": {"type": "string", "description": "Two-letter US state code, e.g. 'CA'"}
				},
				"required": ["year"]
			}`,
		},
		{
			Name:        ToolVehicleModels,
			Description: "Get all available models for a specific vehicle make and year. Use this after the customer provides both year and make.",
			Parameters: `{
				"type": "object",
				"properties": {
					"year": {"type": "string", "description": "The vehicle year, e.g. '2023'"},
					"make": {"type": "string", "description": "The vehicle make, e.g. 'Honda'"},
					"state": {"type": "string", "description": "Two-letter US state code, e.g. 'CA'"}
				},
				"required": ["year", "make"]
			}`,
		},
		{
			Name:        ToolPricedQuote,
			Description: "Get a priced protection plan for the customer's vehicle. Requires the full vehicle selection and the registration state.",
			Parameters: `{
				"type": "object",
				"properties": {
					"state": {"type": "string", "description": "Two-letter US state code"},
					"year": {"type": "string"},
					"make": {"type": "string"},
					"model": {"type": "string"},
					"trim": {"type": "string"},
					"class": {"type": "string", "description": "Vehicle rate class"},
					"vin_pattern": {"type": "string", "description": "VIN squish pattern for the vehicle"},
					"odometer": {"type": "integer", "description": "Approximate odometer reading in miles"}
				},
				"required": ["state", "year", "make", "model", "class", "vin_pattern", "odometer"]
			}`,
		},
		{
			Name:        ToolCreateContract,
			Description: "Finalize the purchase: submit the quote, process the deposit payment, and save the contract. Only call after the customer has seen a priced quote and agreed to buy.",
			Parameters: `{
				"type": "object",
				"properties": {
					"first_name": {"type": "string"},
					"last_name": {"type": "string"},
					"email": {"type": "string"},
					"phone": {"type": "string"},
					"address": {"type": "string"},
					"city": {"type": "string"},
					"state": {"type": "string"},
					"zip": {"type": "string"},
					"vin": {"type": "string", "description": "Full 17-character vehicle identification number"},
					"card_number": {"type": "string"},
					"card_expiry": {"type": "string", "description": "MM/YY"},
					"card_cvv": {"type": "string"}
				},
				"required": ["first_name", "last_name", "email", "phone", "address", "city", "state", "zip", "vin", "card_number", "card_expiry", "card_cvv"]
			}`,
		},
	}
}
