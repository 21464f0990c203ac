package models

import (
	"github.com/shopspring/decimal"

	"github.com/dmaclay/backstop/payoff"
	"github.com/dmaclay/backstop/quant"
	"github.com/dmaclay/backstop/validation"
)

// FieldValue carries a result with both raw data and a rounded display string
type FieldValue struct {
	Raw     float64 `json:"raw"`     // for downstream math: 0.0618512...
	Display string  `json:"display"` // for UI/CSV: "0.061851"
}

// Field rounds v for display without touching the raw value.
func Field(v float64, places int32) FieldValue {
	return FieldValue{
		Raw:     v,
		Display: decimal.NewFromFloat(v).Round(places).String(),
	}
}

// PriceRequest represents a request for a European option price
type PriceRequest struct {
	OptionType    string  `json:"option_type"` // "call" or "put"
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	Rate          float64 `json:"rate"`
	DividendYield float64 `json:"dividend_yield"`
	Volatility    float64 `json:"volatility"`
	Expiry        float64 `json:"expiry"` // years
}

// GreeksPayload mirrors quant.BSGreeks with display formatting
type GreeksPayload struct {
	Delta FieldValue `json:"delta"`
	Gamma FieldValue `json:"gamma"`
	Vega  FieldValue `json:"vega"`
	Theta FieldValue `json:"theta"`
	Rho   FieldValue `json:"rho"`
}

// GreeksFrom formats a Greeks record for the API response.
func GreeksFrom(g quant.BSGreeks, places int32) GreeksPayload {
	return GreeksPayload{
		Delta: Field(g.Delta, places),
		Gamma: Field(g.Gamma, places),
		Vega:  Field(g.Vega, places),
		Theta: Field(g.Theta, places),
		Rho:   Field(g.Rho, places),
	}
}

// ValidationPayload mirrors a validation.Outcome with display formatting
type ValidationPayload struct {
	Status   string     `json:"status"`
	Message  string     `json:"message"`
	Measured FieldValue `json:"measured_value"`
	Bound    FieldValue `json:"bound"`
}

// ValidationFrom formats a validation outcome for the API response.
func ValidationFrom(out validation.Outcome, places int32) ValidationPayload {
	return ValidationPayload{
		Status:   out.Status.String(),
		Message:  out.Message,
		Measured: Field(out.Measured, places),
		Bound:    Field(out.Bound, places),
	}
}

// PriceResponse represents the response for a pricing request
type PriceResponse struct {
	Success     bool              `json:"success"`
	OptionType  string            `json:"option_type"`
	Price       FieldValue        `json:"price"`
	Greeks      GreeksPayload     `json:"greeks"`
	NoArbitrage ValidationPayload `json:"no_arbitrage"`
}

// CreditRequest represents a crediting calculation for one payoff variant.
// Parameter fields are pointers so the handler can tell "absent" from zero.
type CreditRequest struct {
	Variant     string  `json:"variant"`
	IndexReturn float64 `json:"index_return"`

	Cap           *float64 `json:"cap,omitempty"`
	Floor         *float64 `json:"floor,omitempty"`
	Participation *float64 `json:"participation,omitempty"`
	Spread        *float64 `json:"spread,omitempty"`
	TriggerRate   *float64 `json:"trigger_rate,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Buffer        *float64 `json:"buffer,omitempty"`
	StepRate      *float64 `json:"step_rate,omitempty"`
	SecondaryRate *float64 `json:"secondary_rate,omitempty"`
}

// CreditResponse represents a crediting calculation result
type CreditResponse struct {
	Success        bool          `json:"success"`
	Variant        string        `json:"variant"`
	IndexReturn    FieldValue    `json:"index_return"`
	CreditedReturn FieldValue    `json:"credited_return"`
	Flags          []payoff.Flag `json:"flags,omitempty"`
}

// ParityRequest represents a put-call parity validation request
type ParityRequest struct {
	Call          float64 `json:"call"`
	Put           float64 `json:"put"`
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	Rate          float64 `json:"rate"`
	DividendYield float64 `json:"dividend_yield"`
	Expiry        float64 `json:"expiry"`
}

// ParityResponse represents a put-call parity validation result
type ParityResponse struct {
	Success bool              `json:"success"`
	Outcome ValidationPayload `json:"outcome"`
}

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
