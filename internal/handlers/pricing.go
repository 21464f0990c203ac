package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dmaclay/backstop/internal/audit"
	"github.com/dmaclay/backstop/internal/config"
	"github.com/dmaclay/backstop/internal/models"
	"github.com/dmaclay/backstop/payoff"
	"github.com/dmaclay/backstop/quant"
	"github.com/dmaclay/backstop/validation"
)

// PricingHandler serves the pricing, crediting and validation endpoints.
// All state is read-only after construction, so one handler serves any
// number of concurrent requests.
type PricingHandler struct {
	checker validation.Checker
	places  int32
	log     *zap.Logger
	trail   *audit.Trail
}

// NewPricingHandler creates the handler from loaded configuration.
func NewPricingHandler(cfg *config.Config, log *zap.Logger, trail *audit.Trail) *PricingHandler {
	return &PricingHandler{
		checker: cfg.Checker(),
		places:  cfg.Display.Places,
		log:     log,
		trail:   trail,
	}
}

// HealthHandler reports liveness.
func (h *PricingHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PriceHandler prices a European option, attaches the Greeks, and gates the
// result through the no-arbitrage check. A HALT verdict answers 422: the
// caller must not price a product on that number.
func (h *PricingHandler) PriceHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}

	optionType := strings.ToLower(req.OptionType)

	var (
		price float64
		err   error
	)
	switch optionType {
	case "call":
		price, err = quant.PriceCall(req.Spot, req.Strike, req.Rate, req.DividendYield, req.Volatility, req.Expiry)
	case "put":
		price, err = quant.PricePut(req.Spot, req.Strike, req.Rate, req.DividendYield, req.Volatility, req.Expiry)
	default:
		h.badRequest(w, fmt.Errorf("option_type must be \"call\" or \"put\", got %q", req.OptionType))
		return
	}
	if err != nil {
		h.badRequest(w, err)
		return
	}
	bound := NoArbitrageBound(optionType, req.Spot, req.Strike, req.Rate, req.Expiry)

	greeks, err := quant.Greeks(req.Spot, req.Strike, req.Rate, req.DividendYield, req.Volatility, req.Expiry)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	outcome := h.checker.NoArbitrage(price, bound)
	h.observe("no_arbitrage", outcome)

	resp := models.PriceResponse{
		Success:     outcome.Status != validation.Halt,
		OptionType:  optionType,
		Price:       models.Field(price, h.places),
		Greeks:      models.GreeksFrom(greeks, h.places),
		NoArbitrage: models.ValidationFrom(outcome, h.places),
	}
	status := http.StatusOK
	if outcome.Status == validation.Halt {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// CreditHandler runs one crediting-formula calculation.
func (h *PricingHandler) CreditHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}

	spec, err := BuildSpec(req)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	result := spec.Calculate(req.IndexReturn)
	writeJSON(w, http.StatusOK, models.CreditResponse{
		Success:        true,
		Variant:        string(spec.Kind()),
		IndexReturn:    models.Field(req.IndexReturn, h.places),
		CreditedReturn: models.Field(result.Credited, h.places),
		Flags:          result.Flags,
	})
}

// ParityHandler validates a call/put price pair against put-call parity.
func (h *PricingHandler) ParityHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ParityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}

	outcome := h.checker.PutCallParity(req.Call, req.Put, req.Spot, req.Strike, req.Rate, req.DividendYield, req.Expiry)
	h.observe("put_call_parity", outcome)

	status := http.StatusOK
	if outcome.Status == validation.Halt {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, models.ParityResponse{
		Success: outcome.Status != validation.Halt,
		Outcome: models.ValidationFrom(outcome, h.places),
	})
}

func (h *PricingHandler) observe(check string, out validation.Outcome) {
	if out.Status != validation.Pass {
		h.log.Warn("validation verdict",
			zap.String("check", check),
			zap.String("status", out.Status.String()),
			zap.String("message", out.Message),
		)
	}
	if h.trail == nil {
		return
	}
	if err := h.trail.Observe(check, out); err != nil {
		h.log.Error("audit trail write failed", zap.String("check", check), zap.Error(err))
	}
}

func (h *PricingHandler) badRequest(w http.ResponseWriter, err error) {
	h.log.Debug("bad request", zap.Error(err))
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: err.Error()})
}

// NoArbitrageBound returns the model-free price ceiling for a vanilla
// option: spot for a call, the discounted strike for a put. A deep-ITM put
// on a high strike legitimately exceeds spot, so spot is the wrong bound
// there.
func NoArbitrageBound(optionType string, spot, strike, rate, expiry float64) float64 {
	if optionType == "put" {
		return strike * math.Exp(-rate*expiry)
	}
	return spot
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// BuildSpec maps a credit request onto the closed payoff variant set. It is
// exported because the CLI shares the same request shape.
func BuildSpec(req models.CreditRequest) (payoff.Spec, error) {
	floor := func(def float64) float64 {
		if req.Floor != nil {
			return *req.Floor
		}
		return def
	}
	optionalCap := func() float64 {
		if req.Cap != nil {
			return *req.Cap
		}
		return payoff.Uncapped
	}

	switch payoff.Kind(req.Variant) {
	case payoff.KindCappedCall:
		if req.Cap == nil {
			return nil, missingParam(req.Variant, "cap")
		}
		return specOrErr(payoff.NewCappedCall(*req.Cap, floor(0)))

	case payoff.KindParticipation:
		if req.Participation == nil {
			return nil, missingParam(req.Variant, "participation")
		}
		return specOrErr(payoff.NewParticipation(*req.Participation, optionalCap(), floor(0)))

	case payoff.KindSpread:
		if req.Spread == nil {
			return nil, missingParam(req.Variant, "spread")
		}
		return specOrErr(payoff.NewSpread(*req.Spread, optionalCap(), floor(0)))

	case payoff.KindTrigger:
		if req.TriggerRate == nil {
			return nil, missingParam(req.Variant, "trigger_rate")
		}
		threshold := 0.0
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		return specOrErr(payoff.NewTrigger(*req.TriggerRate, threshold, floor(0)))

	case payoff.KindBuffer:
		if req.Buffer == nil || req.Cap == nil {
			return nil, missingParam(req.Variant, "buffer, cap")
		}
		return specOrErr(payoff.NewBuffer(*req.Buffer, *req.Cap))

	case payoff.KindFloor:
		if req.Floor == nil || req.Cap == nil {
			return nil, missingParam(req.Variant, "floor, cap")
		}
		return specOrErr(payoff.NewFloor(*req.Floor, *req.Cap))

	case payoff.KindBufferWithFloor:
		if req.Buffer == nil || req.Floor == nil || req.Cap == nil {
			return nil, missingParam(req.Variant, "buffer, floor, cap")
		}
		return specOrErr(payoff.NewBufferWithFloor(*req.Buffer, *req.Floor, *req.Cap))

	case payoff.KindStepRateBuffer:
		if req.StepRate == nil || req.Buffer == nil || req.SecondaryRate == nil || req.Cap == nil {
			return nil, missingParam(req.Variant, "step_rate, buffer, secondary_rate, cap")
		}
		return specOrErr(payoff.NewStepRateBuffer(*req.StepRate, *req.Buffer, *req.SecondaryRate, *req.Cap))
	}
	return nil, fmt.Errorf("unknown payoff variant %q", req.Variant)
}

func specOrErr[S payoff.Spec](spec S, err error) (payoff.Spec, error) {
	if err != nil {
		return nil, err
	}
	return spec, nil
}

func missingParam(variant, params string) error {
	return fmt.Errorf("variant %q requires parameters: %s", variant, params)
}
