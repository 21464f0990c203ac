// backstopctl runs the pricing core from the command line, printing the same
// JSON payloads the HTTP API serves. A HALT verdict exits nonzero so shell
// pipelines can gate on it.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmaclay/backstop/internal/config"
	"github.com/dmaclay/backstop/internal/handlers"
	"github.com/dmaclay/backstop/internal/models"
	"github.com/dmaclay/backstop/quant"
	"github.com/dmaclay/backstop/validation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backstopctl",
		Short:         "Deterministic pricing and crediting for indexed-annuity products",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPriceCmd(), newCreditCmd(), newParityCmd())
	return root
}

type priceFlags struct {
	optionType    string
	spot          float64
	strike        float64
	rate          float64
	dividendYield float64
	volatility    float64
	expiry        float64
}

func newPriceCmd() *cobra.Command {
	var f priceFlags
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a European option and report its Greeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			checker := cfg.Checker()

			var (
				price float64
				err   error
			)
			switch f.optionType {
			case "call":
				price, err = quant.PriceCall(f.spot, f.strike, f.rate, f.dividendYield, f.volatility, f.expiry)
			case "put":
				price, err = quant.PricePut(f.spot, f.strike, f.rate, f.dividendYield, f.volatility, f.expiry)
			default:
				return fmt.Errorf("--type must be call or put, got %q", f.optionType)
			}
			if err != nil {
				return err
			}

			greeks, err := quant.Greeks(f.spot, f.strike, f.rate, f.dividendYield, f.volatility, f.expiry)
			if err != nil {
				return err
			}

			bound := handlers.NoArbitrageBound(f.optionType, f.spot, f.strike, f.rate, f.expiry)
			outcome := checker.NoArbitrage(price, bound)
			resp := models.PriceResponse{
				Success:     outcome.Status != validation.Halt,
				OptionType:  f.optionType,
				Price:       models.Field(price, cfg.Display.Places),
				Greeks:      models.GreeksFrom(greeks, cfg.Display.Places),
				NoArbitrage: models.ValidationFrom(outcome, cfg.Display.Places),
			}
			if err := printJSON(cmd, resp); err != nil {
				return err
			}
			if outcome.Status == validation.Halt {
				return fmt.Errorf("no-arbitrage check halted: %s", outcome.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.optionType, "type", "call", "option type: call or put")
	cmd.Flags().Float64Var(&f.spot, "spot", 0, "spot price of the underlying index")
	cmd.Flags().Float64Var(&f.strike, "strike", 0, "strike price")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "continuously compounded risk-free rate")
	cmd.Flags().Float64Var(&f.dividendYield, "dividend-yield", 0, "continuous dividend yield")
	cmd.Flags().Float64Var(&f.volatility, "vol", 0, "annualized volatility")
	cmd.Flags().Float64Var(&f.expiry, "expiry", 0, "time to expiry in years")
	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("vol")
	cmd.MarkFlagRequired("expiry")
	return cmd
}

func newCreditCmd() *cobra.Command {
	var req models.CreditRequest
	var capRate, floor, participation, spread, triggerRate, threshold, buffer, stepRate, secondaryRate float64

	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Apply a crediting formula to an index return",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			// Only flags the caller actually set become parameters, so the
			// variant constructors see "absent" rather than zero.
			opt := func(name string, v *float64) *float64 {
				if cmd.Flags().Changed(name) {
					return v
				}
				return nil
			}
			req.Cap = opt("cap", &capRate)
			req.Floor = opt("floor", &floor)
			req.Participation = opt("participation", &participation)
			req.Spread = opt("spread", &spread)
			req.TriggerRate = opt("trigger-rate", &triggerRate)
			req.Threshold = opt("threshold", &threshold)
			req.Buffer = opt("buffer", &buffer)
			req.StepRate = opt("step-rate", &stepRate)
			req.SecondaryRate = opt("secondary-rate", &secondaryRate)

			spec, err := handlers.BuildSpec(req)
			if err != nil {
				return err
			}

			result := spec.Calculate(req.IndexReturn)
			return printJSON(cmd, models.CreditResponse{
				Success:        true,
				Variant:        string(spec.Kind()),
				IndexReturn:    models.Field(req.IndexReturn, cfg.Display.Places),
				CreditedReturn: models.Field(result.Credited, cfg.Display.Places),
				Flags:          result.Flags,
			})
		},
	}

	cmd.Flags().StringVar(&req.Variant, "variant", "", "payoff variant, e.g. capped_call, buffer, trigger")
	cmd.Flags().Float64Var(&req.IndexReturn, "index-return", 0, "realized index return over the crediting period")
	cmd.Flags().Float64Var(&capRate, "cap", 0, "cap rate")
	cmd.Flags().Float64Var(&floor, "floor", 0, "floor rate (non-positive)")
	cmd.Flags().Float64Var(&participation, "participation", 0, "participation rate")
	cmd.Flags().Float64Var(&spread, "spread", 0, "spread deducted from positive returns")
	cmd.Flags().Float64Var(&triggerRate, "trigger-rate", 0, "rate credited when the trigger is met")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "trigger threshold")
	cmd.Flags().Float64Var(&buffer, "buffer", 0, "downside buffer absorbed by the carrier")
	cmd.Flags().Float64Var(&stepRate, "step-rate", 0, "flat rate credited inside the buffer band")
	cmd.Flags().Float64Var(&secondaryRate, "secondary-rate", 0, "loss participation beyond the buffer")
	cmd.MarkFlagRequired("variant")
	cmd.MarkFlagRequired("index-return")
	return cmd
}

func newParityCmd() *cobra.Command {
	var req models.ParityRequest
	cmd := &cobra.Command{
		Use:   "parity",
		Short: "Validate a call/put price pair against put-call parity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			checker := cfg.Checker()

			outcome := checker.PutCallParity(req.Call, req.Put, req.Spot, req.Strike, req.Rate, req.DividendYield, req.Expiry)
			resp := models.ParityResponse{
				Success: outcome.Status != validation.Halt,
				Outcome: models.ValidationFrom(outcome, cfg.Display.Places),
			}
			if err := printJSON(cmd, resp); err != nil {
				return err
			}
			if outcome.Status == validation.Halt {
				return fmt.Errorf("put-call parity halted: %s", outcome.Message)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&req.Call, "call", 0, "call price")
	cmd.Flags().Float64Var(&req.Put, "put", 0, "put price")
	cmd.Flags().Float64Var(&req.Spot, "spot", 0, "spot price")
	cmd.Flags().Float64Var(&req.Strike, "strike", 0, "strike price")
	cmd.Flags().Float64Var(&req.Rate, "rate", 0, "continuously compounded risk-free rate")
	cmd.Flags().Float64Var(&req.DividendYield, "dividend-yield", 0, "continuous dividend yield")
	cmd.Flags().Float64Var(&req.Expiry, "expiry", 0, "time to expiry in years")
	cmd.MarkFlagRequired("call")
	cmd.MarkFlagRequired("put")
	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("expiry")
	return cmd
}

func printJSON(cmd *cobra.Command, payload any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
