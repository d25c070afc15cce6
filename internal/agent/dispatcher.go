package agent

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tmarkell/quotebot/internal/coveragex"
	"github.com/tmarkell/quotebot/internal/domain"
	"github.com/tmarkell/quotebot/internal/logging"
)

// QuoteAPI is the slice of the quoting backend the dispatcher needs.
// *coveragex.Client satisfies it; tests substitute a stub.
type QuoteAPI interface {
	Ref() string
	NewSession(ctx context.Context, year, state string) (string, error)
	Makes(ctx context.Context, ref, year string) (json.RawMessage, error)
	Models(ctx context.Context, ref, year, make string) (json.RawMessage, error)
	Plan(ctx context.Context, ref string, q coveragex.PlanQuery) (*coveragex.PricedPlan, error)
	SubmitQuote(ctx context.Context, ref string, req coveragex.QuoteRequest) (*coveragex.QuoteResult, error)
	ProcessPayment(ctx context.Context, ref string, req coveragex.PaymentRequest) (*coveragex.PaymentResult, error)
	SaveContract(ctx context.Context, req coveragex.ContractRequest) (*coveragex.ContractResult, error)
}

// quoteSession is the per-conversation pricing state produced by tool
// execution: the upstream session reference plus the vehicle/plan snapshot
// needed to later submit a contract. Overwritten per new quote, never merged.
type quoteSession struct {
	Ref   string
	Year  string
	State string
	Query coveragex.PlanQuery
	Plan  *coveragex.PricedPlan
}

// Dispatcher translates model-issued tool calls into quoting-backend calls.
// It owns the per-conversation session state and every outcome it returns is
// JSON-serializable — adapter failures become structured error payloads the
// model can react to conversationally.
type Dispatcher struct {
	api QuoteAPI
	log *logging.Logger

	mu       sync.Mutex
	sessions map[string]*quoteSession // conversation id → session state
}

// NewDispatcher creates a tool dispatcher.
func NewDispatcher(api QuoteAPI, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		api:      api,
		log:      log.Sub("dispatcher"),
		sessions: make(map[string]*quoteSession),
	}
}

// Dispatch executes one tool call for a conversation and returns the tagged
// result. It never returns a Go error: the orchestration loop appends the
// result (success or failure) back into the conversation either way.
func (d *Dispatcher) Dispatch(ctx context.Context, convID string, call domain.ToolCall) Result {
	d.log.Debug().
		Str("conversation", convID).
		Str("tool", call.Name).
		Str("callId", call.ID).
		Msg("dispatching tool call")

	switch call.Name {
	case ToolVehicleMakes:
		return d.vehicleMakes(ctx, convID, call.Arguments)
	case ToolVehicleModels:
		return d.vehicleModels(ctx, convID, call.Arguments)
	case ToolPricedQuote:
		return d.pricedQuote(ctx, convID, call.Arguments)
	case ToolCreateContract:
		return d.createContract(ctx, convID, call.Arguments)
	default:
		return Fail(ErrKindUnknownTool, "unknown tool: %s", call.Name)
	}
}

func (d *Dispatcher) session(convID string) *quoteSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[convID]
}

func (d *Dispatcher) setSession(convID string, s *quoteSession) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[convID] = s
}

// ensureRef resolves the ref token for a lookup call. A cached session ref
// is reused when present; with a year/state at hand a missing session is
// re-acquired transparently. Without a state the account ref is used.
func (d *Dispatcher) ensureRef(ctx context.Context, convID, year, state string) (string, error) {
	if s := d.session(convID); s != nil && s.Ref != "" {
		return s.Ref, nil
	}
	if state == "" {
		return d.api.Ref(), nil
	}

	ref, err := d.api.NewSession(ctx, year, state)
	if err != nil {
		return "", err
	}
	d.setSession(convID, &quoteSession{Ref: ref, Year: year, State: state})
	d.log.Info().Str("conversation", convID).Str("state", state).Msg("acquired quote session")
	return ref, nil
}

type makesArgs struct {
	Year  string `json:"year"`
	State string `json:"state"`
}

func (d *Dispatcher) vehicleMakes(ctx context.Context, convID string, raw json.RawMessage) Result {
	var args makesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return Fail(ErrKindInvalidArgs, "parsing arguments: %v", err)
	}
	if args.Year == "" {
		return Fail(ErrKindInvalidArgs, "year is required")
	}

	ref, err := d.ensureRef(ctx, convID, args.Year, args.State)
	if err != nil {
		return Fail(ErrKindUpstream, "acquiring session: %v", err)
	}

	makes, err := d.api.Makes(ctx, ref, args.Year)
	if err != nil {
		return Fail(ErrKindUpstream, "fetching makes: %v", err)
	}
	return OK(makes)
}

type modelsArgs struct {
	Year  string `json:"year"`
	Make  string `json:"make"`
	State string `json:"state"`
}

func (d *Dispatcher) vehicleModels(ctx context.Context, convID string, raw json.RawMessage) Result {
	var args modelsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return Fail(ErrKindInvalidArgs, "parsing arguments: %v", err)
	}
	if args.Year == "" || args.Make == "" {
		return Fail(ErrKindInvalidArgs, "year and make are required")
	}

	ref, err := d.ensureRef(ctx, convID, args.Year, args.State)
	if err != nil {
		return Fail(ErrKindUpstream, "acquiring session: %v", err)
	}

	models, err := d.api.Models(ctx, ref, args.Year, args.Make)
	if err != nil {
		return Fail(ErrKindUpstream, "fetching models: %v", err)
	}
	return OK(models)
}

type quoteArgs struct {
	State      string `json:"state"`
	Year       string `json:"year"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Trim       string `json:"trim"`
	Class      string `json:"class"`
	VINPattern string `json:"vin_pattern"`
	Odometer   int    `json:"odometer"`
}

func (d *Dispatcher) pricedQuote(ctx context.Context, convID string, raw json.RawMessage) Result {
	var args quoteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return Fail(ErrKindInvalidArgs, "parsing arguments: %v", err)
	}
	if args.State == "" || args.Year == "" || args.Make == "" || args.Model == "" {
		return Fail(ErrKindInvalidArgs, "state, year, make and model are required")
	}

	// Pricing sessions are year/state-scoped. A cached ref may belong to a
	// different selection, so every quote prices against a fresh session.
	ref, err := d.api.NewSession(ctx, args.Year, args.State)
	if err != nil {
		return Fail(ErrKindUpstream, "acquiring session: %v", err)
	}

	query := coveragex.PlanQuery{
		State:      args.State,
		Year:       args.Year,
		Make:       args.Make,
		Model:      args.Model,
		Trim:       args.Trim,
		Class:      args.Class,
		VINPattern: args.VINPattern,
		Odometer:   args.Odometer,
	}

	plan, err := d.api.Plan(ctx, ref, query)
	if err != nil {
		return Fail(ErrKindUpstream, "fetching priced plan: %v", err)
	}

	// Overwrite the snapshot wholesale: a new quote replaces any prior one.
	d.setSession(convID, &quoteSession{
		Ref:   ref,
		Year:  args.Year,
		State: args.State,
		Query: query,
		Plan:  plan,
	})

	return OK(plan.Raw)
}

type contractArgs struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	VIN        string `json:"vin"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
}

// createContract sequences the three dependent calls of the contract flow:
// submit quote, process payment, save contract. Each step runs only if the
// prior one succeeded.
func (d *Dispatcher) createContract(ctx context.Context, convID string, raw json.RawMessage) Result {
	var args contractArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return Fail(ErrKindInvalidArgs, "parsing arguments: %v", err)
	}
	if args.VIN == "" || args.FirstName == "" || args.CardNumber == "" {
		return Fail(ErrKindInvalidArgs, "customer name, vin and card details are required")
	}

	sess := d.session(convID)
	if sess == nil || sess.Plan == nil {
		return Fail(ErrKindNoActiveQuote,
			"no priced quote on file for this conversation; get a quote before creating a contract")
	}

	quote, err := d.api.SubmitQuote(ctx, sess.Ref, coveragex.QuoteRequest{
		PlanCode: sess.Plan.PlanCode,
		Vehicle:  sess.Query,
		VIN:      args.VIN,
		Customer: coveragex.Customer{
			FirstName: args.FirstName,
			LastName:  args.LastName,
			Email:     args.Email,
			Phone:     args.Phone,
			Address:   args.Address,
			City:      args.City,
			State:     args.State,
			Zip:       args.Zip,
		},
	})
	if err != nil {
		return Fail(ErrKindUpstream, "submitting quote: %v", err)
	}

	payment, err := d.api.ProcessPayment(ctx, sess.Ref, coveragex.PaymentRequest{
		QuoteID: quote.QuoteID,
		Amount:  sess.Plan.MonthlyPrice,
		Card: coveragex.Card{
			Number: args.CardNumber,
			Expiry: args.CardExpiry,
			CVV:    args.CardCVV,
		},
	})
	if err != nil {
		return Fail(ErrKindUpstream, "processing payment: %v", err)
	}

	contract, err := d.api.SaveContract(ctx, coveragex.ContractRequest{
		Reference: sess.Ref,
		QuoteID:   quote.QuoteID,
		PaymentID: payment.PaymentID,
	})
	if err != nil {
		return Fail(ErrKindUpstream, "saving contract: %v", err)
	}

	d.log.Info().
		Str("conversation", convID).
		Str("quoteId", quote.QuoteID).
		Str("contractId", contract.ContractID).
		Msg("contract created")

	return OK(map[string]string{
		"contractId": contract.ContractID,
		"quoteId":    quote.QuoteID,
		"paymentId":  payment.PaymentID,
		"status":     contract.Status,
	})
}
