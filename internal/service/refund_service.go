package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/domain"
	"github.com/avax-reflights/refundservice/internal/events"
	"github.com/avax-reflights/refundservice/internal/log"
	"github.com/avax-reflights/refundservice/internal/metrics"
	"github.com/avax-reflights/refundservice/internal/policy"
	"github.com/avax-reflights/refundservice/internal/refund"
	"github.com/avax-reflights/refundservice/internal/retry"
	"github.com/avax-reflights/refundservice/internal/tracing"
)

// RefundService ties together policy resolution, eligibility calculation and
// refund submission.
type RefundService struct {
	policies        *policy.Provider
	calc            *refund.Calculator
	publisher       events.Publisher
	refreshInterval time.Duration
	retryConfig     retry.Config
}

// NewRefundService creates the refund service
func NewRefundService(policies *policy.Provider, calc *refund.Calculator, publisher events.Publisher, refreshInterval time.Duration) *RefundService {
	return &RefundService{
		policies:        policies,
		calc:            calc,
		publisher:       publisher,
		refreshInterval: refreshInterval,
		retryConfig:     retry.DefaultConfig(),
	}
}

func validateTicket(ticket domain.Ticket) error {
	if ticket.ID == "" {
		return domain.NewInvalidInputError("ticket id is required", "")
	}
	if ticket.Airline == "" {
		return domain.NewInvalidInputError("ticket airline is required", "ticket: "+ticket.ID)
	}
	if ticket.Price < 0 {
		return domain.NewInvalidInputError("ticket price must be non-negative",
			"ticket: "+ticket.ID+", price: "+strconv.FormatFloat(ticket.Price, 'f', -1, 64))
	}
	if ticket.DepartureTime.IsZero() {
		return domain.NewInvalidInputError("ticket departure time is required", "ticket: "+ticket.ID)
	}
	if ticket.Class != "" && !ticket.Class.IsValid() {
		return domain.NewInvalidInputError("unknown cabin class", "class: "+string(ticket.Class))
	}
	return nil
}

// CheckEligibility resolves the airline's refund policy and computes refund
// eligibility for the ticket at the current instant. An unresolvable policy
// is not an error: it yields an ineligible result with a reason, matching
// the front-end contract.
func (s *RefundService) CheckEligibility(ctx context.Context, ticket domain.Ticket) (domain.RefundEligibility, error) {
	ctx, span := tracing.StartSpan(ctx, "RefundService.CheckEligibility")
	defer span.End()

	if err := validateTicket(ticket); err != nil {
		return domain.RefundEligibility{}, err
	}

	ctx = log.WithTicketID(ctx, ticket.ID)
	ctx = log.WithAirline(ctx, ticket.Airline)

	res, err := s.policies.Resolve(ctx, ticket.Airline)
	if err != nil {
		if !domain.IsNotFound(err) {
			return domain.RefundEligibility{}, err
		}
		res.Policy = nil
	}
	if res.FetchErr != nil {
		log.Warn(ctx, "Policy fetch failed, result based on fallback data",
			zap.Error(res.FetchErr))
	}

	eligibility := s.calc.Calculate(ticket, res.Policy, time.Now())

	metrics.EligibilityCalculated.WithLabelValues(ticket.Airline, strconv.FormatBool(eligibility.Eligible)).Inc()
	if eligibility.Eligible {
		metrics.RefundAmount.WithLabelValues(ticket.Airline).Observe(eligibility.RefundAmount)
	}

	log.Debug(ctx, "Computed refund eligibility",
		zap.Bool("eligible", eligibility.Eligible),
		zap.Int("percentage", eligibility.Percentage),
		zap.Float64("refund_amount", eligibility.RefundAmount),
		zap.Int("hours_until_flight", eligibility.HoursUntilFlight),
		zap.String("policy_source", string(res.Source)))

	return eligibility, nil
}

// SubmitRefund recomputes eligibility, gates on it, and hands the refund
// request to the backend via the event publisher. Returns the submission id
// and the published request.
func (s *RefundService) SubmitRefund(ctx context.Context, ticket domain.Ticket, reason string) (string, domain.RefundRequest, error) {
	ctx, span := tracing.StartSpan(ctx, "RefundService.SubmitRefund")
	defer span.End()

	if reason == "" {
		return "", domain.RefundRequest{}, domain.NewInvalidInputError("refund reason is required", "ticket: "+ticket.ID)
	}

	eligibility, err := s.CheckEligibility(ctx, ticket)
	if err != nil {
		return "", domain.RefundRequest{}, err
	}
	if !eligibility.Eligible {
		metrics.RefundSubmitted.WithLabelValues("rejected").Inc()
		detail := eligibility.Reason
		if detail == "" {
			detail = "refund percentage is zero for the current timeframe"
		}
		return "", domain.RefundRequest{}, domain.NewInvalidStateError("ticket is not eligible for a refund", detail)
	}

	req := domain.RefundRequest{
		TicketID:     ticket.ID,
		RefundAmount: eligibility.RefundAmount,
		Reason:       reason,
		Policy:       *eligibility.Rule,
	}

	ctx = log.WithTicketID(ctx, ticket.ID)

	var submissionID string
	err = retry.Do(ctx, s.retryConfig, log.L(ctx), func() error {
		id, pubErr := s.publisher.PublishRefundRequested(ctx, req)
		if pubErr != nil {
			return pubErr
		}
		submissionID = id
		return nil
	})
	if err != nil {
		metrics.RefundSubmitted.WithLabelValues("error").Inc()
		return "", domain.RefundRequest{}, domain.NewSubmitFailedError(ticket.ID, err)
	}

	metrics.RefundSubmitted.WithLabelValues("ok").Inc()
	log.Info(ctx, "Refund request submitted",
		zap.String("submission_id", submissionID),
		zap.Float64("refund_amount", req.RefundAmount))

	return submissionID, req, nil
}

// WatchEligibility recomputes eligibility on the configured refresh interval
// so callers can track the countdown. The returned channel closes when ctx
// is cancelled.
func (s *RefundService) WatchEligibility(ctx context.Context, ticket domain.Ticket) (<-chan refund.Update, error) {
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}

	monitor := refund.NewMonitor(s.refreshInterval, func(ctx context.Context) (domain.RefundEligibility, error) {
		return s.CheckEligibility(ctx, ticket)
	}, log.L(ctx))

	return monitor.Run(ctx), nil
}

// ResolvePolicy exposes policy resolution for the API layer
func (s *RefundService) ResolvePolicy(ctx context.Context, airline string) (policy.Resolution, error) {
	return s.policies.Resolve(ctx, airline)
}
