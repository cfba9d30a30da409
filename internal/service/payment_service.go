package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
)

// PaymentInput carries the fields of a payment write. Status is optional
// and defaults to Completed on create.
type PaymentInput struct {
	UserID        uint64
	ReservationID uint64
	Amount        model.Money
	Method        string
	Status        string
}

// PaymentService links payments to reservations.
type PaymentService struct {
	store Store
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time
}

// NewPaymentService wires payment linkage. pub and log may be nil.
func NewPaymentService(store Store, pub Publisher, log *zap.Logger) *PaymentService {
	if store == nil {
		panic("nil store passed to NewPaymentService")
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{store: store, pub: pub, log: log, now: time.Now}
}

// checkPaymentFields runs the checks that need no store access.
func checkPaymentFields(in *PaymentInput) error {
	if in.UserID == 0 {
		return apperror.InvalidArgument("userId", "userId is required")
	}
	if in.ReservationID == 0 {
		return apperror.InvalidArgument("reservationId", "reservationId is required")
	}
	in.Method = strings.TrimSpace(in.Method)
	if in.Method == "" {
		return apperror.InvalidArgument("paymentMethod", "paymentMethod is required")
	}
	if utf8.RuneCountInString(in.Method) > model.MaxPaymentMethodLen {
		return apperror.InvalidArgument("paymentMethod",
			fmt.Sprintf("paymentMethod must be at most %d characters", model.MaxPaymentMethodLen))
	}
	if in.Status != "" && !model.ValidPaymentStatus(in.Status) {
		return apperror.Unprocessable(fmt.Sprintf("invalid payment status %q", in.Status))
	}
	return nil
}

// checkPaymentRefs verifies the referenced user and reservation exist and
// belong together, then the amount.
func checkPaymentRefs(ctx context.Context, tx Queries, in PaymentInput) error {
	if _, err := tx.UserByID(ctx, in.UserID); err != nil {
		return lookupErr(err, "user", in.UserID)
	}
	res, err := tx.ReservationByID(ctx, in.ReservationID)
	if err != nil {
		return lookupErr(err, "reservation", in.ReservationID)
	}
	if res.UserID != in.UserID {
		return apperror.Conflict(fmt.Sprintf("reservation %d does not belong to user %d", in.ReservationID, in.UserID))
	}
	if in.Amount <= 0 {
		return apperror.Unprocessable("Amount must be greater than zero")
	}
	return nil
}

// Add records a payment for a reservation, stamped with the current UTC
// time.
func (s *PaymentService) Add(ctx context.Context, actor model.Actor, in PaymentInput) (model.Payment, error) {
	if err := checkPaymentFields(&in); err != nil {
		return model.Payment{}, err
	}
	if !actor.CanAccess(in.UserID) {
		return model.Payment{}, apperror.Forbidden("cannot pay on behalf of another user")
	}
	status := in.Status
	if status == "" {
		status = model.PaymentCompleted
	}
	var p model.Payment
	err := s.store.InTx(ctx, func(tx Queries) error {
		if err := checkPaymentRefs(ctx, tx, in); err != nil {
			return err
		}
		p = model.Payment{
			ReservationID: in.ReservationID,
			UserID:        in.UserID,
			Amount:        in.Amount,
			Method:        in.Method,
			Status:        status,
			DateTime:      s.now().UTC().Truncate(time.Second),
		}
		if err := tx.InsertPayment(ctx, &p); err != nil {
			return writeErr(err, "insert payment", "payment references a missing record")
		}
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	s.publish(ctx, queue.EventPaymentRecorded, p)
	return p, nil
}

// Update changes the amount, method or status of a payment. The payment's
// user and reservation cannot change.
func (s *PaymentService) Update(ctx context.Context, actor model.Actor, id uint64, in PaymentInput) (model.Payment, error) {
	if id == 0 {
		return model.Payment{}, apperror.InvalidArgument("paymentId", "paymentId is required")
	}
	if err := checkPaymentFields(&in); err != nil {
		return model.Payment{}, err
	}
	var p model.Payment
	err := s.store.InTx(ctx, func(tx Queries) error {
		existing, err := tx.PaymentByID(ctx, id)
		if err != nil {
			return lookupErr(err, "payment", id)
		}
		if !actor.CanAccess(existing.UserID) {
			return apperror.Forbidden("payment belongs to another user")
		}
		if _, err := tx.UserByID(ctx, in.UserID); err != nil {
			return lookupErr(err, "user", in.UserID)
		}
		if _, err := tx.ReservationByID(ctx, in.ReservationID); err != nil {
			return lookupErr(err, "reservation", in.ReservationID)
		}
		if in.UserID != existing.UserID || in.ReservationID != existing.ReservationID {
			return apperror.Conflict("a payment cannot be moved to another user or reservation")
		}
		if in.Amount <= 0 {
			return apperror.Unprocessable("Amount must be greater than zero")
		}
		existing.Amount = in.Amount
		existing.Method = in.Method
		if in.Status != "" {
			existing.Status = in.Status
		}
		if err := tx.UpdatePayment(ctx, &existing); err != nil {
			return writeErr(err, "update payment", "payment references a missing record")
		}
		p = existing
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	s.publish(ctx, queue.EventPaymentUpdated, p)
	return p, nil
}

// Delete removes a payment. Only administrators may delete.
func (s *PaymentService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("only administrators can delete payments")
	}
	if id == 0 {
		return apperror.InvalidArgument("paymentId", "paymentId is required")
	}
	p, err := s.store.PaymentByID(ctx, id)
	if err != nil {
		return lookupErr(err, "payment", id)
	}
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return lookupErr(err, "payment", id)
	}
	s.publish(ctx, queue.EventPaymentDeleted, p)
	return nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, actor model.Actor, id uint64) (model.Payment, error) {
	if id == 0 {
		return model.Payment{}, apperror.InvalidArgument("paymentId", "paymentId is required")
	}
	p, err := s.store.PaymentByID(ctx, id)
	if err != nil {
		return model.Payment{}, lookupErr(err, "payment", id)
	}
	if !actor.CanAccess(p.UserID) {
		return model.Payment{}, apperror.Forbidden("payment belongs to another user")
	}
	return p, nil
}

// List returns all payments for administrators and the caller's own
// payments otherwise.
func (s *PaymentService) List(ctx context.Context, actor model.Actor) ([]model.Payment, error) {
	var userID uint64
	if !actor.IsAdmin() {
		userID = actor.UserID
	}
	list, err := s.store.ListPayments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

func (s *PaymentService) publish(ctx context.Context, typ string, p model.Payment) {
	ev := queue.NewEvent(typ, p.UserID)
	ev.PaymentID = p.ID
	ev.ReservationID = p.ReservationID
	ev.Status = p.Status
	ev.AmountCents = int64(p.Amount)
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("type", typ), zap.Uint64("payment_id", p.ID), zap.Error(err))
	}
}
