package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
)

// CreateReservationInput is a booking request. Status defaults to Pending.
// ServiceIDs is the complete set of add-ons for the reservation.
type CreateReservationInput struct {
	UserID        uint64
	ParkingSpotID uint64
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	TotalAmount   *model.Money
	ServiceIDs    []uint64
}

// UpdateReservationInput changes an existing reservation. Zero times and an
// empty status keep the current values; a nil ServiceIDs keeps the current
// add-ons while an empty, non-nil slice clears them.
type UpdateReservationInput struct {
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	TotalAmount *model.Money
	ServiceIDs  []uint64
}

// ReservationService owns the reservation lifecycle: validation, the
// no-double-booking check, status transitions and add-on association.
type ReservationService struct {
	store Store
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time
}

// NewReservationService wires the lifecycle manager. pub and log may be nil.
func NewReservationService(store Store, pub Publisher, log *zap.Logger) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{store: store, pub: pub, log: log, now: time.Now}
}

// Create books a spot. Checks run in order and the first failure wins:
// missing fields, unknown user, unknown spot, inverted window, bad status,
// unknown add-on, overlapping reservation. All store work happens in one
// transaction holding the spot lock, so concurrent bookings of the same
// spot cannot both pass the overlap check.
func (s *ReservationService) Create(ctx context.Context, actor model.Actor, in CreateReservationInput) (model.Reservation, error) {
	if err := requireFields(in); err != nil {
		return model.Reservation{}, err
	}
	if !actor.CanAccess(in.UserID) {
		return model.Reservation{}, apperror.Forbidden("cannot book on behalf of another user")
	}
	start, end := toStored(in.StartTime), toStored(in.EndTime)
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}

	var res model.Reservation
	err := s.store.InTx(ctx, func(tx Queries) error {
		if _, err := validateRefs(ctx, tx, in.UserID, in.ParkingSpotID); err != nil {
			return err
		}
		if err := validateWindow(start, end); err != nil {
			return err
		}
		if err := validateStatus("", status); err != nil {
			return err
		}
		if !actor.IsAdmin() && status != model.StatusPending {
			return apperror.Forbidden("only administrators can create a reservation in status " + status)
		}
		if err := validateTotal(in.TotalAmount); err != nil {
			return err
		}
		services, err := resolveServices(ctx, tx, in.ServiceIDs)
		if err != nil {
			return err
		}
		if model.Blocking(status) {
			if err := ensureAvailable(ctx, tx, in.ParkingSpotID, start, end, 0); err != nil {
				return err
			}
		}
		res = model.Reservation{
			UserID:        in.UserID,
			ParkingSpotID: in.ParkingSpotID,
			StartTime:     start,
			EndTime:       end,
			Status:        status,
			TotalAmount:   totalFor(in.TotalAmount, in.ServiceIDs != nil, services),
		}
		if err := tx.InsertReservation(ctx, &res); err != nil {
			return writeErr(err, "insert reservation", "parking spot is already reserved for this window")
		}
		if err := associateServices(ctx, tx, res.ID, services); err != nil {
			return err
		}
		if status == model.StatusActive {
			if err := tx.SetSpotOccupied(ctx, in.ParkingSpotID, true); err != nil {
				return fmt.Errorf("occupy spot %d: %w", in.ParkingSpotID, err)
			}
		}
		res.Services = services
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, queue.EventReservationCreated, res)
	s.log.Info("reservation created",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("spot_id", res.ParkingSpotID),
		zap.Uint64("user_id", res.UserID))
	return res, nil
}

// Update changes the window, status, total or add-ons of a reservation. The
// user and spot of a reservation are fixed. The overlap check excludes the
// reservation itself and is skipped when the new status releases the spot.
// Owners may cancel; every other status change and an explicit total need
// an administrator. Moving into or out of Active updates spot occupancy.
func (s *ReservationService) Update(ctx context.Context, actor model.Actor, id uint64, in UpdateReservationInput) (model.Reservation, error) {
	if id == 0 {
		return model.Reservation{}, apperror.InvalidArgument("reservationId", "reservationId is required")
	}
	var res model.Reservation
	var prevStatus string
	err := s.store.InTx(ctx, func(tx Queries) error {
		current, err := s.lockForWrite(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		prevStatus = current.Status

		start, end := current.StartTime, current.EndTime
		if !in.StartTime.IsZero() {
			start = toStored(in.StartTime)
		}
		if !in.EndTime.IsZero() {
			end = toStored(in.EndTime)
		}
		if err := validateWindow(start, end); err != nil {
			return err
		}
		status := current.Status
		if in.Status != "" {
			status = in.Status
		}
		if err := validateStatus(current.Status, status); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if status != current.Status && status != model.StatusCancelled {
				return apperror.Forbidden("only administrators can set status " + status)
			}
			if in.TotalAmount != nil {
				return apperror.Forbidden("only administrators can change totalAmount")
			}
		}
		if err := validateTotal(in.TotalAmount); err != nil {
			return err
		}
		var services []model.Service
		if in.ServiceIDs != nil {
			if services, err = resolveServices(ctx, tx, in.ServiceIDs); err != nil {
				return err
			}
		}
		if model.Blocking(status) {
			if err := ensureAvailable(ctx, tx, current.ParkingSpotID, start, end, current.ID); err != nil {
				return err
			}
		}

		current.StartTime, current.EndTime, current.Status = start, end, status
		if in.TotalAmount != nil || in.ServiceIDs != nil {
			current.TotalAmount = totalFor(in.TotalAmount, in.ServiceIDs != nil, services)
		}
		if err := tx.UpdateReservation(ctx, &current); err != nil {
			return writeErr(err, "update reservation", "parking spot is already reserved for this window")
		}
		if in.ServiceIDs != nil {
			if err := associateServices(ctx, tx, current.ID, services); err != nil {
				return err
			}
		}
		if occupied, changed := occupancyChange(prevStatus, status); changed {
			if err := tx.SetSpotOccupied(ctx, current.ParkingSpotID, occupied); err != nil {
				return fmt.Errorf("update spot %d occupancy: %w", current.ParkingSpotID, err)
			}
		}
		res = current
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	if err := s.attachServices(ctx, []*model.Reservation{&res}); err != nil {
		return model.Reservation{}, err
	}
	ev := queue.EventReservationUpdated
	if res.Status == model.StatusCancelled && prevStatus != model.StatusCancelled {
		ev = queue.EventReservationCancelled
	}
	s.publish(ctx, ev, res)
	return res, nil
}

// Cancel moves a reservation to Cancelled, releasing its window.
func (s *ReservationService) Cancel(ctx context.Context, actor model.Actor, id uint64) (model.Reservation, error) {
	return s.Update(ctx, actor, id, UpdateReservationInput{Status: model.StatusCancelled})
}

// Delete removes a reservation together with its add-on links and its
// payments. Only administrators may delete.
func (s *ReservationService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("only administrators can delete reservations")
	}
	if id == 0 {
		return apperror.InvalidArgument("reservationId", "reservationId is required")
	}
	var res model.Reservation
	var payments int64
	err := s.store.InTx(ctx, func(tx Queries) error {
		current, err := s.lockForWrite(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		res = current
		if err := tx.ReplaceReservationServices(ctx, id, nil); err != nil {
			return fmt.Errorf("clear services of reservation %d: %w", id, err)
		}
		if payments, err = tx.DeletePaymentsByReservation(ctx, id); err != nil {
			return fmt.Errorf("delete payments of reservation %d: %w", id, err)
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			return lookupErr(err, "reservation", id)
		}
		if current.Status == model.StatusActive {
			if err := tx.SetSpotOccupied(ctx, current.ParkingSpotID, false); err != nil {
				return fmt.Errorf("free spot %d: %w", current.ParkingSpotID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, queue.EventReservationDeleted, res)
	s.log.Info("reservation deleted", zap.Uint64("reservation_id", id), zap.Int64("payments_removed", payments))
	return nil
}

// Get returns one reservation with its add-ons.
func (s *ReservationService) Get(ctx context.Context, actor model.Actor, id uint64) (model.Reservation, error) {
	if id == 0 {
		return model.Reservation{}, apperror.InvalidArgument("reservationId", "reservationId is required")
	}
	res, err := s.store.ReservationByID(ctx, id)
	if err != nil {
		return model.Reservation{}, lookupErr(err, "reservation", id)
	}
	if !actor.CanAccess(res.UserID) {
		return model.Reservation{}, apperror.Forbidden("reservation belongs to another user")
	}
	if err := s.attachServices(ctx, []*model.Reservation{&res}); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// List returns reservations matching q. Non-administrators only see their
// own reservations regardless of q.UserID.
func (s *ReservationService) List(ctx context.Context, actor model.Actor, q model.ReservationQuery) ([]model.Reservation, error) {
	if q.Status != "" && !model.ValidStatus(q.Status) {
		return nil, apperror.InvalidArgument("status", fmt.Sprintf("unknown status %q", q.Status))
	}
	if q.SortBy == "" {
		q.SortBy = model.SortByStartTime
	}
	if !validSortKey(q.SortBy) {
		return nil, apperror.InvalidArgument("sortBy", fmt.Sprintf("cannot sort by %q", q.SortBy))
	}
	if !actor.IsAdmin() {
		q.UserID = actor.UserID
	}
	if q.Date != nil {
		d := q.Date.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		q.Date = &day
	}
	list, err := s.store.SearchReservations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search reservations: %w", err)
	}
	ptrs := make([]*model.Reservation, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}
	if err := s.attachServices(ctx, ptrs); err != nil {
		return nil, err
	}
	return list, nil
}

func validSortKey(k string) bool {
	switch k {
	case model.SortByID, model.SortByStartTime, model.SortByEndTime, model.SortByStatus,
		model.SortByUserID, model.SortByParkingSpotID, model.SortByCreatedAt:
		return true
	}
	return false
}

// lockForWrite loads a reservation, takes the spot lock, then re-reads the
// reservation under lock. Locks are always taken spot first.
func (s *ReservationService) lockForWrite(ctx context.Context, tx Queries, actor model.Actor, id uint64) (model.Reservation, error) {
	existing, err := tx.ReservationByID(ctx, id)
	if err != nil {
		return model.Reservation{}, lookupErr(err, "reservation", id)
	}
	if !actor.CanAccess(existing.UserID) {
		return model.Reservation{}, apperror.Forbidden("reservation belongs to another user")
	}
	if _, err := tx.LockSpot(ctx, existing.ParkingSpotID); err != nil {
		return model.Reservation{}, lookupErr(err, "parking spot", existing.ParkingSpotID)
	}
	current, err := tx.LockReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, lookupErr(err, "reservation", id)
	}
	return current, nil
}

func (s *ReservationService) attachServices(ctx context.Context, list []*model.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uint64, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	byID, err := s.store.ServicesForReservations(ctx, ids)
	if err != nil {
		return fmt.Errorf("load reservation services: %w", err)
	}
	for _, r := range list {
		r.Services = byID[r.ID]
		if r.Services == nil {
			r.Services = []model.Service{}
		}
	}
	return nil
}

func (s *ReservationService) publish(ctx context.Context, typ string, r model.Reservation) {
	ev := queue.NewEvent(typ, r.UserID)
	ev.ReservationID = r.ID
	ev.ParkingSpotID = r.ParkingSpotID
	ev.Status = r.Status
	ev.StartsAt = r.StartTime.Format(time.RFC3339)
	ev.EndsAt = r.EndTime.Format(time.RFC3339)
	if r.TotalAmount != nil {
		ev.AmountCents = int64(*r.TotalAmount)
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("type", typ), zap.Uint64("reservation_id", r.ID), zap.Error(err))
	}
}

// resolveServices de-duplicates ids and loads them, failing with NotFound
// on the first unknown id. The result is ordered by id.
func resolveServices(ctx context.Context, tx Queries, ids []uint64) ([]model.Service, error) {
	uniq := dedupe(ids)
	if len(uniq) == 0 {
		return []model.Service{}, nil
	}
	found, err := tx.ServicesByIDs(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	byID := make(map[uint64]model.Service, len(found))
	for _, svc := range found {
		byID[svc.ID] = svc
	}
	out := make([]model.Service, 0, len(uniq))
	for _, id := range uniq {
		svc, ok := byID[id]
		if !ok {
			return nil, apperror.NotFound("service", id)
		}
		out = append(out, svc)
	}
	return out, nil
}

// associateServices replaces the add-on set of a reservation with exactly
// services.
func associateServices(ctx context.Context, tx Queries, reservationID uint64, services []model.Service) error {
	ids := make([]uint64, len(services))
	for i, svc := range services {
		ids[i] = svc.ID
	}
	if err := tx.ReplaceReservationServices(ctx, reservationID, ids); err != nil {
		return writeErr(err, "replace reservation services", "service association rejected")
	}
	return nil
}

// totalFor picks the stored total: an explicit amount wins, otherwise the
// sum of add-on prices when add-ons were supplied.
func totalFor(explicit *model.Money, servicesGiven bool, services []model.Service) *model.Money {
	if explicit != nil {
		v := *explicit
		return &v
	}
	if !servicesGiven {
		return nil
	}
	var sum model.Money
	for _, svc := range services {
		sum += svc.Price
	}
	return &sum
}

// occupancyChange reports the spot occupancy implied by moving a
// reservation into or out of Active.
func occupancyChange(from, to string) (occupied, changed bool) {
	switch {
	case from != model.StatusActive && to == model.StatusActive:
		return true, true
	case from == model.StatusActive && to != model.StatusActive:
		return false, true
	}
	return false, false
}

// toStored converts an instant to the stored form: UTC, whole seconds.
func toStored(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
