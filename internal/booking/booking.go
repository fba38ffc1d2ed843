package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

var tracer = otel.Tracer("github.com/avstrong/ratecal/internal/booking")

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storageReader interface {
	GetProperty(ctx context.Context, hotelID string) (*calendar.Property, error)
	GetReservationIDByIdempotencyKey(ctx context.Context, hotelID string) (string, error)
}

type storageWriter interface {
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	// SaveProperty stores property when the stored version is property.Version-1,
	// or when nothing is stored and property.Version is 1. Otherwise it fails
	// with ErrVersionConflict.
	SaveProperty(ctx context.Context, property *calendar.Property) error
	SaveIdempotencyKey(ctx context.Context, hotelID, reservationID string) error
}

type storage interface {
	storageReader
	storageWriter
}

type auditLog interface {
	AppendPriceChanges(ctx context.Context, hotelID string, changes []calendar.PriceChangeLog) error
	PriceChanges(ctx context.Context, hotelID string, limit int) ([]calendar.PriceChangeLog, error)
}

type locker interface {
	Acquire(ctx context.Context, hotelID string) (release func(context.Context) error, err error)
}

type publisher interface {
	PublishRates(ctx context.Context, update *RateUpdate) error
}

type advisor interface {
	Suggest(ctx context.Context, pricing *PricingContext) (*calendar.Suggestion, error)
}

type Conf struct {
	L           *logger.Logger
	Storage     storage
	Audit       auditLog
	IDGenerator idGenerator
	Engine      *calendar.Engine
	// Locker, Publisher and Advisor are optional.
	Locker    locker
	Publisher publisher
	Advisor   advisor
	// MaxRetries bounds reloads after a version conflict.
	MaxRetries int
	// AutoSync pushes changed rates to the channel manager after commit.
	AutoSync bool
	// TransactionalAudit is set when Audit writes through the Storage
	// transaction. Other audit logs are appended once the transaction commits.
	TransactionalAudit bool
	// MaxRangeDays caps the days of a date range and the nights of a stay.
	MaxRangeDays int
	DefaultUser  string
	Now          func() time.Time
}

type Manager struct {
	l           *logger.Logger
	storage     storage
	audit       auditLog
	idGenerator idGenerator
	engine      *calendar.Engine
	locker      locker
	publisher   publisher
	advisor     advisor
	maxRetries  int
	autoSync    bool
	txAudit     bool
	maxRange    int
	defaultUser string
	now         func() time.Time
}

func New(conf Conf) *Manager {
	now := conf.Now
	if now == nil {
		now = time.Now
	}

	maxRange := conf.MaxRangeDays
	if maxRange <= 0 {
		maxRange = DefaultMaxRangeDays
	}

	return &Manager{
		l:           conf.L,
		storage:     conf.Storage,
		audit:       conf.Audit,
		idGenerator: conf.IDGenerator,
		engine:      conf.Engine,
		locker:      conf.Locker,
		publisher:   conf.Publisher,
		advisor:     conf.Advisor,
		maxRetries:  max(conf.MaxRetries, 0),
		autoSync:    conf.AutoSync,
		txAudit:     conf.TransactionalAudit,
		maxRange:    maxRange,
		defaultUser: conf.DefaultUser,
		now:         now,
	}
}

// change is what one mutation step wants persisted.
type change struct {
	rooms       []calendar.Room
	reservation *calendar.Reservation
	logs        []calendar.PriceChangeLog
	// newKey binds the idempotency key of the context to reservation.
	newKey bool
	// noop skips the write, e.g. a repeated create.
	noop bool
	sync *RateUpdate
}

type step func(ctx context.Context, property *calendar.Property) (*change, error)

func startSpan(ctx context.Context, name, hotelID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "booking."+name, trace.WithAttributes(attribute.String("hotel.id", hotelID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

func (m *Manager) user(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok && user != "" {
		return user
	}

	return m.defaultUser
}

func (m *Manager) today() calendar.Date {
	return calendar.DateOf(m.now().UTC())
}

// checkSpan rejects a range of more than maxRange days. Reversed ranges pass
// here and fail later as InvalidRangeError.
func (m *Manager) checkSpan(field string, days int) error {
	if days <= m.maxRange {
		return nil
	}

	inputErr := newInputError()
	inputErr.addError(field, fmt.Sprintf("%s must not span more than %d days", field, m.maxRange))

	return inputErr
}

// checkStay bounds the nights of [checkIn, checkOut).
func (m *Manager) checkStay(checkIn, checkOut calendar.Date) error {
	return m.checkSpan("checkOut", calendar.Nights(checkIn, checkOut))
}

// checkRange bounds the dates of from..to, both inclusive.
func (m *Manager) checkRange(from, to calendar.Date) error {
	return m.checkSpan("to", calendar.Nights(from, to)+1)
}

// mutate runs fn against a fresh snapshot and saves the result, reloading and
// running fn again when another writer saved first.
func (m *Manager) mutate(ctx context.Context, hotelID string, fn step) (*calendar.Property, *change, error) {
	if m.locker != nil {
		release, err := m.locker.Acquire(ctx, hotelID)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire lease for hotel %s: %w", hotelID, err)
		}

		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				m.l.LogWarnf("Could not release lease for hotel %s: %v", hotelID, err)
			}
		}()
	}

	for attempt := 0; ; attempt++ {
		property, ch, err := m.attempt(ctx, hotelID, fn)
		if errors.Is(err, ErrVersionConflict) && attempt < m.maxRetries {
			m.l.LogWarnf("Hotel %s was modified concurrently, retry %d of %d", hotelID, attempt+1, m.maxRetries)

			continue
		}

		if err != nil {
			return nil, nil, err
		}

		if !m.txAudit && !ch.noop && len(ch.logs) > 0 {
			m.appendAudit(ctx, hotelID, ch.logs)
		}

		m.sync(ctx, ch)

		return property, ch, nil
	}
}

func (m *Manager) attempt(ctx context.Context, hotelID string, fn step) (_ *calendar.Property, _ *change, err error) {
	current, err := m.storage.GetProperty(ctx, hotelID)
	if err != nil {
		return nil, nil, fmt.Errorf("get property %s: %w", hotelID, err)
	}

	ch, err := fn(ctx, current.Clone())
	if err != nil {
		return nil, nil, err
	}

	if ch.noop {
		return current, ch, nil
	}

	next := current.Clone()
	next.Version++

	if ch.rooms != nil {
		next.Rooms = ch.rooms
	}

	if ch.reservation != nil {
		next.Reservations = calendar.ReplaceReservation(next.Reservations, *ch.reservation)
	}

	ctx, err = m.storage.BeginTransaction(ctx, "SERIALIZABLE")
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback transaction of hotel %s after panic %v: %v", hotelID, p, rbErr)
			}

			panic(p)
		}

		if err != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback transaction of hotel %s after error %v: %v", hotelID, err, rbErr)
			}

			m.l.LogDebugf("Transaction of hotel %s has been roll backed", hotelID)

			return
		}

		if err = m.storage.CommitTransaction(ctx); err != nil {
			err = fmt.Errorf("commit transaction: %w", err)

			return
		}

		m.l.LogDebugf("Hotel %s saved at version %d", hotelID, next.Version)
	}()

	if err = m.storage.SaveProperty(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("save property %s: %w", hotelID, err)
	}

	if ch.newKey && ch.reservation != nil {
		if err = m.storage.SaveIdempotencyKey(ctx, hotelID, ch.reservation.ID); err != nil {
			return nil, nil, fmt.Errorf("save idempotency key: %w", err)
		}
	}

	if m.txAudit && len(ch.logs) > 0 {
		if err = m.audit.AppendPriceChanges(ctx, hotelID, ch.logs); err != nil {
			return nil, nil, fmt.Errorf("append price changes: %w", err)
		}
	}

	return next, ch, nil
}

// appendAudit records committed price changes. The rates are already saved, so
// a failure is logged and not returned.
func (m *Manager) appendAudit(ctx context.Context, hotelID string, logs []calendar.PriceChangeLog) {
	if err := m.audit.AppendPriceChanges(ctx, hotelID, logs); err != nil {
		m.l.LogErrorf("Could not append %d price changes of hotel %s: %v", len(logs), hotelID, err)
	}
}

func (m *Manager) sync(ctx context.Context, ch *change) {
	if !m.autoSync || m.publisher == nil || ch.sync == nil || len(ch.sync.Rooms) == 0 {
		return
	}

	if err := m.publisher.PublishRates(ctx, ch.sync); err != nil {
		m.l.LogErrorf("Could not push rates of hotel %s to channel manager: %v", ch.sync.HotelID, err)

		return
	}

	m.l.LogInfo("Pushed %s rates of hotel %s to channel manager", ch.sync.RoomType, ch.sync.HotelID)
}

// rateUpdate collects the rates of roomType rooms on dates.
func (m *Manager) rateUpdate(
	hotelID string,
	roomType calendar.RoomType,
	action, user string,
	rooms []calendar.Room,
	dates []calendar.Date,
) *RateUpdate {
	update := &RateUpdate{
		HotelID:   hotelID,
		RoomType:  roomType,
		Action:    action,
		User:      user,
		Rooms:     nil,
		CreatedAt: m.now().UTC(),
	}

	for _, room := range calendar.RoomsOfType(rooms, roomType) {
		rates := make(map[calendar.Date]calendar.DailyRate, len(dates))
		for _, d := range dates {
			rates[d] = m.engine.ResolveRate(room, d)
		}

		update.Rooms = append(update.Rooms, RoomRates{RoomID: room.ID, Rates: rates})
	}

	return update
}

func (m *Manager) Property(ctx context.Context, hotelID string) (_ *calendar.Property, err error) {
	ctx, span := startSpan(ctx, "Property", hotelID)
	defer func() { endSpan(span, err) }()

	property, err := m.storage.GetProperty(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("get property %s: %w", hotelID, err)
	}

	return property, nil
}

func findRoom(property *calendar.Property, roomID string) (calendar.Room, error) {
	room, ok := property.Room(roomID)
	if !ok {
		return calendar.Room{}, fmt.Errorf("room %q: %w", roomID, calendar.ErrRoomNotFound)
	}

	return room, nil
}

func checkBoard(room calendar.Room, board calendar.BoardType) error {
	if board == "" || room.OffersBoard(board) {
		return nil
	}

	inputErr := newInputError()
	inputErr.addError("boardType", fmt.Sprintf("room %s does not offer %s", room.Number, board))

	return inputErr
}

func (m *Manager) Quote(ctx context.Context, hotelID string, req *QuoteRequest) (_ *calendar.Quote, err error) {
	ctx, span := startSpan(ctx, "Quote", hotelID)
	defer func() { endSpan(span, err) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	if err := m.checkStay(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}

	property, err := m.Property(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	room, err := findRoom(property, req.RoomID)
	if err != nil {
		return nil, err
	}

	if err := checkBoard(room, req.BoardType); err != nil {
		return nil, err
	}

	quote, err := m.engine.QuoteStay(room, calendar.QuoteInput{
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Source:    req.Source,
		BoardType: req.BoardType,
		Extras:    req.Extras,
	})
	if err != nil {
		return nil, fmt.Errorf("quote stay: %w", err)
	}

	return &quote, nil
}

// CreateReservation books a room. Repeating a call with the same idempotency
// key returns the reservation made by the first one.
func (m *Manager) CreateReservation(ctx context.Context, hotelID string, input *BookInput) (_ *calendar.Reservation, err error) {
	ctx, span := startSpan(ctx, "CreateReservation", hotelID)
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := m.checkStay(input.CheckIn, input.CheckOut); err != nil {
		return nil, err
	}

	input.prepare()

	_, ch, err := m.mutate(ctx, hotelID, func(ctx context.Context, property *calendar.Property) (*change, error) {
		id, err := m.storage.GetReservationIDByIdempotencyKey(ctx, hotelID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return nil, fmt.Errorf("get reservation by idempotency key: %w", err)
		}

		if err == nil {
			existing, ok := property.Reservation(id)
			if !ok {
				return nil, fmt.Errorf("reservation %q of idempotency key: %w", id, calendar.ErrReservationNotFound)
			}

			return &change{reservation: &existing, noop: true}, nil //nolint:exhaustruct
		}

		room, err := findRoom(property, input.RoomID)
		if err != nil {
			return nil, err
		}

		if err := checkBoard(room, input.BoardType); err != nil {
			return nil, err
		}

		quote, err := m.engine.QuoteStay(room, calendar.QuoteInput{
			CheckIn:   input.CheckIn,
			CheckOut:  input.CheckOut,
			Source:    input.Source,
			BoardType: input.BoardType,
			Extras:    input.Extras,
		})
		if err != nil {
			return nil, fmt.Errorf("quote stay: %w", err)
		}

		res := calendar.Reservation{
			ID:        "",
			GuestName: input.GuestName,
			RoomID:    room.ID,
			CheckIn:   input.CheckIn,
			CheckOut:  input.CheckOut,
			Source:    input.Source,
			Status:    calendar.StatusConfirmed,
			Amount:    quote.Total,
			Paid:      input.Paid,
			BoardType: input.BoardType,
			Extras:    input.Extras,
			Notes:     input.Notes,
		}

		if err := m.engine.ValidateBooking(property.Rooms, property.Reservations, res); err != nil {
			return nil, fmt.Errorf("validate booking: %w", err)
		}

		// ids are spent only on bookings that passed validation
		if res.ID, err = m.idGenerator.GetID(ctx); err != nil {
			return nil, ErrNextID
		}

		return &change{reservation: &res, newKey: true}, nil //nolint:exhaustruct
	})
	if err != nil {
		return nil, err
	}

	if !ch.noop {
		m.l.LogInfo("Reservation %s created in hotel %s for room %s", ch.reservation.ID, hotelID, ch.reservation.RoomID)
	}

	return ch.reservation, nil
}

// MoveReservation relocates a reservation to another room or arrival date,
// keeping its length of stay.
func (m *Manager) MoveReservation(
	ctx context.Context,
	hotelID, reservationID string,
	input *MoveInput,
) (_ *calendar.Reservation, err error) {
	ctx, span := startSpan(ctx, "MoveReservation", hotelID)
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}

	_, ch, err := m.mutate(ctx, hotelID, func(_ context.Context, property *calendar.Property) (*change, error) {
		moved, err := m.engine.Relocate(property.Rooms, property.Reservations, calendar.RelocateInput{
			ReservationID: reservationID,
			RoomID:        input.RoomID,
			CheckIn:       input.CheckIn,
		})
		if err != nil {
			return nil, fmt.Errorf("relocate reservation: %w", err)
		}

		return &change{reservation: &moved}, nil //nolint:exhaustruct
	})
	if err != nil {
		return nil, err
	}

	return ch.reservation, nil
}

func (m *Manager) ChangeStatus(
	ctx context.Context,
	hotelID, reservationID string,
	input *StatusInput,
) (_ *calendar.Reservation, err error) {
	ctx, span := startSpan(ctx, "ChangeStatus", hotelID)
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}

	_, ch, err := m.mutate(ctx, hotelID, func(_ context.Context, property *calendar.Property) (*change, error) {
		res, ok := property.Reservation(reservationID)
		if !ok {
			return nil, fmt.Errorf("reservation %q: %w", reservationID, calendar.ErrReservationNotFound)
		}

		updated, err := calendar.Transition(res, input.Status)
		if err != nil {
			return nil, err
		}

		return &change{reservation: &updated}, nil //nolint:exhaustruct
	})
	if err != nil {
		return nil, err
	}

	m.l.LogInfo("Reservation %s of hotel %s is now %s", reservationID, hotelID, ch.reservation.Status)

	return ch.reservation, nil
}

func (m *Manager) BulkUpdate(ctx context.Context, hotelID string, input *BulkRatesInput) (_ *calendar.BulkUpdateResult, err error) {
	ctx, span := startSpan(ctx, "BulkUpdate", hotelID)
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := m.checkRange(input.From, input.To); err != nil {
		return nil, err
	}

	var result *calendar.BulkUpdateResult

	user := m.user(ctx)

	_, _, err = m.mutate(ctx, hotelID, func(_ context.Context, property *calendar.Property) (*change, error) {
		res, err := m.engine.ApplyBulkUpdate(property.Rooms, calendar.BulkUpdateInput{
			RoomType: input.RoomType,
			From:     input.From,
			To:       input.To,
			Days:     input.dayMask(),
			Patch:    input.Patch,
			User:     user,
		})
		if err != nil {
			return nil, fmt.Errorf("apply bulk update: %w", err)
		}

		result = res

		return &change{ //nolint:exhaustruct
			rooms: result.Rooms,
			logs:  result.ChangeLogs,
			sync:  m.rateUpdate(hotelID, input.RoomType, calendar.ActionBulkUpdate, user, result.Rooms, result.Dates),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	m.l.LogInfo("Bulk update of %s in hotel %s touched %d dates, %d price changes",
		input.RoomType, hotelID, len(result.Dates), len(result.ChangeLogs))

	return result, nil
}

// QuickAction applies a one-click strategy to one date of a room type.
func (m *Manager) QuickAction(
	ctx context.Context,
	hotelID string,
	input *QuickActionInput,
) (_ *calendar.BulkUpdateResult, err error) {
	ctx, span := startSpan(ctx, "QuickAction", hotelID)
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}

	var result *calendar.BulkUpdateResult

	user := m.user(ctx)
	dates := []calendar.Date{input.Date}

	_, _, err = m.mutate(ctx, hotelID, func(_ context.Context, property *calendar.Property) (*change, error) {
		result = m.engine.ApplyAdjustment(property.Rooms, calendar.Adjustment{
			RoomType: input.RoomType,
			Dates:    dates,
			Adjuster: input.Strategy,
			Action:   input.Strategy.Action(),
			User:     user,
		})

		return &change{ //nolint:exhaustruct
			rooms: result.Rooms,
			logs:  result.ChangeLogs,
			sync:  m.rateUpdate(hotelID, input.RoomType, input.Strategy.Action(), user, result.Rooms, dates),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SuggestPricing asks the advisor for a recommendation on a room type given its
// current base price and occupancy over the requested nights.
func (m *Manager) SuggestPricing(
	ctx context.Context,
	hotelID string,
	req *SuggestionRequest,
) (_ *calendar.Suggestion, err error) {
	ctx, span := startSpan(ctx, "SuggestPricing", hotelID)
	defer func() { endSpan(span, err) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	if m.advisor == nil {
		return nil, fmt.Errorf("%w: no advisor configured", ErrAdvisorUnavailable)
	}

	property, err := m.Property(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	rooms := calendar.RoomsOfType(property.Rooms, req.RoomType)
	if len(rooms) == 0 {
		inputErr := newInputError()
		inputErr.addError("roomType", fmt.Sprintf("hotel has no %s rooms", req.RoomType))

		return nil, inputErr
	}

	from, to := window(req.From, req.To, m.today())
	if err := m.checkRange(from, to); err != nil {
		return nil, err
	}

	metrics, err := calendar.Summarize(rooms, roomTypeReservations(property.Reservations, rooms), from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize occupancy: %w", err)
	}

	suggestion, err := m.advisor.Suggest(ctx, &PricingContext{
		HotelName:       property.Name,
		RoomType:        req.RoomType,
		From:            from,
		To:              to,
		CurrentPrice:    m.engine.ResolveRate(rooms[0], from).Price,
		Occupancy:       metrics.Occupancy,
		CompetitorPrice: req.CompetitorPrice,
		Language:        req.Language,
	})
	if err != nil {
		m.l.LogErrorf("Pricing advisor failed for %s in hotel %s: %v", req.RoomType, hotelID, err)

		return nil, fmt.Errorf("%w: %w", ErrAdvisorUnavailable, err)
	}

	if !suggestion.Action.Valid() {
		return nil, fmt.Errorf("%w: %w: action %q", ErrAdvisorUnavailable, calendar.ErrInvalidSuggestion, suggestion.Action)
	}

	return suggestion, nil
}

func roomTypeReservations(reservations []calendar.Reservation, rooms []calendar.Room) []calendar.Reservation {
	ids := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		ids[room.ID] = struct{}{}
	}

	var out []calendar.Reservation

	for _, res := range reservations {
		if _, ok := ids[res.RoomID]; ok {
			out = append(out, res)
		}
	}

	return out
}

// ApplySuggestion scales the rates of a room type by an accepted suggestion.
func (m *Manager) ApplySuggestion(
	ctx context.Context,
	hotelID string,
	input *ApplySuggestionInput,
) (_ *calendar.BulkUpdateResult, err error) {
	ctx, span := startSpan(ctx, "ApplySuggestion", hotelID)
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}

	var result *calendar.BulkUpdateResult

	user := m.user(ctx)
	from, to := window(input.From, input.To, m.today())
	if err := m.checkRange(from, to); err != nil {
		return nil, err
	}

	_, _, err = m.mutate(ctx, hotelID, func(_ context.Context, property *calendar.Property) (*change, error) {
		res, err := m.engine.ApplySuggestedAdjustment(property.Rooms, calendar.SuggestedAdjustmentInput{
			RoomType:   input.RoomType,
			From:       from,
			To:         to,
			Direction:  input.Action,
			Percentage: input.Percentage,
			User:       user,
		})
		if err != nil {
			return nil, fmt.Errorf("apply suggestion: %w", err)
		}

		result = res

		if input.Action == calendar.SuggestHold {
			return &change{noop: true}, nil //nolint:exhaustruct
		}

		return &change{ //nolint:exhaustruct
			rooms: result.Rooms,
			logs:  result.ChangeLogs,
			sync:  m.rateUpdate(hotelID, input.RoomType, "AI Smart Strategy", user, result.Rooms, result.Dates),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// PriceHistory returns the latest price changes of a hotel, newest first.
func (m *Manager) PriceHistory(ctx context.Context, hotelID string, limit int) (_ []calendar.PriceChangeLog, err error) {
	ctx, span := startSpan(ctx, "PriceHistory", hotelID)
	defer func() { endSpan(span, err) }()

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	limit = min(limit, maxHistoryLimit)

	changes, err := m.audit.PriceChanges(ctx, hotelID, limit)
	if err != nil {
		return nil, fmt.Errorf("get price changes of hotel %s: %w", hotelID, err)
	}

	return changes, nil
}

// Stats reports revenue and occupancy of the hotel for the nights from..to.
func (m *Manager) Stats(ctx context.Context, hotelID string, from, to calendar.Date) (_ *calendar.Metrics, err error) {
	ctx, span := startSpan(ctx, "Stats", hotelID)
	defer func() { endSpan(span, err) }()

	if err := m.checkReport(from, to); err != nil {
		return nil, err
	}

	property, err := m.Property(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	metrics, err := calendar.Summarize(property.Rooms, property.Reservations, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return &metrics, nil
}

// checkReport validates the from..to range of a read-only view.
func (m *Manager) checkReport(from, to calendar.Date) error {
	inputErr := newInputError()
	checkDate(inputErr, "from", from)
	checkDate(inputErr, "to", to)

	if err := inputErr.orNil(); err != nil {
		return err
	}

	return m.checkRange(from, to)
}

// Grid returns the calendar view of every room for the dates from..to: the
// resolved rate and the reservation holding each night.
func (m *Manager) Grid(ctx context.Context, hotelID string, from, to calendar.Date) (_ []calendar.GridRow, err error) {
	ctx, span := startSpan(ctx, "Grid", hotelID)
	defer func() { endSpan(span, err) }()

	if err := m.checkReport(from, to); err != nil {
		return nil, err
	}

	property, err := m.Property(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	grid, err := m.engine.Grid(property.Rooms, property.Reservations, from, to)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}

	return grid, nil
}
