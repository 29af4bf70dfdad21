package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingViewQuery = `
	SELECT b.id, b.start_time, b.end_time, b.status,
	       u.id, u.name, u.email,
	       i.id, i.name, i.description, i.available, i.owner_id, i.request_id
	FROM bookings b
	JOIN users u ON u.id = b.booker_id
	JOIN items i ON i.id = b.item_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_time, end_time, status) VALUES (?, ?, ?, ?, ?)`
	result, err := db.q.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		formatTime(booking.Start),
		formatTime(booking.End),
		booking.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.BookingView, error) {
	row := db.q.QueryRowContext(ctx, bookingViewQuery+` WHERE b.id = ?`, id)
	view, err := scanBookingView(row)
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return view, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	result, err := db.q.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return requireAffected(result, "booking", id)
}

func (db *DB) GetBookingsByBooker(
	ctx context.Context,
	bookerID int64,
	state models.BookingState,
	now time.Time,
	page models.Page,
) ([]*models.BookingView, error) {
	return db.listBookings(ctx, `b.booker_id = ?`, bookerID, state, now, page)
}

func (db *DB) GetBookingsByItemOwner(
	ctx context.Context,
	ownerID int64,
	state models.BookingState,
	now time.Time,
	page models.Page,
) ([]*models.BookingView, error) {
	return db.listBookings(ctx, `i.owner_id = ?`, ownerID, state, now, page)
}

func (db *DB) listBookings(
	ctx context.Context,
	scope string,
	scopeID int64,
	state models.BookingState,
	now time.Time,
	page models.Page,
) ([]*models.BookingView, error) {
	cond, condArgs, ok := stateCondition(state, now)
	if !ok {
		return []*models.BookingView{}, nil
	}

	query := bookingViewQuery + ` WHERE ` + scope + cond + ` ORDER BY b.start_time DESC, b.id DESC LIMIT ? OFFSET ?`
	args := append([]any{scopeID}, condArgs...)
	args = append(args, page.Size, page.From)

	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings for state %s: %w", state, err)
	}
	defer rows.Close()

	views := make([]*models.BookingView, 0)
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// stateCondition is the SQL form of BookingState.Matches. ok is false for states
// that match nothing.
func stateCondition(state models.BookingState, now time.Time) (string, []any, bool) {
	ts := formatTime(now)
	switch state {
	case models.StateAll:
		return "", nil, true
	case models.StateCurrent:
		return ` AND b.start_time < ? AND b.end_time > ?`, []any{ts, ts}, true
	case models.StatePast:
		return ` AND b.end_time < ?`, []any{ts}, true
	case models.StateFuture:
		return ` AND b.start_time > ?`, []any{ts}, true
	case models.StateWaiting:
		return ` AND b.status = ?`, []any{models.StatusWaiting}, true
	case models.StateRejected:
		return ` AND b.status = ?`, []any{models.StatusRejected}, true
	default:
		return "", nil, false
	}
}

// GetLastBookings picks, per item, the approved booking that is over or under way
// with the latest end.
func (db *DB) GetLastBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error) {
	ts := formatTime(now)
	return db.pickPerItem(ctx, itemIDs,
		`(end_time < ? OR (start_time < ? AND end_time > ?))`, []any{ts, ts, ts},
		`end_time DESC, id DESC`)
}

// GetNextBookings picks, per item, the approved booking that starts soonest after now.
func (db *DB) GetNextBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error) {
	return db.pickPerItem(ctx, itemIDs,
		`start_time > ?`, []any{formatTime(now)},
		`start_time ASC, id ASC`)
}

func (db *DB) pickPerItem(
	ctx context.Context,
	itemIDs []int64,
	cond string,
	condArgs []any,
	order string,
) (map[int64]*models.Booking, error) {
	result := make(map[int64]*models.Booking, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	in, inArgs := inClause(itemIDs)
	query := `SELECT id, item_id, booker_id, start_time, end_time, status FROM (
                SELECT id, item_id, booker_id, start_time, end_time, status,
                       ROW_NUMBER() OVER (PARTITION BY item_id ORDER BY ` + order + `) AS rn
                FROM bookings
                WHERE item_id IN ` + in + ` AND status = ? AND ` + cond + `
              ) WHERE rn = 1`

	args := append(inArgs, models.StatusApproved)
	args = append(args, condArgs...)

	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings per item: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		result[b.ItemID] = b
	}
	return result, rows.Err()
}

func (db *DB) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	err := db.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings
                        WHERE booker_id = ? AND item_id = ? AND status = ? AND end_time < ?)`,
		bookerID, itemID, models.StatusApproved, formatTime(now)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return exists, nil
}

func scanBooking(s scanner) (*models.Booking, error) {
	var (
		b          models.Booking
		start, end string
	)
	if err := s.Scan(&b.ID, &b.ItemID, &b.BookerID, &start, &end, &b.Status); err != nil {
		return nil, err
	}
	var err error
	if b.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if b.End, err = parseTime(end); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookingView(s scanner) (*models.BookingView, error) {
	var (
		v          models.BookingView
		start, end string
		requestID  sql.NullInt64
	)
	err := s.Scan(
		&v.ID, &start, &end, &v.Status,
		&v.Booker.ID, &v.Booker.Name, &v.Booker.Email,
		&v.Item.ID, &v.Item.Name, &v.Item.Description, &v.Item.Available, &v.Item.OwnerID, &requestID,
	)
	if err != nil {
		return nil, err
	}
	if v.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if v.End, err = parseTime(end); err != nil {
		return nil, err
	}
	v.Item.RequestID = idPtr(requestID)
	return &v, nil
}
