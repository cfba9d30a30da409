package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// reservationSortColumns maps the public sort keys to columns. Only keys in
// this map can reach ORDER BY.
var reservationSortColumns = map[string]string{
	model.SortByID:            "r.id",
	model.SortByStartTime:     "r.start_time",
	model.SortByEndTime:       "r.end_time",
	model.SortByStatus:        "r.status",
	model.SortByUserID:        "r.user_id",
	model.SortByParkingSpotID: "r.parking_spot_id",
	model.SortByCreatedAt:     "r.created_at",
}

// SearchReservations filters reservations by q. Search matches the status
// or the spot number; Date selects reservations overlapping that UTC day.
func (r queries) SearchReservations(ctx context.Context, q model.ReservationQuery) ([]model.Reservation, error) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "(LOWER(r.status) LIKE ? OR LOWER(p.number) LIKE ?)")
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}
	if q.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, q.Status)
	}
	if q.UserID != 0 {
		where = append(where, "r.user_id = ?")
		args = append(args, q.UserID)
	}
	if q.ParkingSpotID != 0 {
		where = append(where, "r.parking_spot_id = ?")
		args = append(args, q.ParkingSpotID)
	}
	if q.Date != nil {
		day := q.Date.UTC()
		where = append(where, "r.start_time < ? AND r.end_time > ?")
		args = append(args, day.Add(24*time.Hour), day)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	col, ok := reservationSortColumns[q.SortBy]
	if !ok {
		col = "r.start_time"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		JOIN parking_spots p ON p.id = r.parking_spot_id
		WHERE ` + cond + `
		ORDER BY ` + col + ` ` + dir + `, r.id ` + dir

	out := []model.Reservation{}
	if err := sqlx.SelectContext(ctx, r.q, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
