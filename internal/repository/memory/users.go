package memory

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

func (q queries) UserByID(_ context.Context, id uint64) (model.User, error) {
	defer q.enter()()
	u, ok := q.db.t.users[id]
	if !ok {
		return notFound[model.User]()
	}
	return u, nil
}

func (q queries) UserByEmail(_ context.Context, email string) (model.User, error) {
	defer q.enter()()
	for _, u := range q.db.t.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return notFound[model.User]()
}

func (q queries) InsertUser(_ context.Context, u *model.User) error {
	defer q.enter()()
	for _, existing := range q.db.t.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrConflict
		}
	}
	u.ID = q.db.t.next("users")
	u.CreatedAt, u.UpdatedAt = now(), now()
	q.db.t.users[u.ID] = *u
	return nil
}

func (q queries) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	defer q.enter()()
	if _, ok := q.db.t.users[userID]; !ok {
		return repository.ErrConflict
	}
	if _, ok := q.db.t.refresh[tokenHash]; ok {
		return repository.ErrConflict
	}
	q.db.t.refresh[tokenHash] = refreshRow{userID: userID, exp: exp.UTC()}
	return nil
}

func (q queries) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	defer q.enter()()
	row, ok := q.db.t.refresh[tokenHash]
	if !ok || row.revoked || time.Now().UTC().After(row.exp) {
		return 0, sql.ErrNoRows
	}
	return row.userID, nil
}

func (q queries) RevokeRefresh(_ context.Context, tokenHash string) error {
	defer q.enter()()
	if row, ok := q.db.t.refresh[tokenHash]; ok {
		row.revoked = true
		q.db.t.refresh[tokenHash] = row
	}
	return nil
}

func (q queries) RevokeAllRefresh(_ context.Context, userID uint64) error {
	defer q.enter()()
	for k, row := range q.db.t.refresh {
		if row.userID == userID {
			row.revoked = true
			q.db.t.refresh[k] = row
		}
	}
	return nil
}
