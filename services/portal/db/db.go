package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type LoginCookie struct {
	Username  string
	Cookies   string
	UpdatedAt int64
}

type PanelSnapshot struct {
	ID              int64
	Username        string
	RunID           string
	TakenAt         int64
	SinglePanelType bool
	Panels          string
}

const getLoginCookies = `
select username, cookies, updated_at from login_cookies
where username = ?
`

func (q *Queries) GetLoginCookies(ctx context.Context, username string) (LoginCookie, error) {
	row := q.db.QueryRowContext(ctx, getLoginCookies, username)
	var i LoginCookie
	err := row.Scan(&i.Username, &i.Cookies, &i.UpdatedAt)
	return i, err
}

const upsertLoginCookies = `
insert into login_cookies (username, cookies, updated_at)
values (?, ?, ?)
on conflict (username) do update set
    cookies = excluded.cookies,
    updated_at = excluded.updated_at
`

type UpsertLoginCookiesParams struct {
	Username  string
	Cookies   string
	UpdatedAt int64
}

func (q *Queries) UpsertLoginCookies(ctx context.Context, arg UpsertLoginCookiesParams) error {
	_, err := q.db.ExecContext(ctx, upsertLoginCookies, arg.Username, arg.Cookies, arg.UpdatedAt)
	return err
}

const deleteLoginCookies = `
delete from login_cookies where username = ?
`

func (q *Queries) DeleteLoginCookies(ctx context.Context, username string) error {
	_, err := q.db.ExecContext(ctx, deleteLoginCookies, username)
	return err
}

const createPanelSnapshot = `
insert into panel_snapshots (username, run_id, taken_at, single_panel_type, panels)
values (?, ?, ?, ?, ?)
`

type CreatePanelSnapshotParams struct {
	Username        string
	RunID           string
	TakenAt         int64
	SinglePanelType bool
	Panels          string
}

func (q *Queries) CreatePanelSnapshot(ctx context.Context, arg CreatePanelSnapshotParams) error {
	_, err := q.db.ExecContext(
		ctx, createPanelSnapshot,
		arg.Username, arg.RunID, arg.TakenAt, arg.SinglePanelType, arg.Panels,
	)
	return err
}

const getLatestPanelSnapshot = `
select id, username, run_id, taken_at, single_panel_type, panels
from panel_snapshots
where username = ?
order by taken_at desc
limit 1
`

func (q *Queries) GetLatestPanelSnapshot(ctx context.Context, username string) (PanelSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getLatestPanelSnapshot, username)
	var i PanelSnapshot
	err := row.Scan(&i.ID, &i.Username, &i.RunID, &i.TakenAt, &i.SinglePanelType, &i.Panels)
	return i, err
}
