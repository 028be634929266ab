// Package postgres implements the repositories over a pgx connection pool.
// Every entry mutation applies the entry write and its balance deltas inside
// one transaction, so the aggregate invariant holds even across failures.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id              UUID PRIMARY KEY,
    kind            TEXT NOT NULL,
    company         TEXT NOT NULL DEFAULT '',
    account_number  TEXT NOT NULL DEFAULT '',
    customer_name   TEXT NOT NULL DEFAULT '',
    customer_number TEXT NOT NULL DEFAULT '',
    customer_id     UUID,
    balance         NUMERIC NOT NULL DEFAULT 0,
    amount          NUMERIC NOT NULL DEFAULT 0,
    remarks         TEXT NOT NULL DEFAULT '',
    entry_by        TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_kind_created_idx ON entries (kind, created_at DESC);
CREATE INDEX IF NOT EXISTS entries_customer_idx ON entries (customer_id);

CREATE TABLE IF NOT EXISTS mobile_accounts (
    id            UUID PRIMARY KEY,
    company       TEXT NOT NULL,
    mobile_number TEXT NOT NULL UNIQUE,
    total_amount  NUMERIC NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS due_customers (
    id            UUID PRIMARY KEY,
    customer_name TEXT NOT NULL,
    mobile_number TEXT NOT NULL UNIQUE,
    total_given   NUMERIC NOT NULL DEFAULT 0,
    total_taken   NUMERIC NOT NULL DEFAULT 0,
    due_balance   NUMERIC NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);
`

// Store is the postgres-backed implementation of the repositories.
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Ready pings the pool for the readiness probe.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errs.ErrConflict
	}
	return err
}

// --- entries + reconciliation ---

const entryCols = `id, kind, company, account_number, customer_name, customer_number,
    COALESCE(customer_id, '00000000-0000-0000-0000-000000000000'::uuid),
    balance::text, amount::text, remarks, entry_by, created_at, updated_at`

func scanEntry(row pgx.Row) (ledger.Entry, error) {
	var (
		e               ledger.Entry
		balance, amount string
	)
	err := row.Scan(&e.ID, &e.Kind, &e.Company, &e.AccountNumber, &e.CustomerName,
		&e.CustomerNumber, &e.CustomerID, &balance, &amount, &e.Remarks, &e.EntryBy,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return ledger.Entry{}, mapErr(err)
	}
	if e.Balance, err = decimal.NewFromString(balance); err != nil {
		return ledger.Entry{}, err
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

// GetEntry returns one entry by id.
func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+entryCols+` FROM entries WHERE id = $1`, id)
	return scanEntry(row)
}

// CreateEntry persists the entry and applies its balance deltas in one
// transaction.
func (s *Store) CreateEntry(ctx context.Context, e ledger.Entry, deltas []ledger.BalanceDelta) (ledger.Entry, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO entries (id, kind, company, account_number, customer_name,
                customer_number, customer_id, balance, amount, remarks, entry_by,
                created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,'00000000-0000-0000-0000-000000000000'::uuid),$8,$9,$10,$11,$12,$13)`,
			e.ID, e.Kind, e.Company, e.AccountNumber, e.CustomerName, e.CustomerNumber,
			e.CustomerID, e.Balance.String(), e.Amount.String(), e.Remarks, e.EntryBy,
			e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return err
		}
		return applyDeltas(ctx, tx, deltas)
	})
	if err != nil {
		return ledger.Entry{}, mapErr(err)
	}
	return e, nil
}

// UpdateEntry replaces an existing entry and applies its balance deltas in
// one transaction.
func (s *Store) UpdateEntry(ctx context.Context, e ledger.Entry, deltas []ledger.BalanceDelta) (ledger.Entry, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE entries SET company=$2, account_number=$3, customer_name=$4,
                customer_number=$5, balance=$6, amount=$7, remarks=$8, entry_by=$9,
                updated_at=$10
            WHERE id = $1`,
			e.ID, e.Company, e.AccountNumber, e.CustomerName, e.CustomerNumber,
			e.Balance.String(), e.Amount.String(), e.Remarks, e.EntryBy, e.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return applyDeltas(ctx, tx, deltas)
	})
	if err != nil {
		return ledger.Entry{}, mapErr(err)
	}
	return e, nil
}

// DeleteEntry removes an entry and applies the reversal deltas in one
// transaction.
func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID, deltas []ledger.BalanceDelta) error {
	return mapErr(s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return applyDeltas(ctx, tx, deltas)
	}))
}

func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func applyDeltas(ctx context.Context, tx pgx.Tx, deltas []ledger.BalanceDelta) error {
	for _, d := range deltas {
		var (
			tag pgconn.CommandTag
			err error
		)
		switch d.Account.Kind {
		case ledger.AggregateDue:
			if d.Clamp {
				tag, err = tx.Exec(ctx, `
                    UPDATE due_customers SET
                        due_balance = GREATEST(0, due_balance + $2),
                        total_given = GREATEST(0, total_given + $3),
                        total_taken = GREATEST(0, total_taken + $4),
                        updated_at = now()
                    WHERE id = $1`,
					d.Account.CustomerID, d.Amount.String(), d.Given.String(), d.Taken.String())
			} else {
				tag, err = tx.Exec(ctx, `
                    UPDATE due_customers SET
                        due_balance = due_balance + $2,
                        total_given = total_given + $3,
                        total_taken = total_taken + $4,
                        updated_at = now()
                    WHERE id = $1`,
					d.Account.CustomerID, d.Amount.String(), d.Given.String(), d.Taken.String())
			}
		default:
			tag, err = tx.Exec(ctx, `
                UPDATE mobile_accounts SET
                    total_amount = total_amount + $2,
                    updated_at = now()
                WHERE mobile_number = $1`,
				d.Account.Number, d.Amount.String())
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
	}
	return nil
}

func entryConds(f ledger.EntryFilter) (string, []any) {
	conds := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.Kinds) > 0 {
		ks := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			ks[i] = string(k)
		}
		add("kind = ANY($%d)", ks)
	}
	if f.EntryBy != "" {
		add("entry_by = $%d", f.EntryBy)
	}
	if f.Company != "" {
		add("company = $%d", f.Company)
	}
	if f.NumberSearch != "" {
		add("customer_number ILIKE $%d", "%"+f.NumberSearch+"%")
	}
	if f.AccountNumber != "" {
		add("account_number = $%d", f.AccountNumber)
	}
	if f.CustomerID != uuid.Nil {
		add("customer_id = $%d", f.CustomerID)
	}
	if !f.Start.IsZero() {
		add("created_at >= $%d", f.Start)
	}
	if !f.End.IsZero() {
		add("created_at <= $%d", f.End)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(srt ledger.Sort) string {
	col := "created_at"
	if srt.Field == ledger.SortByAmount {
		col = "amount"
	}
	dir := "ASC"
	if srt.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

// ListEntries returns one page of matching entries plus the total match
// count.
func (s *Store) ListEntries(ctx context.Context, f ledger.EntryFilter, srt ledger.Sort, page ledger.Page) ([]ledger.Entry, int, error) {
	where, args := entryConds(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	q := `SELECT ` + entryCols + ` FROM entries` + where + orderClause(srt)
	if page.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, (page.Number-1)*page.Limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]ledger.Entry, 0, page.Limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, mapErr(rows.Err())
}

// SumEntries returns the amount sum over the full filtered set plus the sum
// of remarks values that parse as numbers.
func (s *Store) SumEntries(ctx context.Context, f ledger.EntryFilter) (decimal.Decimal, decimal.Decimal, error) {
	where, args := entryConds(f)
	var amountStr, remarksStr string
	err := s.pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount), 0)::text,
               COALESCE(SUM(CASE WHEN remarks ~ '^-?[0-9]+(\.[0-9]+)?$'
                                 THEN remarks::numeric ELSE 0 END), 0)::text
        FROM entries`+where, args...).Scan(&amountStr, &remarksStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, mapErr(err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	remarks, err := decimal.NewFromString(remarksStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return amount, remarks, nil
}

// CustomerNumberExists reports whether another entry already carries the
// given customer number.
func (s *Store) CustomerNumberExists(ctx context.Context, number string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM entries
            WHERE customer_number = $1 AND customer_number <> '' AND id <> $2
        )`, number, exclude).Scan(&exists)
	return exists, mapErr(err)
}

// --- mobile accounts ---

const accountCols = `id, company, mobile_number, total_amount::text, created_at, updated_at`

func scanAccount(row pgx.Row) (ledger.MobileAccount, error) {
	var (
		a     ledger.MobileAccount
		total string
	)
	err := row.Scan(&a.ID, &a.Company, &a.MobileNumber, &total, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return ledger.MobileAccount{}, mapErr(err)
	}
	if a.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return ledger.MobileAccount{}, err
	}
	return a, nil
}

// CreateMobileAccount persists a new account.
func (s *Store) CreateMobileAccount(ctx context.Context, a ledger.MobileAccount) (ledger.MobileAccount, error) {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO mobile_accounts (id, company, mobile_number, total_amount, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.Company, a.MobileNumber, a.TotalAmount.String(), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return ledger.MobileAccount{}, mapErr(err)
	}
	return a, nil
}

// GetMobileAccount returns one account by id.
func (s *Store) GetMobileAccount(ctx context.Context, id uuid.UUID) (ledger.MobileAccount, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountCols+` FROM mobile_accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// MobileAccountByNumber returns the account holding the given number.
func (s *Store) MobileAccountByNumber(ctx context.Context, number string) (ledger.MobileAccount, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountCols+` FROM mobile_accounts WHERE mobile_number = $1`, number)
	return scanAccount(row)
}

// UpdateMobileAccount changes the company/number fields.
func (s *Store) UpdateMobileAccount(ctx context.Context, a ledger.MobileAccount) (ledger.MobileAccount, error) {
	tag, err := s.pool.Exec(ctx, `
        UPDATE mobile_accounts SET company=$2, mobile_number=$3, updated_at=now()
        WHERE id = $1`, a.ID, a.Company, a.MobileNumber)
	if err != nil {
		return ledger.MobileAccount{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.MobileAccount{}, errs.ErrNotFound
	}
	return s.GetMobileAccount(ctx, a.ID)
}

// DeleteMobileAccount removes an account record.
func (s *Store) DeleteMobileAccount(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM mobile_accounts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func accountConds(f ledger.AccountFilter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Company != "" {
		add("company = $%d", f.Company)
	}
	if f.Search != "" {
		q := "%" + f.Search + "%"
		args = append(args, q)
		conds = append(conds, fmt.Sprintf("(company ILIKE $%d OR mobile_number ILIKE $%d)", len(args), len(args)))
	}
	if !f.Start.IsZero() {
		add("created_at >= $%d", f.Start)
	}
	if !f.End.IsZero() {
		add("created_at <= $%d", f.End)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListMobileAccounts returns one page of matching accounts plus the total
// match count.
func (s *Store) ListMobileAccounts(ctx context.Context, f ledger.AccountFilter, srt ledger.Sort, page ledger.Page) ([]ledger.MobileAccount, int, error) {
	where, args := accountConds(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mobile_accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	dir := "ASC"
	if srt.Desc {
		dir = "DESC"
	}
	q := `SELECT ` + accountCols + ` FROM mobile_accounts` + where + ` ORDER BY created_at ` + dir
	if page.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, (page.Number-1)*page.Limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]ledger.MobileAccount, 0, page.Limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, mapErr(rows.Err())
}

// SumMobileAccounts returns the TotalAmount sum over the full filtered set.
func (s *Store) SumMobileAccounts(ctx context.Context, f ledger.AccountFilter) (decimal.Decimal, error) {
	where, args := accountConds(f)
	var sumStr string
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0)::text FROM mobile_accounts`+where, args...).Scan(&sumStr)
	if err != nil {
		return decimal.Zero, mapErr(err)
	}
	return decimal.NewFromString(sumStr)
}

// --- due customers ---

const customerCols = `id, customer_name, mobile_number, total_given::text, total_taken::text,
    due_balance::text, created_at, updated_at`

func scanCustomer(row pgx.Row) (ledger.DueCustomer, error) {
	var (
		c                 ledger.DueCustomer
		given, taken, due string
	)
	err := row.Scan(&c.ID, &c.CustomerName, &c.MobileNumber, &given, &taken, &due,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return ledger.DueCustomer{}, mapErr(err)
	}
	if c.TotalGiven, err = decimal.NewFromString(given); err != nil {
		return ledger.DueCustomer{}, err
	}
	if c.TotalTaken, err = decimal.NewFromString(taken); err != nil {
		return ledger.DueCustomer{}, err
	}
	if c.DueBalance, err = decimal.NewFromString(due); err != nil {
		return ledger.DueCustomer{}, err
	}
	return c, nil
}

// CreateDueCustomer persists a new due customer.
func (s *Store) CreateDueCustomer(ctx context.Context, c ledger.DueCustomer) (ledger.DueCustomer, error) {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO due_customers (id, customer_name, mobile_number, total_given,
            total_taken, due_balance, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.CustomerName, c.MobileNumber, c.TotalGiven.String(), c.TotalTaken.String(),
		c.DueBalance.String(), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return ledger.DueCustomer{}, mapErr(err)
	}
	return c, nil
}

// GetDueCustomer returns one due customer by id.
func (s *Store) GetDueCustomer(ctx context.Context, id uuid.UUID) (ledger.DueCustomer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerCols+` FROM due_customers WHERE id = $1`, id)
	return scanCustomer(row)
}

// DueCustomerByPhone returns the customer holding the given mobile number.
func (s *Store) DueCustomerByPhone(ctx context.Context, number string) (ledger.DueCustomer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerCols+` FROM due_customers WHERE mobile_number = $1`, number)
	return scanCustomer(row)
}

// UpdateDueCustomer changes the name/number fields.
func (s *Store) UpdateDueCustomer(ctx context.Context, c ledger.DueCustomer) (ledger.DueCustomer, error) {
	tag, err := s.pool.Exec(ctx, `
        UPDATE due_customers SET customer_name=$2, mobile_number=$3, updated_at=now()
        WHERE id = $1`, c.ID, c.CustomerName, c.MobileNumber)
	if err != nil {
		return ledger.DueCustomer{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.DueCustomer{}, errs.ErrNotFound
	}
	return s.GetDueCustomer(ctx, c.ID)
}

// DeleteDueCustomer removes a customer record.
func (s *Store) DeleteDueCustomer(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM due_customers WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListDueCustomers returns one page of matching customers plus the total
// match count, newest first.
func (s *Store) ListDueCustomers(ctx context.Context, f ledger.CustomerFilter, page ledger.Page) ([]ledger.DueCustomer, int, error) {
	where := ""
	args := []any{}
	if f.Search != "" {
		where = ` WHERE customer_name ILIKE $1 OR mobile_number ILIKE $1`
		args = append(args, "%"+f.Search+"%")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM due_customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	q := `SELECT ` + customerCols + ` FROM due_customers` + where + ` ORDER BY created_at DESC`
	if page.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, (page.Number-1)*page.Limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]ledger.DueCustomer, 0, page.Limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, mapErr(rows.Err())
}

// --- users ---

// CreateUser persists a login identity; names are unique.
func (s *Store) CreateUser(ctx context.Context, u ledger.User) (ledger.User, error) {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO users (id, name, password_hash, created_at)
        VALUES ($1,$2,$3,$4)`, u.ID, u.Name, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return ledger.User{}, mapErr(err)
	}
	return u, nil
}

// UserByName returns the user with the given login name.
func (s *Store) UserByName(ctx context.Context, name string) (ledger.User, error) {
	var u ledger.User
	err := s.pool.QueryRow(ctx, `
        SELECT id, name, password_hash, created_at FROM users WHERE name = $1`, name).
		Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return ledger.User{}, mapErr(err)
	}
	return u, nil
}

// UpdateUserPassword replaces the stored password hash for a user.
func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
