package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNotFound     = errors.New("transfer not found")
	ErrDuplicateKey = errors.New("duplicate transfer_id")
)

// Postgres implementa o store de registros de transferência
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// FindByTransferID busca o registro pela chave de idempotência
func (p *Postgres) FindByTransferID(ctx context.Context, transferID string) (*Record, error) {
	var rec Record
	err := p.db.QueryRowContext(ctx, `
		SELECT id, transfer_id, from_account_id, to_account_id, amount, status, version, created_at
		FROM transfers WHERE transfer_id=$1`, transferID).
		Scan(&rec.ID, &rec.TransferID, &rec.FromAccountID, &rec.ToAccountID, &rec.Amount, &rec.Status, &rec.Version, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertOrFetch insere o registro ou, se outro request já inseriu a mesma chave,
// devolve o registro vencedor (created=false). A unique constraint em transfer_id
// é o ponto de linearização: o insert concorrente bloqueia até a transação
// vencedora resolver, então o re-read enxerga a linha commitada.
func (p *Postgres) InsertOrFetch(ctx context.Context, rec *Record) (*Record, bool, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO transfers (transfer_id, from_account_id, to_account_id, amount, status)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (transfer_id) DO NOTHING
		RETURNING id, version, created_at`,
		rec.TransferID, rec.FromAccountID, rec.ToAccountID, rec.Amount, rec.Status).
		Scan(&rec.ID, &rec.Version, &rec.CreatedAt)
	if err == nil {
		return rec, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	existing, err := p.FindByTransferID(ctx, rec.TransferID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Save insere sem reconciliação de conflito; usado pelo fluxo sem chave,
// que gera transfer_id próprio. Conflito vira ErrDuplicateKey.
func (p *Postgres) Save(ctx context.Context, rec *Record) (*Record, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO transfers (transfer_id, from_account_id, to_account_id, amount, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, version, created_at`,
		rec.TransferID, rec.FromAccountID, rec.ToAccountID, rec.Amount, rec.Status).
		Scan(&rec.ID, &rec.Version, &rec.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return rec, nil
}

// DeleteOlderThan remove registros criados antes do cutoff e retorna quantos foram
func (p *Postgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM transfers WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// isDuplicateKey detecta violação de unique constraint (código 23505 do Postgres)
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
