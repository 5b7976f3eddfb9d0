package database

import (
	"context"
	"database/sql"
	"fmt"

	"discord-invite-tracker/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Invite tables. Each save replaces the table inside one transaction, so a
// crash leaves either the old or the new contents.

func (d *Database) LoadCounts(ctx context.Context) ([]models.InviteCount, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id, count FROM invite_counts ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.InviteCount
	for rows.Next() {
		var c models.InviteCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (d *Database) LoadAttribution(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT member_id, inviter_id FROM invited_by`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitedBy := make(map[string]string)
	for rows.Next() {
		var member, inviter string
		if err := rows.Scan(&member, &inviter); err != nil {
			return nil, err
		}
		invitedBy[member] = inviter
	}
	return invitedBy, rows.Err()
}

func (d *Database) SaveCounts(ctx context.Context, counts []models.InviteCount) error {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM invite_counts`); err != nil {
			return err
		}
		return copyRows(ctx, tx, pq.CopyIn("invite_counts", "position", "user_id", "count"), len(counts), func(i int) []interface{} {
			return []interface{}{i, counts[i].UserID, counts[i].Count}
		})
	})
	if err != nil {
		return fmt.Errorf("save invite_counts: %w", err)
	}
	d.logger.Debug("invite_counts replaced", zap.Int("rows", len(counts)))
	return nil
}

func (d *Database) SaveAttribution(ctx context.Context, invitedBy map[string]string) error {
	members := make([]string, 0, len(invitedBy))
	for m := range invitedBy {
		members = append(members, m)
	}
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM invited_by`); err != nil {
			return err
		}
		return copyRows(ctx, tx, pq.CopyIn("invited_by", "member_id", "inviter_id"), len(members), func(i int) []interface{} {
			return []interface{}{members[i], invitedBy[members[i]]}
		})
	})
	if err != nil {
		return fmt.Errorf("save invited_by: %w", err)
	}
	d.logger.Debug("invited_by replaced", zap.Int("rows", len(members)))
	return nil
}

// copyRows streams n rows through a COPY statement.
func copyRows(ctx context.Context, tx *sql.Tx, query string, n int, row func(i int) []interface{}) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return err
		}
	}
	// An empty Exec flushes the COPY buffer.
	_, err = stmt.ExecContext(ctx)
	return err
}
