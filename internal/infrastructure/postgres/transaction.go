package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// runInTx は fn をトランザクション内で実行する
// fn がエラーを返した場合はロールバックし、そのエラーをそのまま返す
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

// lockShowtime は上映回単位のアドバイザリロックを取得する
// ロックはトランザクション終了時に解放される
func lockShowtime(ctx context.Context, tx *sqlx.Tx, showtimeID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, showtimeID); err != nil {
		return fmt.Errorf("上映回ロックの取得に失敗: %w", err)
	}
	return nil
}
