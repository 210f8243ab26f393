package laddermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ladder tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ladders (
					name TEXT PRIMARY KEY,
					mu0 DOUBLE PRECISION NOT NULL,
					sigma0 DOUBLE PRECISION NOT NULL,
					beta DOUBLE PRECISION NOT NULL,
					tau DOUBLE PRECISION NOT NULL,
					draw_probability DOUBLE PRECISION NOT NULL,
					teams_count INTEGER NOT NULL DEFAULT 0,
					players_per_team INTEGER NOT NULL DEFAULT 0,
					owner_identity TEXT NOT NULL,
					next_sequence BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_ladders_owner ON ladders(owner_identity);
			`); err != nil {
				return fmt.Errorf("failed to create ladders table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ladder_matches (
					ladder TEXT NOT NULL REFERENCES ladders(name) ON DELETE CASCADE,
					sequence BIGINT NOT NULL,
					played_at TIMESTAMPTZ NOT NULL,
					outcome JSONB NOT NULL,
					reported_by TEXT NOT NULL DEFAULT '',
					removed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (ladder, sequence)
				);
				CREATE INDEX IF NOT EXISTS idx_ladder_matches_active
					ON ladder_matches(ladder, sequence) WHERE removed_at IS NULL;
			`); err != nil {
				return fmt.Errorf("failed to create ladder_matches table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ladder_players (
					ladder TEXT NOT NULL REFERENCES ladders(name) ON DELETE CASCADE,
					name TEXT NOT NULL,
					mu DOUBLE PRECISION NOT NULL,
					sigma DOUBLE PRECISION NOT NULL,
					last_seen_sequence BIGINT NOT NULL,
					games_count INTEGER NOT NULL DEFAULT 0,
					wins_count INTEGER NOT NULL DEFAULT 0,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (ladder, name)
				);
				CREATE INDEX IF NOT EXISTS idx_ladder_players_lower_name
					ON ladder_players(ladder, lower(name) text_pattern_ops);
			`); err != nil {
				return fmt.Errorf("failed to create ladder_players table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ladder_player_history (
					ladder TEXT NOT NULL,
					player TEXT NOT NULL,
					sequence BIGINT NOT NULL,
					played_at TIMESTAMPTZ NOT NULL,
					mu DOUBLE PRECISION NOT NULL,
					sigma DOUBLE PRECISION NOT NULL,
					PRIMARY KEY (ladder, player, sequence),
					FOREIGN KEY (ladder, player) REFERENCES ladder_players(ladder, name) ON DELETE CASCADE
				);
			`); err != nil {
				return fmt.Errorf("failed to create ladder_player_history table: %w", err)
			}

			fmt.Println("Ladder tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ladder tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS ladder_player_history;
			DROP TABLE IF EXISTS ladder_players;
			DROP TABLE IF EXISTS ladder_matches;
			DROP TABLE IF EXISTS ladders;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop ladder tables: %w", err)
		}
		return nil
	})
}
