package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Схема хранения — документная: сам документ лежит в jsonb, наружу
// вынесены только ключи и то, по чему фильтруем на старте.
func ddl() map[string]string {
	return map[string]string{
		"000_schema": `create schema if not exists vitrina;`,
		"100_view_templates": `
create table if not exists vitrina.view_templates (
  "id" text primary key,
  "doc" jsonb not null,
  "is_default" boolean not null default false,
  "updated_at" timestamp with time zone not null
);`,
		"110_view_templates_default_idx": `
create index if not exists view_templates_default_idx on vitrina.view_templates("is_default");`,
		"200_products": `
create table if not exists vitrina.products (
  "sku" text primary key,
  "doc" jsonb not null,
  "updated_at" timestamp with time zone not null
);`,
	}
}

// EnsureSchema накатывает idempotent DDL (create ... if not exists).
func EnsureSchema(db *sql.DB) error {
	return applyDDL(db, ddl())
}

func applyDDL(db *sql.DB, ddl map[string]string) error {
	// стабильно: по имени сущности
	keys := make([]string, 0, len(ddl))
	for k := range ddl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, k := range keys {
		sqlText := strings.TrimSpace(ddl[k])
		if sqlText == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			// pgx/stdlib возвращает *pgconn.PgError; duplicate_object (42710) игнорируем
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "42710" {
				log.Printf("DDL skipped (already exists): %s (%s)", pgErr.ConstraintName, strings.TrimSpace(pgErr.Message))
				continue
			}
			// подстраховка по фразе (на случай других объектов)
			e := strings.ToLower(err.Error())
			if strings.Contains(e, "already exists") || strings.Contains(e, "duplicate") {
				log.Printf("DDL skipped (already exists): %v", err)
				continue
			}
			return fmt.Errorf("DDL apply failed: %w", err)
		}
	}
	return nil
}
