package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vitrina/internal/catalog"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
)

// Open открывает пул под документные CRUD-запросы: нагрузка мелкая и
// редкая, пары соединений в простое достаточно. Ping сразу, чтобы кривой
// URL валил процесс на старте, а не на первом запросе.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Store — документный шлюз поверх Postgres. Реализует интерфейс
// api.Gateway; документы храним целиком в jsonb, ключ — натуральный
// (id шаблона, sku продукта), запись — upsert по ключу.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*catalog.Template, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`select "doc" from vitrina.view_templates where "id" = $1`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	var t catalog.Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) UpsertTemplate(ctx context.Context, t *catalog.Template) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
insert into vitrina.view_templates ("id", "doc", "is_default", "updated_at")
values ($1, $2, $3, $4)
on conflict ("id") do update
  set "doc" = excluded."doc",
      "is_default" = excluded."is_default",
      "updated_at" = excluded."updated_at"`,
		t.ID, raw, t.IsDefault, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert template %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from vitrina.view_templates where "id" = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete template %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]*catalog.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`select "doc" from vitrina.view_templates order by "id"`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Template
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var t catalog.Template
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, sku string) (*catalog.Product, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`select "doc" from vitrina.products where "sku" = $1`, sku).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", sku, err)
	}
	var p catalog.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", sku, err)
	}
	return &p, nil
}

func (s *Store) UpsertProduct(ctx context.Context, p *catalog.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product %s: %w", p.SKU, err)
	}
	_, err = s.db.ExecContext(ctx, `
insert into vitrina.products ("sku", "doc", "updated_at")
values ($1, $2, $3)
on conflict ("sku") do update
  set "doc" = excluded."doc",
      "updated_at" = excluded."updated_at"`,
		p.SKU, raw, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.SKU, err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, sku string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from vitrina.products where "sku" = $1`, sku)
	if err != nil {
		return false, fmt.Errorf("delete product %s: %w", sku, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`select "doc" from vitrina.products order by "sku"`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Product
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p catalog.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
