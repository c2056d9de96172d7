// Command seed-db loads the catalog seed file into PostgreSQL and prints
// demo JWTs for manual API testing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lehoangvu/techstore/internal/domain/auth"
	"github.com/lehoangvu/techstore/internal/repository"
)

type colorJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type discountJSON struct {
	ID         int64            `json:"id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
}

type productJSON struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"isActive"`
	Colors    []colorJSON     `json:"colors"`
	Discounts []discountJSON  `json:"discounts"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	printDemoTokens()
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	for _, p := range products {
		_, err := pool.Exec(ctx, `INSERT INTO products (id, name, price, is_active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = $2, price = $3, is_active = $4`,
			p.ID, p.Name, p.Price, p.IsActive)
		if err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}

		for _, c := range p.Colors {
			_, err := pool.Exec(ctx, `INSERT INTO product_colors (id, product_id, name, quantity)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET name = $3, quantity = $4`,
				c.ID, p.ID, c.Name, c.Quantity)
			if err != nil {
				return errors.Wrapf(err, "upsert color %d of product %d", c.ID, p.ID)
			}
		}

		for _, d := range p.Discounts {
			_, err := pool.Exec(ctx, `INSERT INTO discounts (id, percentage, amount, start_date, end_date)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET percentage = $2, amount = $3, start_date = $4, end_date = $5`,
				d.ID, d.Percentage, d.Amount, d.StartDate, d.EndDate)
			if err != nil {
				return errors.Wrapf(err, "upsert discount %d", d.ID)
			}
			_, err = pool.Exec(ctx, `INSERT INTO product_discounts (product_id, discount_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				p.ID, d.ID)
			if err != nil {
				return errors.Wrapf(err, "link discount %d to product %d", d.ID, p.ID)
			}
		}
	}

	// Advance the sequences past the explicit seed IDs.
	for _, seq := range []string{
		`SELECT setval('products_id_seq', (SELECT COALESCE(MAX(id), 1) FROM products))`,
		`SELECT setval('product_colors_id_seq', (SELECT COALESCE(MAX(id), 1) FROM product_colors))`,
		`SELECT setval('discounts_id_seq', (SELECT COALESCE(MAX(id), 1) FROM discounts))`,
	} {
		if _, err := pool.Exec(ctx, seq); err != nil {
			return errors.Wrap(err, "advance sequence")
		}
	}

	slog.Info("seeded products", slog.Int("count", len(products)))
	return nil
}

// printDemoTokens mints a user and an admin token when STORE_JWT_SECRET is
// set, for manual testing against the seeded data.
func printDemoTokens() {
	secret := os.Getenv("STORE_JWT_SECRET")
	if secret == "" {
		return
	}

	for _, role := range []auth.Role{auth.RoleUser, auth.RoleAdmin} {
		userID := uuid.New()
		token, err := auth.SignToken([]byte(secret), userID, role, 24*time.Hour)
		if err != nil {
			slog.Error("mint demo token", slog.String("error", err.Error()))
			return
		}
		slog.Info("demo token",
			slog.String("role", string(role)),
			slog.String("user_id", userID.String()),
			slog.String("token", token))
	}
}
