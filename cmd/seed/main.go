package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"shopapi/internal/config"
	"shopapi/internal/db"
	apperrors "shopapi/internal/errors"
	"shopapi/internal/logging"
	"shopapi/internal/model"
	"shopapi/internal/patch"
	"shopapi/internal/repository"
)

// SeedData is the layout of a seed document.
type SeedData struct {
	Products []SeedProduct `json:"products"`
	Todos    []SeedTodo    `json:"todos"`
}

// SeedProduct is one product of a seed document.
type SeedProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// SeedTodo is one todo of a seed document.
type SeedTodo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// record pairs a new item with the fields that refresh an existing one.
type record[T any] struct {
	id     string
	item   T
	fields patch.MergeSet
}

var source string

var seedCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Insert or refresh sample products and todos",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logging.New(cfg.LogLevel)

		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return err
		}

		data, err := load(cmd.Context(), source)
		if err != nil {
			return err
		}

		products, skipped := productRecords(data.Products, log)
		todos, skippedTodos := todoRecords(data.Todos, log)
		if n := skipped + skippedTodos; n > 0 {
			log.Warn("skipped invalid seed entries", "count", n)
		}

		productRepo, err := repository.NewCollection[model.Product](gormDB)
		if err != nil {
			return err
		}
		todoRepo, err := repository.NewCollection[model.Todo](gormDB)
		if err != nil {
			return err
		}

		created, updated, err := upsert(cmd.Context(), productRepo, products)
		if err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		log.Info("products seeded", "created", created, "updated", updated)

		created, updated, err = upsert(cmd.Context(), todoRepo, todos)
		if err != nil {
			return fmt.Errorf("seed todos: %w", err)
		}
		log.Info("todos seeded", "created", created, "updated", updated)
		return nil
	},
}

func main() {
	seedCmd.Flags().StringVarP(&source, "file", "f", "seed.json", "seed document path or http(s) URL")

	if err := seedCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the seed document from a local path or an http(s) URL.
func load(ctx context.Context, src string) (*SeedData, error) {
	var body []byte
	var err error
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		body, err = fetch(ctx, src)
	} else {
		body, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, err
	}

	var data SeedData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &data, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func productRecords(in []SeedProduct, log *slog.Logger) ([]record[model.Product], int) {
	out := make([]record[model.Product], 0, len(in))
	skipped := 0
	for _, p := range in {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			log.Warn("skipping product with invalid id", "id", p.ID)
			skipped++
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil || p.Name == "" {
			log.Warn("skipping invalid product", "id", p.ID)
			skipped++
			continue
		}
		out = append(out, record[model.Product]{
			id:     id.String(),
			item:   model.Product{ID: id, Name: p.Name, Description: p.Description, Price: price},
			fields: patch.MergeSet{"name": p.Name, "description": p.Description, "price": price.String()},
		})
	}
	return out, skipped
}

func todoRecords(in []SeedTodo, log *slog.Logger) ([]record[model.Todo], int) {
	out := make([]record[model.Todo], 0, len(in))
	skipped := 0
	for _, t := range in {
		id, err := uuid.Parse(t.ID)
		if err != nil || t.Title == "" || t.Description == "" {
			log.Warn("skipping invalid todo", "id", t.ID)
			skipped++
			continue
		}
		out = append(out, record[model.Todo]{
			id:     id.String(),
			item:   model.Todo{ID: id, Title: t.Title, Description: t.Description, Date: t.Date},
			fields: patch.MergeSet{"title": t.Title, "description": t.Description},
		})
	}
	return out, skipped
}

// upsert creates missing records and refreshes existing ones.
func upsert[T any](ctx context.Context, repo repository.ItemRepository[T], records []record[T]) (created int, updated int, err error) {
	for _, r := range records {
		_, err := repo.FindByID(ctx, r.id)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			item := r.item
			if err := repo.Create(ctx, &item); err != nil {
				return created, updated, fmt.Errorf("error creating %s: %w", r.id, err)
			}
			created++
		case err != nil:
			return created, updated, fmt.Errorf("error checking %s: %w", r.id, err)
		default:
			if _, err := repo.UpdateFields(ctx, r.id, r.fields); err != nil {
				return created, updated, fmt.Errorf("error updating %s: %w", r.id, err)
			}
			updated++
		}
	}
	return created, updated, nil
}
