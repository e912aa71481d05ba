package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/helpdesk"
	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/querier"
)

//go:embed seed_catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	HelpdeskCategories []CatalogCategory       `yaml:"helpdesk_categories"`
	ReviewCategories   []CatalogReviewCategory `yaml:"review_categories"`
}

type CatalogCategory struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type CatalogReviewCategory struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Weight      float64 `yaml:"weight"`
}

// LoadCatalog parses the seed catalog at path, or the embedded default when
// path is empty.
func LoadCatalog(path string) (Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Catalog{}, fmt.Errorf("read seed catalog: %w", err)
		}
		raw = data
	}
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse seed catalog: %w", err)
	}
	for i, c := range catalog.HelpdeskCategories {
		if strings.TrimSpace(c.Name) == "" {
			return Catalog{}, fmt.Errorf("helpdesk category %d has no name", i)
		}
		if c.Icon == "" {
			catalog.HelpdeskCategories[i].Icon = helpdesk.DefaultCategoryIcon
		}
	}
	for i, c := range catalog.ReviewCategories {
		if strings.TrimSpace(c.Name) == "" {
			return Catalog{}, fmt.Errorf("review category %d has no name", i)
		}
		if c.Weight < 0 {
			return Catalog{}, fmt.Errorf("review category %q has negative weight", c.Name)
		}
		if c.Weight == 0 {
			catalog.ReviewCategories[i].Weight = 1
		}
	}
	return catalog, nil
}

// Seed makes sure the configured organization, its admin account and the
// default categories exist. It is safe to run on every start.
func Seed(ctx context.Context, db querier.Querier, cfg config.Config) error {
	catalog, err := LoadCatalog(cfg.SeedCatalogPath)
	if err != nil {
		return err
	}

	orgID, err := ensureOrganization(ctx, db, cfg.SeedOrgName)
	if err != nil {
		return err
	}
	if err := ensureAdminUser(ctx, db, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}
	for _, c := range catalog.HelpdeskCategories {
		if _, err := db.Exec(ctx, `
      INSERT INTO helpdesk_categories (organization_id, name, icon)
      VALUES ($1, $2, $3)
      ON CONFLICT (organization_id, name) DO NOTHING
    `, orgID, c.Name, c.Icon); err != nil {
			return fmt.Errorf("seed helpdesk category %q: %w", c.Name, err)
		}
	}
	for i, c := range catalog.ReviewCategories {
		if _, err := db.Exec(ctx, `
      INSERT INTO review_categories (organization_id, name, description, weight, display_order)
      VALUES ($1, $2, $3, $4, $5)
      ON CONFLICT (organization_id, name) DO NOTHING
    `, orgID, c.Name, c.Description, c.Weight, i+1); err != nil {
			return fmt.Errorf("seed review category %q: %w", c.Name, err)
		}
	}
	return nil
}

func ensureOrganization(ctx context.Context, db querier.Querier, name string) (string, error) {
	var id string
	err := db.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	if err := db.QueryRow(ctx, "INSERT INTO organizations (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// ensureAdminUser creates an HR admin with a matching employee profile so the
// account can raise tickets and own goals.
func ensureAdminUser(ctx context.Context, db querier.Querier, orgID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	var employeeID string
	if err := db.QueryRow(ctx, `
    INSERT INTO employees (organization_id, first_name, last_name, email, job_title)
    VALUES ($1, 'HR', 'Administrator', $2, 'HR Administrator')
    RETURNING id
  `, orgID, email).Scan(&employeeID); err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
    INSERT INTO users (organization_id, employee_id, email, password_hash, role)
    VALUES ($1, $2, $3, $4, $5)
  `, orgID, employeeID, email, hash, auth.RoleHR)
	return err
}
