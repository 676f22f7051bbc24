package policy

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed Provider. It exists so the compile shell can be
// exercised end-to-end without the platform's real database layer; the
// platform substitutes its own Provider in production.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// schema. Safe to call repeatedly on the same path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - foreign key enforcement
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetPolicy implements Provider. A missing row yields the default snapshot.
func (s *Store) GetPolicy(ctx context.Context, tenantID, agentID string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT max_depth, max_fanout, max_children_total, allowed_scopes, enforce_published_only
		FROM tenant_policies
		WHERE tenant_id = ? AND agent_id = ?`,
		tenantID, agentID)

	var (
		snap      Snapshot
		scopesRaw sql.NullString
		published int
	)
	err := row.Scan(&snap.MaxDepth, &snap.MaxFanout, &snap.MaxChildrenTotal, &scopesRaw, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("querying tenant policy: %w", err)
	}

	snap.EnforcePublishedOnly = published != 0
	if scopesRaw.Valid && scopesRaw.String != "" {
		if err := json.Unmarshal([]byte(scopesRaw.String), &snap.AllowedScopes); err != nil {
			return Snapshot{}, fmt.Errorf("decoding allowed_scopes: %w", err)
		}
	}
	return snap, nil
}

// SetPolicy stores the limits for a (tenant, agent) pair.
func (s *Store) SetPolicy(ctx context.Context, tenantID, agentID string, snap Snapshot) error {
	var scopesRaw any
	if snap.AllowedScopes != nil {
		data, err := json.Marshal(snap.AllowedScopes)
		if err != nil {
			return fmt.Errorf("encoding allowed_scopes: %w", err)
		}
		scopesRaw = string(data)
	}

	published := 0
	if snap.EnforcePublishedOnly {
		published = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenant_policies (tenant_id, agent_id, max_depth, max_fanout, max_children_total, allowed_scopes, enforce_published_only)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, agent_id) DO UPDATE SET
			max_depth = excluded.max_depth,
			max_fanout = excluded.max_fanout,
			max_children_total = excluded.max_children_total,
			allowed_scopes = excluded.allowed_scopes,
			enforce_published_only = excluded.enforce_published_only`,
		tenantID, agentID, snap.MaxDepth, snap.MaxFanout, snap.MaxChildrenTotal, scopesRaw, published)
	if err != nil {
		return fmt.Errorf("storing tenant policy: %w", err)
	}
	return nil
}

// GetAllowlist implements Provider. No rows yields an empty set.
func (s *Store) GetAllowlist(ctx context.Context, tenantID, agentID string) (*AllowlistSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT target_agent_id, target_slug
		FROM agent_allowlists
		WHERE tenant_id = ? AND agent_id = ?
		ORDER BY target_agent_id, target_slug`,
		tenantID, agentID)
	if err != nil {
		return nil, fmt.Errorf("querying allowlist: %w", err)
	}
	defer rows.Close()

	set := &AllowlistSet{
		AgentIDs: make(map[string]bool),
		Slugs:    make(map[string]bool),
	}
	for rows.Next() {
		var id, slug sql.NullString
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("scanning allowlist row: %w", err)
		}
		if id.Valid && id.String != "" {
			set.AgentIDs[id.String] = true
		}
		if slug.Valid && slug.String != "" {
			set.Slugs[slug.String] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading allowlist rows: %w", err)
	}
	return set, nil
}

// AddAllowlistEntry records an allowed spawn target for an orchestrator.
func (s *Store) AddAllowlistEntry(ctx context.Context, tenantID, agentID, targetID, targetSlug string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO agent_allowlists (tenant_id, agent_id, target_agent_id, target_slug)
		VALUES (?, ?, ?, ?)`,
		tenantID, agentID, nullable(targetID), nullable(targetSlug))
	if err != nil {
		return fmt.Errorf("storing allowlist entry: %w", err)
	}
	return nil
}

// PutAgent registers an agent in the tenant's registry.
func (s *Store) PutAgent(ctx context.Context, tenantID string, agent Agent) error {
	published := 0
	if agent.Published {
		published = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (tenant_id, id, slug, name, published)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			slug = excluded.slug,
			name = excluded.name,
			published = excluded.published`,
		tenantID, agent.ID, agent.Slug, agent.Name, published)
	if err != nil {
		return fmt.Errorf("storing agent: %w", err)
	}
	return nil
}

// ResolveAgents implements Provider: fetch every agent matching any of the
// given ids or slugs. Unmatched references simply produce no row; the
// orchestration pass decides what an unresolved reference means.
func (s *Store) ResolveAgents(ctx context.Context, tenantID string, ids, slugs []string) ([]Agent, error) {
	if len(ids) == 0 && len(slugs) == 0 {
		return nil, nil
	}

	var (
		conds []string
		args  []any
	)
	args = append(args, tenantID)
	if len(ids) > 0 {
		conds = append(conds, "id IN ("+placeholders(len(ids))+")")
		for _, id := range ids {
			args = append(args, id)
		}
	}
	if len(slugs) > 0 {
		conds = append(conds, "slug IN ("+placeholders(len(slugs))+")")
		for _, slug := range slugs {
			args = append(args, slug)
		}
	}

	query := `
		SELECT id, slug, name, published
		FROM agents
		WHERE tenant_id = ? AND (` + strings.Join(conds, " OR ") + `)
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolving agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var (
			a         Agent
			published int
		)
		if err := rows.Scan(&a.ID, &a.Slug, &a.Name, &published); err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		a.Published = published != 0
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading agent rows: %w", err)
	}
	return agents, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
