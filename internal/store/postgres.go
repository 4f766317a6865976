package store

import (
    "context"
    "crypto/sha256"
    "database/sql"
    "encoding/hex"
    "errors"
    "fmt"
    "time"

    _ "github.com/jackc/pgx/v5/stdlib"

    "github.com/yourorg/listing-api/listing"
)

type Store struct { DB *sql.DB }

func Open(dsn string) (*Store, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil { return nil, err }
    db.SetMaxOpenConns(10)
    db.SetMaxIdleConns(5)
    db.SetConnMaxLifetime(30 * time.Minute)
    return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Close() error {
    if s == nil || s.DB == nil { return nil }
    return s.DB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
    stmts := []string{
        `CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
        `CREATE TABLE IF NOT EXISTS property_definitions (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            property_key    TEXT NOT NULL,
            format          TEXT NOT NULL,
            payload         BYTEA NOT NULL,
            payload_sha256  TEXT NOT NULL,
            created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
            last_import_at  TIMESTAMPTZ
        );`,
        `CREATE UNIQUE INDEX IF NOT EXISTS ux_property_definitions_key ON property_definitions(property_key);`,
        `CREATE TABLE IF NOT EXISTS property_assets (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            property_key  TEXT NOT NULL REFERENCES property_definitions(property_key) ON DELETE CASCADE,
            kind          TEXT NOT NULL,
            name          TEXT NOT NULL,
            locator       TEXT NOT NULL,
            position      INTEGER NOT NULL,
            created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
        `CREATE INDEX IF NOT EXISTS idx_property_assets_key ON property_assets(property_key, kind, position);`,
    }
    for _, q := range stmts {
        if _, err := s.DB.ExecContext(ctx, q); err != nil { return err }
    }
    return nil
}

// Definitions implements listing.DefinitionSource.
func (s *Store) Definitions(ctx context.Context) ([]listing.Definition, error) {
    if s == nil || s.DB == nil { return nil, errors.New("nil db") }
    rows, err := s.DB.QueryContext(ctx, `SELECT property_key, format, payload FROM property_definitions ORDER BY property_key`)
    if err != nil { return nil, fmt.Errorf("query definitions: %w", err) }
    defer rows.Close()
    var out []listing.Definition
    for rows.Next() {
        var def listing.Definition
        var format string
        if err := rows.Scan(&def.Key, &format, &def.Data); err != nil { return nil, fmt.Errorf("scan definition: %w", err) }
        def.Format = listing.Format(format)
        out = append(out, def)
    }
    return out, rows.Err()
}

// Assets implements listing.AssetSource. Order within a property and kind
// is the stored position, which is the discovery order at import time.
func (s *Store) Assets(ctx context.Context) (listing.AssetPool, error) {
    if s == nil || s.DB == nil { return nil, errors.New("nil db") }
    rows, err := s.DB.QueryContext(ctx, `SELECT property_key, kind, name, locator FROM property_assets ORDER BY property_key, kind, position`)
    if err != nil { return nil, fmt.Errorf("query assets: %w", err) }
    defer rows.Close()
    pool := listing.AssetPool{}
    for rows.Next() {
        var key, kind string
        var a listing.Asset
        if err := rows.Scan(&key, &kind, &a.Name, &a.Locator); err != nil { return nil, fmt.Errorf("scan asset: %w", err) }
        pool.Add(key, listing.AssetKind(kind), a)
    }
    return pool, rows.Err()
}

type AssetInput struct {
    Kind    listing.AssetKind
    Name    string
    Locator string
}

type SnapshotInput struct {
    PropertyKey string
    Format      listing.Format
    Payload     []byte
    Assets      []AssetInput
}

type SnapshotResult struct {
    DefinitionID string
    Checksum     string
    Changed      bool
}

// Checksum identifies a snapshot's definition bytes and ordered asset list.
func Checksum(in SnapshotInput) string {
    h := sha256.New()
    h.Write([]byte(in.Format))
    h.Write([]byte{0})
    h.Write(in.Payload)
    for _, a := range in.Assets {
        h.Write([]byte{0})
        h.Write([]byte(string(a.Kind) + "\x1f" + a.Name + "\x1f" + a.Locator))
    }
    return hex.EncodeToString(h.Sum(nil))
}

// WriteSnapshot upserts one property's definition and replaces its asset
// list in a single transaction. Unchanged snapshots only touch last_import_at.
func (s *Store) WriteSnapshot(ctx context.Context, in SnapshotInput) (SnapshotResult, error) {
    var res SnapshotResult
    if s.DB == nil { return res, errors.New("nil db") }
    if in.PropertyKey == "" { return res, errors.New("property key required") }
    res.Checksum = Checksum(in)

    tx, err := s.DB.BeginTx(ctx, nil)
    if err != nil { return res, err }
    defer func() { if err != nil { _ = tx.Rollback() } }()

    var existing sql.NullString
    err = tx.QueryRowContext(ctx, `SELECT payload_sha256 FROM property_definitions WHERE property_key=$1 FOR UPDATE`, in.PropertyKey).Scan(&existing)
    if err != nil && !errors.Is(err, sql.ErrNoRows) { return res, err }
    err = nil
    res.Changed = !existing.Valid || existing.String != res.Checksum

    err = tx.QueryRowContext(ctx, `
        INSERT INTO property_definitions (property_key, format, payload, payload_sha256, last_import_at)
        VALUES ($1,$2,$3,$4, now())
        ON CONFLICT (property_key)
        DO UPDATE SET format=EXCLUDED.format, payload=EXCLUDED.payload, payload_sha256=EXCLUDED.payload_sha256,
            updated_at=CASE WHEN property_definitions.payload_sha256 = EXCLUDED.payload_sha256 THEN property_definitions.updated_at ELSE now() END,
            last_import_at=now()
        RETURNING id`,
        in.PropertyKey, string(in.Format), in.Payload, res.Checksum,
    ).Scan(&res.DefinitionID)
    if err != nil { return res, err }

    if res.Changed {
        if _, err = tx.ExecContext(ctx, `DELETE FROM property_assets WHERE property_key=$1`, in.PropertyKey); err != nil { return res, err }
        for i, a := range in.Assets {
            if a.Locator == "" { continue }
            if _, err = tx.ExecContext(ctx, `INSERT INTO property_assets (property_key, kind, name, locator, position) VALUES ($1,$2,$3,$4,$5)`,
                in.PropertyKey, string(a.Kind), a.Name, a.Locator, i); err != nil { return res, err }
        }
    }

    err = tx.Commit()
    if err != nil { return res, err }
    return res, nil
}

// DeleteMissing removes definitions (and, by cascade, assets) whose key is
// not in keep. It returns the removed keys.
func (s *Store) DeleteMissing(ctx context.Context, keep []string) ([]string, error) {
    if s.DB == nil { return nil, errors.New("nil db") }
    if keep == nil { keep = []string{} }
    rows, err := s.DB.QueryContext(ctx, `DELETE FROM property_definitions WHERE NOT (property_key = ANY($1)) RETURNING property_key`, keep)
    if err != nil { return nil, err }
    defer rows.Close()
    var removed []string
    for rows.Next() {
        var key string
        if err := rows.Scan(&key); err != nil { return nil, err }
        removed = append(removed, key)
    }
    return removed, rows.Err()
}
