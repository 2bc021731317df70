package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/ncfp/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store is the SQLite-backed retrieval cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the cache database at path and
// applies any pending migrations. Existing contents are kept.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("opening cache: %w: empty path", domain.ErrInvalidInput)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	// WAL for crash safety between stages; foreign keys on every pooled connection
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(context.Background(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Initialize discards all cached state and recreates the schema.
func (s *Store) Initialize(ctx context.Context) error {
	downFiles, err := migrationFiles(migrations.FS, ".down.sql")
	if err != nil {
		return domain.NewStoreError("initialize", err)
	}

	// Newest first
	for i := len(downFiles) - 1; i >= 0; i-- {
		content, err := fs.ReadFile(migrations.FS, downFiles[i])
		if err != nil {
			return domain.NewStoreError("initialize", fmt.Errorf("reading migration %s: %w", downFiles[i], err))
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return domain.NewStoreError("initialize", fmt.Errorf("executing migration %s: %w", downFiles[i], err))
		}
	}

	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return domain.NewStoreError("initialize", err)
	}

	return domain.NewStoreError("initialize", s.migrate(ctx, migrations.FS))
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	upFiles, err := migrationFiles(fsys, ".up.sql")
	if err != nil {
		return err
	}

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(ctx, version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(ctx context.Context, version int, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, content); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

// migrationFiles lists migration files with the given suffix in name order.
func migrationFiles(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ==================== Input sequences ====================

// AddInputSequence registers an input sequence. Duplicate accessions are rejected.
func (s *Store) AddInputSequence(ctx context.Context, accession, aaQuery, ntQuery string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seqdata (accession, aa_query, nt_query)
		VALUES (?, ?, ?)
	`, accession, nullString(aaQuery), nullString(ntQuery))
	if err != nil {
		return domain.NewStoreError("add input sequence", translateError(err))
	}
	return nil
}

// HasSequence reports whether the input accession is registered.
func (s *Store) HasSequence(ctx context.Context, accession string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seqdata WHERE accession = ?", accession).Scan(&n)
	if err != nil {
		return false, domain.NewStoreError("has sequence", err)
	}
	return n > 0, nil
}

// HasQuery reports whether the input has either query term.
func (s *Store) HasQuery(ctx context.Context, accession string) (bool, error) {
	aa, nt, err := s.queries(ctx, accession)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStoreError("has query", err)
	}
	return aa != "" || nt != "", nil
}

// HasNtQuery reports whether the input has a nucleotide query term.
func (s *Store) HasNtQuery(ctx context.Context, accession string) (bool, error) {
	_, nt, err := s.queries(ctx, accession)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStoreError("has nt query", err)
	}
	return nt != "", nil
}

// GetNtQuery returns the nucleotide query term.
func (s *Store) GetNtQuery(ctx context.Context, accession string) (string, error) {
	_, nt, err := s.queries(ctx, accession)
	if err != nil {
		return "", domain.NewStoreError("get nt query", err)
	}
	if nt == "" {
		return "", domain.NewStoreError("get nt query", domain.ErrNotFound)
	}
	return nt, nil
}

// GetAAQuery returns the protein query term.
func (s *Store) GetAAQuery(ctx context.Context, accession string) (string, error) {
	aa, _, err := s.queries(ctx, accession)
	if err != nil {
		return "", domain.NewStoreError("get aa query", err)
	}
	if aa == "" {
		return "", domain.NewStoreError("get aa query", domain.ErrNotFound)
	}
	return aa, nil
}

func (s *Store) queries(ctx context.Context, accession string) (string, string, error) {
	var aa, nt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT aa_query, nt_query FROM seqdata WHERE accession = ?
	`, accession).Scan(&aa, &nt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", domain.ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	return aa.String, nt.String, nil
}

// UpdateNtQuery fills in the nucleotide query term for an input.
func (s *Store) UpdateNtQuery(ctx context.Context, accession, ntQuery string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE seqdata SET nt_query = ? WHERE accession = ?
	`, nullString(ntQuery), accession)
	if err != nil {
		return domain.NewStoreError("update nt query", err)
	}
	return domain.NewStoreError("update nt query", requireAffected(res))
}

// ListInputSequences returns all registered inputs in insertion order.
func (s *Store) ListInputSequences(ctx context.Context) ([]domain.SeqData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT accession, aa_query, nt_query FROM seqdata ORDER BY rowid
	`)
	if err != nil {
		return nil, domain.NewStoreError("list input sequences", err)
	}
	defer rows.Close()

	var out []domain.SeqData
	for rows.Next() {
		var sd domain.SeqData
		var aa, nt sql.NullString
		if err := rows.Scan(&sd.Accession, &aa, &nt); err != nil {
			return nil, domain.NewStoreError("list input sequences", err)
		}
		sd.AAQuery = aa.String
		sd.NtQuery = nt.String
		out = append(out, sd)
	}
	return out, domain.NewStoreError("list input sequences", rows.Err())
}

// ==================== Remote identifiers ====================

// HasRemoteID reports whether at least one UID is linked to the input.
func (s *Store) HasRemoteID(ctx context.Context, accession string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seq_nt WHERE accession = ?", accession).Scan(&n)
	if err != nil {
		return false, domain.NewStoreError("has remote id", err)
	}
	return n > 0, nil
}

// AddRemoteIDs links UIDs to an input in one transaction.
// UID rows are created with a NULL accession when first seen.
func (s *Store) AddRemoteIDs(ctx context.Context, accession string, uids []string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewStoreError("add remote ids", fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM seqdata WHERE accession = ?", accession).Scan(&n); err != nil {
		return nil, domain.NewStoreError("add remote ids", err)
	}
	if n == 0 {
		return nil, domain.NewStoreError("add remote ids", fmt.Errorf("%w: sequence %s", domain.ErrNotFound, accession))
	}

	var added []string
	for _, uid := range uids {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO nt_uid_acc (uid, accession) VALUES (?, NULL)
		`, uid); err != nil {
			return nil, domain.NewStoreError("add remote ids", err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO seq_nt (accession, uid) VALUES (?, ?)
		`, accession, uid)
		if err != nil {
			return nil, domain.NewStoreError("add remote ids", err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			added = append(added, uid)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewStoreError("add remote ids", fmt.Errorf("committing transaction: %w", err))
	}
	return added, nil
}

// ListAllRemoteIDs returns every known UID in discovery order.
func (s *Store) ListAllRemoteIDs(ctx context.Context) ([]string, error) {
	return s.listStrings(ctx, "list remote ids", "SELECT uid FROM nt_uid_acc ORDER BY rowid")
}

// ListRemoteIDsMissingAccession returns UIDs whose accession is NULL.
func (s *Store) ListRemoteIDsMissingAccession(ctx context.Context) ([]string, error) {
	return s.listStrings(ctx, "list remote ids missing accession", `
		SELECT uid FROM nt_uid_acc WHERE accession IS NULL ORDER BY rowid
	`)
}

// ListAccessionsMissingHeader returns resolved UIDs whose accession has no header.
func (s *Store) ListAccessionsMissingHeader(ctx context.Context) ([]domain.RemoteID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, accession FROM nt_uid_acc
		WHERE accession IS NOT NULL
		  AND accession NOT IN (SELECT accession FROM gb_headers)
		ORDER BY rowid
	`)
	if err != nil {
		return nil, domain.NewStoreError("list accessions missing header", err)
	}
	defer rows.Close()

	var out []domain.RemoteID
	for rows.Next() {
		var id domain.RemoteID
		if err := rows.Scan(&id.UID, &id.Accession); err != nil {
			return nil, domain.NewStoreError("list accessions missing header", err)
		}
		out = append(out, id)
	}
	return out, domain.NewStoreError("list accessions missing header", rows.Err())
}

// UpdateRemoteIDAccession sets the accession for a known UID.
func (s *Store) UpdateRemoteIDAccession(ctx context.Context, uid, accession string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE nt_uid_acc SET accession = ? WHERE uid = ?
	`, accession, uid)
	if err != nil {
		return domain.NewStoreError("update remote id accession", err)
	}
	return domain.NewStoreError("update remote id accession", requireAffected(res))
}

// ==================== Headers and records ====================

// AddHeader stores header metadata for an accession.
func (s *Store) AddHeader(ctx context.Context, h domain.Header) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gb_headers (accession, length, organism, taxonomy, date)
		VALUES (?, ?, ?, ?, ?)
	`, h.Accession, h.Length, h.Organism, h.Taxonomy, h.Date)
	if err != nil {
		return domain.NewStoreError("add header", translateError(err))
	}
	return nil
}

// GetHeader returns the header for a nucleotide accession.
func (s *Store) GetHeader(ctx context.Context, accession string) (*domain.Header, error) {
	var h domain.Header
	err := s.db.QueryRowContext(ctx, `
		SELECT accession, length, organism, taxonomy, date FROM gb_headers WHERE accession = ?
	`, accession).Scan(&h.Accession, &h.Length, &h.Organism, &h.Taxonomy, &h.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewStoreError("get header", domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.NewStoreError("get header", err)
	}
	return &h, nil
}

// ListCandidates returns the UIDs linked to an input in link order.
func (s *Store) ListCandidates(ctx context.Context, accession string) ([]domain.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.uid, n.accession, h.length
		FROM seq_nt l
		JOIN nt_uid_acc n ON n.uid = l.uid
		LEFT JOIN gb_headers h ON h.accession = n.accession
		WHERE l.accession = ?
		ORDER BY l.seq_nt_id
	`, accession)
	if err != nil {
		return nil, domain.NewStoreError("list candidates", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		var acc sql.NullString
		var length sql.NullInt64
		if err := rows.Scan(&c.UID, &acc, &length); err != nil {
			return nil, domain.NewStoreError("list candidates", err)
		}
		c.Accession = acc.String
		c.Length = int(length.Int64)
		c.HasHeader = length.Valid
		out = append(out, c)
	}
	return out, domain.NewStoreError("list candidates", rows.Err())
}

// AddRecord stores the raw text of a full nucleotide record.
func (s *Store) AddRecord(ctx context.Context, accession, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gb_full (accession, record) VALUES (?, ?)
	`, accession, text)
	if err != nil {
		return domain.NewStoreError("add record", translateError(err))
	}
	return nil
}

// HasRecord reports whether a full record is stored for an accession.
func (s *Store) HasRecord(ctx context.Context, accession string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gb_full WHERE accession = ?", accession).Scan(&n)
	if err != nil {
		return false, domain.NewStoreError("has record", err)
	}
	return n > 0, nil
}

// ListSequencesMissingRecord returns linked inputs with no stored full record.
func (s *Store) ListSequencesMissingRecord(ctx context.Context) ([]string, error) {
	return s.listStrings(ctx, "list sequences missing record", `
		SELECT s.accession FROM seqdata s
		WHERE EXISTS (SELECT 1 FROM seq_nt l WHERE l.accession = s.accession)
		  AND NOT EXISTS (
			SELECT 1 FROM seq_nt l
			JOIN nt_uid_acc n ON n.uid = l.uid
			JOIN gb_full f ON f.accession = n.accession
			WHERE l.accession = s.accession
		  )
		ORDER BY s.rowid
	`)
}

// FindRecordsForAccession returns every stored full record linked to an input.
func (s *Store) FindRecordsForAccession(ctx context.Context, accession string) ([]domain.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.accession, f.record
		FROM seq_nt l
		JOIN nt_uid_acc n ON n.uid = l.uid
		JOIN gb_full f ON f.accession = n.accession
		WHERE l.accession = ?
		GROUP BY f.accession
		ORDER BY MIN(l.seq_nt_id)
	`, accession)
	if err != nil {
		return nil, domain.NewStoreError("find records", err)
	}
	defer rows.Close()

	var out []domain.StoredRecord
	for rows.Next() {
		var r domain.StoredRecord
		if err := rows.Scan(&r.Accession, &r.Text); err != nil {
			return nil, domain.NewStoreError("find records", err)
		}
		out = append(out, r)
	}
	return out, domain.NewStoreError("find records", rows.Err())
}

// Stats summarises contents and outstanding work.
func (s *Store) Stats(ctx context.Context) (*domain.CacheStats, error) {
	var st domain.CacheStats
	counts := []struct {
		dest  *int
		query string
	}{
		{&st.Sequences, "SELECT COUNT(*) FROM seqdata"},
		{&st.SequencesWithNtQuery, "SELECT COUNT(*) FROM seqdata WHERE nt_query IS NOT NULL AND nt_query != ''"},
		{&st.RemoteIDs, "SELECT COUNT(*) FROM nt_uid_acc"},
		{&st.RemoteIDsNoAccession, "SELECT COUNT(*) FROM nt_uid_acc WHERE accession IS NULL"},
		{&st.Headers, "SELECT COUNT(*) FROM gb_headers"},
		{&st.AccessionsNoHeader, `SELECT COUNT(*) FROM nt_uid_acc
			WHERE accession IS NOT NULL AND accession NOT IN (SELECT accession FROM gb_headers)`},
		{&st.Records, "SELECT COUNT(*) FROM gb_full"},
		{&st.SequencesWithoutLinks, `SELECT COUNT(*) FROM seqdata s
			WHERE NOT EXISTS (SELECT 1 FROM seq_nt l WHERE l.accession = s.accession)`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, domain.NewStoreError("stats", err)
		}
	}

	missing, err := s.ListSequencesMissingRecord(ctx)
	if err != nil {
		return nil, err
	}
	st.SequencesNoRecord = len(missing)
	return &st, nil
}

// ==================== Helpers ====================

func (s *Store) listStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		out = append(out, v)
	}
	return out, domain.NewStoreError(op, rows.Err())
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// requireAffected maps a zero-row update to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// translateError maps primary key and unique violations to ErrAlreadyExists.
func translateError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
		}
	}
	return err
}
