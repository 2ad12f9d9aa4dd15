package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Page size limits applied to list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

const schema = `
CREATE TABLE IF NOT EXISTS hardware_device (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	space_id         INTEGER NOT NULL,
	device_id        TEXT    NOT NULL,
	name             TEXT    NOT NULL,
	description      TEXT    NOT NULL DEFAULT '',
	app_id           INTEGER,
	status           TEXT    NOT NULL,
	firmware_version TEXT,
	mac_address      TEXT,
	last_ping_at     INTEGER,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL,
	UNIQUE(space_id, device_id)
);

CREATE TABLE IF NOT EXISTS tts_voice (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	space_id   INTEGER,
	provider   TEXT    NOT NULL,
	model      TEXT,
	voice_type TEXT    NOT NULL DEFAULT 'system',
	name       TEXT    NOT NULL,
	voice_code TEXT    NOT NULL,
	language   TEXT,
	gender     TEXT,
	sample_url TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tts_voice_provider ON tts_voice(provider, voice_code);

CREATE TABLE IF NOT EXISTS app_tts_settings (
	app_id     INTEGER PRIMARY KEY,
	provider   TEXT    NOT NULL,
	model      TEXT    NOT NULL,
	voice      TEXT    NOT NULL,
	voice_ref  INTEGER,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS hardware_tts_settings (
	device_id  TEXT    PRIMARY KEY,
	provider   TEXT    NOT NULL,
	model      TEXT    NOT NULL,
	voice      TEXT    NOT NULL,
	voice_ref  INTEGER,
	updated_at INTEGER NOT NULL
);
`

// Store is the SQLite-backed persistence for the reference backend.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; serialise through a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListDevices returns one page of a space's devices, newest first, and the
// total matching count.
func (s *Store) ListDevices(ctx context.Context, f DeviceFilter) ([]Device, int64, error) {
	page, size := normalizePage(f.Page, f.PageSize)

	where := "space_id = ?"
	args := []any{f.SpaceID}
	if f.Keyword != "" {
		where += " AND (device_id LIKE ? OR name LIKE ?)"
		like := "%" + f.Keyword + "%"
		args = append(args, like, like)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hardware_device WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count devices: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, space_id, device_id, name, description, app_id, status,
		       firmware_version, mac_address, last_ping_at, created_at, updated_at
		FROM hardware_device
		WHERE `+where+`
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, 0, err
		}
		devices = append(devices, *d)
	}
	return devices, total, rows.Err()
}

// GetDevice returns the device with row id id.
func (s *Store) GetDevice(ctx context.Context, id uint64) (*Device, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, space_id, device_id, name, description, app_id, status,
		       firmware_version, mac_address, last_ping_at, created_at, updated_at
		FROM hardware_device
		WHERE id = ?
	`, id)
	return scanDevice(row)
}

// UpsertDevice saves d. With ID 0 an existing row with the same
// (space_id, device_id) is updated, otherwise a new row is inserted. A
// non-zero ID updates that row and returns ErrNotFound when it is missing.
// d.ID and the timestamps are filled in on success.
func (s *Store) UpsertDevice(ctx context.Context, d *Device) error {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if d.ID == 0 {
		var id uint64
		var createdAt int64
		err := tx.QueryRowContext(ctx,
			"SELECT id, created_at FROM hardware_device WHERE space_id = ? AND device_id = ?",
			d.SpaceID, d.DeviceID).Scan(&id, &createdAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx, `
				INSERT INTO hardware_device (space_id, device_id, name, description, app_id, status, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, d.SpaceID, d.DeviceID, d.Name, d.Description, nullUint(d.AppID), d.Status, millis(now), millis(now))
			if err != nil {
				return fmt.Errorf("insert device: %w", err)
			}
			newID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("insert device id: %w", err)
			}
			d.ID = uint64(newID)
			d.CreatedAt = now
			d.UpdatedAt = now
			return tx.Commit()
		case err != nil:
			return fmt.Errorf("find device: %w", err)
		}
		d.ID = id
		d.CreatedAt = fromMillis(createdAt)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE hardware_device
		SET space_id = ?, device_id = ?, name = ?, description = ?, app_id = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, d.SpaceID, d.DeviceID, d.Name, d.Description, nullUint(d.AppID), d.Status, millis(now), d.ID)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	d.UpdatedAt = now
	return tx.Commit()
}

// DeviceAppID returns the app bound to the most recently updated device
// registration with deviceID, or nil when none is bound.
func (s *Store) DeviceAppID(ctx context.Context, deviceID string) (*uint64, error) {
	var appID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT app_id FROM hardware_device
		WHERE device_id = ? AND app_id IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`, deviceID).Scan(&appID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query device app: %w", err)
	}
	return uintPtr(appID), nil
}

// ListVoices returns one page of the catalog, newest first. A space filter
// includes the space's own voices and the shared ones.
func (s *Store) ListVoices(ctx context.Context, f VoiceFilter) ([]Voice, int64, error) {
	page, size := normalizePage(f.Page, f.PageSize)

	var conds []string
	var args []any
	if f.SpaceID != nil {
		conds = append(conds, "(space_id = ? OR space_id IS NULL)")
		args = append(args, *f.SpaceID)
	}
	if f.Provider != "" {
		conds = append(conds, "provider = ?")
		args = append(args, f.Provider)
	}
	if f.Language != "" {
		conds = append(conds, "language = ?")
		args = append(args, f.Language)
	}
	if f.Gender != "" {
		conds = append(conds, "gender = ?")
		args = append(args, f.Gender)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tts_voice "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count voices: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, space_id, provider, model, voice_type, name, voice_code,
		       language, gender, sample_url, created_at
		FROM tts_voice `+where+`
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query voices: %w", err)
	}
	defer rows.Close()

	voices := []Voice{}
	for rows.Next() {
		var v Voice
		var spaceID sql.NullInt64
		var model, language, gender, sample sql.NullString
		var createdAt int64
		if err := rows.Scan(&v.ID, &spaceID, &v.Provider, &model, &v.VoiceType, &v.Name,
			&v.VoiceCode, &language, &gender, &sample, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan voice: %w", err)
		}
		v.SpaceID = uintPtr(spaceID)
		v.Model = stringPtr(model)
		v.Language = stringPtr(language)
		v.Gender = stringPtr(gender)
		v.SampleURL = stringPtr(sample)
		v.CreatedAt = fromMillis(createdAt)
		voices = append(voices, v)
	}
	return voices, total, rows.Err()
}

// InsertVoice adds v to the catalog and sets v.ID.
func (s *Store) InsertVoice(ctx context.Context, v *Voice) error {
	now := s.now()
	if v.VoiceType == "" {
		v.VoiceType = "system"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tts_voice (space_id, provider, model, voice_type, name, voice_code, language, gender, sample_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullUint(v.SpaceID), v.Provider, nullString(v.Model), v.VoiceType, v.Name, v.VoiceCode,
		nullString(v.Language), nullString(v.Gender), nullString(v.SampleURL), millis(now))
	if err != nil {
		return fmt.Errorf("insert voice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert voice id: %w", err)
	}
	v.ID = uint64(id)
	v.CreatedAt = now
	return nil
}

// VoiceSampleURL returns the sample of provider's voiceCode visible in
// spaceID, preferring a space-specific entry. Unknown voices yield "".
func (s *Store) VoiceSampleURL(ctx context.Context, provider, voiceCode string, spaceID *uint64) (string, error) {
	query := `
		SELECT sample_url FROM tts_voice
		WHERE provider = ? AND voice_code = ? AND sample_url IS NOT NULL`
	args := []any{provider, voiceCode}
	if spaceID != nil {
		query += " AND (space_id = ? OR space_id IS NULL)"
		args = append(args, *spaceID)
	} else {
		query += " AND space_id IS NULL"
	}
	query += " ORDER BY space_id IS NULL, id DESC LIMIT 1"

	var url string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query sample url: %w", err)
	}
	return url, nil
}

// UpsertAppTTS stores the app-level setting, replacing any previous one.
func (s *Store) UpsertAppTTS(ctx context.Context, appID uint64, t TTSSetting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_tts_settings (app_id, provider, model, voice, voice_ref, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(app_id) DO UPDATE SET
			provider = excluded.provider, model = excluded.model, voice = excluded.voice,
			voice_ref = excluded.voice_ref, updated_at = excluded.updated_at
	`, appID, t.Provider, t.Model, t.Voice, nullUint(t.VoiceRef), millis(s.now()))
	if err != nil {
		return fmt.Errorf("upsert app tts: %w", err)
	}
	return nil
}

// AppTTS returns the app-level setting or ErrNotFound.
func (s *Store) AppTTS(ctx context.Context, appID uint64) (*TTSSetting, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT provider, model, voice, voice_ref, updated_at FROM app_tts_settings WHERE app_id = ?", appID)
	return scanSetting(row)
}

// UpsertDeviceTTS stores the device-level override, replacing any previous one.
func (s *Store) UpsertDeviceTTS(ctx context.Context, deviceID string, t TTSSetting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hardware_tts_settings (device_id, provider, model, voice, voice_ref, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			provider = excluded.provider, model = excluded.model, voice = excluded.voice,
			voice_ref = excluded.voice_ref, updated_at = excluded.updated_at
	`, deviceID, t.Provider, t.Model, t.Voice, nullUint(t.VoiceRef), millis(s.now()))
	if err != nil {
		return fmt.Errorf("upsert device tts: %w", err)
	}
	return nil
}

// DeviceTTS returns the device-level override or ErrNotFound.
func (s *Store) DeviceTTS(ctx context.Context, deviceID string) (*TTSSetting, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT provider, model, voice, voice_ref, updated_at FROM hardware_tts_settings WHERE device_id = ?", deviceID)
	return scanSetting(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(row scanner) (*Device, error) {
	var d Device
	var appID, lastPing sql.NullInt64
	var firmware, mac sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(&d.ID, &d.SpaceID, &d.DeviceID, &d.Name, &d.Description, &appID, &d.Status,
		&firmware, &mac, &lastPing, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan device: %w", err)
	}
	d.AppID = uintPtr(appID)
	d.FirmwareVersion = stringPtr(firmware)
	d.MacAddress = stringPtr(mac)
	if lastPing.Valid {
		t := fromMillis(lastPing.Int64)
		d.LastPingAt = &t
	}
	d.CreatedAt = fromMillis(createdAt)
	d.UpdatedAt = fromMillis(updatedAt)
	return &d, nil
}

func scanSetting(row scanner) (*TTSSetting, error) {
	var t TTSSetting
	var ref sql.NullInt64
	var updatedAt int64
	if err := row.Scan(&t.Provider, &t.Model, &t.Voice, &ref, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan tts setting: %w", err)
	}
	t.VoiceRef = uintPtr(ref)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

func nullUint(v *uint64) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func uintPtr(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	u := uint64(v.Int64)
	return &u
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
