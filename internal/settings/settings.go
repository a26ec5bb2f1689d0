// Package settings owns the GarminConnectConfig.json document the sync tool
// reads for credentials and download ranges. The dashboard edits a fixed
// allow-list of fields; everything else in the document is the tool's own
// business and passes through writes untouched.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"garmindash/internal/paths"
)

// Store reads and writes the settings document. Writes are serialized by
// the store mutex and land atomically via rename; concurrent writers are
// last-writer-wins.
type Store struct {
	mu          sync.Mutex
	path        string
	sessionPath string
}

func NewStore(p paths.Paths) *Store {
	return &Store{
		path:        p.ConnectConfigPath(),
		sessionPath: p.SessionPath(),
	}
}

// Update is a partial edit of the document. Pointers distinguish "leave
// alone" from "set"; only these fields can be edited over the API.
type Update struct {
	Credentials *CredentialsUpdate `json:"credentials,omitempty"`
	Data        *DataUpdate        `json:"data,omitempty"`
	Garmin      *GarminUpdate      `json:"garmin,omitempty"`
}

type CredentialsUpdate struct {
	User           *string `json:"user,omitempty"`
	Password       *string `json:"password,omitempty"`
	SecurePassword *bool   `json:"secure_password,omitempty"`
	PasswordFile   *string `json:"password_file,omitempty"`
}

type DataUpdate struct {
	WeightStartDate          *string `json:"weight_start_date,omitempty"`
	SleepStartDate           *string `json:"sleep_start_date,omitempty"`
	RHRStartDate             *string `json:"rhr_start_date,omitempty"`
	MonitoringStartDate      *string `json:"monitoring_start_date,omitempty"`
	DownloadLatestActivities *int    `json:"download_latest_activities,omitempty"`
	DownloadAllActivities    *int    `json:"download_all_activities,omitempty"`
}

type GarminUpdate struct {
	Domain *string `json:"domain,omitempty"`
}

// IsZero reports whether the update would change nothing.
func (u *Update) IsZero() bool {
	return u.Credentials == nil && u.Data == nil && u.Garmin == nil
}

// DecodeUpdate reads a JSON update payload. Unknown keys anywhere in the
// payload are rejected so a typo cannot silently drop a setting; an empty
// body decodes as the empty update.
func DecodeUpdate(r io.Reader) (*Update, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var u Update
	if err := dec.Decode(&u); err != nil {
		if errors.Is(err, io.EOF) {
			return &Update{}, nil
		}
		return nil, fmt.Errorf("decoding settings update: %w", err)
	}
	return &u, nil
}

// Read returns the document with credentials.password blanked. A missing
// file reads as the default document.
func (s *Store) Read() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	if creds, ok := doc["credentials"].(map[string]any); ok {
		if _, ok := creds["password"]; ok {
			creds["password"] = ""
		}
	}
	return doc, nil
}

// Apply merges an update into the persisted document and writes it back.
func (s *Store) Apply(u *Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return err
	}

	if u.Credentials != nil {
		c := section(doc, "credentials")
		setString(c, "user", u.Credentials.User)
		setString(c, "password", u.Credentials.Password)
		setBool(c, "secure_password", u.Credentials.SecurePassword)
		setString(c, "password_file", u.Credentials.PasswordFile)
	}
	if u.Data != nil {
		d := section(doc, "data")
		setString(d, "weight_start_date", u.Data.WeightStartDate)
		setString(d, "sleep_start_date", u.Data.SleepStartDate)
		setString(d, "rhr_start_date", u.Data.RHRStartDate)
		setString(d, "monitoring_start_date", u.Data.MonitoringStartDate)
		setInt(d, "download_latest_activities", u.Data.DownloadLatestActivities)
		setInt(d, "download_all_activities", u.Data.DownloadAllActivities)
	}
	if u.Garmin != nil {
		g := section(doc, "garmin")
		setString(g, "domain", u.Garmin.Domain)
	}

	return s.writeLocked(doc)
}

// WriteDefault writes the default document only if none exists yet,
// reporting whether it wrote.
func (s *Store) WriteDefault() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	}
	if err := s.writeLocked(DefaultDocument()); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateSession removes the cached login session so the next sync
// authenticates with the current credentials. A session that was never
// created is not an error.
func (s *Store) InvalidateSession() error {
	if _, err := os.Stat(s.sessionPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(s.sessionPath); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Path returns where the document lives on disk.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) readLocked() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDocument(), nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return doc, nil
}

func (s *Store) writeLocked(doc map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

// DefaultDocument is the document written on first run, matching the shape
// the sync tool ships as its example config.
func DefaultDocument() map[string]any {
	return map[string]any{
		"db": map[string]any{
			"type": "sqlite",
		},
		"garmin": map[string]any{
			"domain": "garmin.com",
		},
		"credentials": map[string]any{
			"user":            "",
			"secure_password": false,
			"password":        "",
		},
		"data": map[string]any{
			"weight_start_date":          "01/01/2020",
			"sleep_start_date":           "01/01/2020",
			"rhr_start_date":             "01/01/2020",
			"monitoring_start_date":      "01/01/2020",
			"download_latest_activities": 25,
			"download_all_activities":    1000,
		},
		"directories": map[string]any{
			"relative_to_home": true,
			"base_dir":         "HealthData",
		},
		"settings": map[string]any{
			"metric": false,
		},
	}
}

func section(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	doc[key] = m
	return m
}

func setString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func setBool(m map[string]any, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

func setInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}
