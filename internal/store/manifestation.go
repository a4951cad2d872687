package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manifestation is one generated image.
type Manifestation struct {
	ID        string    `json:"id"`
	Shape     string    `json:"shape"`
	Prompt    string    `json:"prompt"`
	MimeType  string    `json:"mime_type"`
	Image     []byte    `json:"-"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ManifestationRepository stores generated images.
type ManifestationRepository struct {
	db *sql.DB
}

// Manifestations returns the manifestation repository for this store.
func (s *Store) Manifestations() *ManifestationRepository {
	return &ManifestationRepository{db: s.db}
}

// Create inserts m, assigning an ID when empty and stamping CreatedAt.
func (r *ManifestationRepository) Create(m *Manifestation) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()
	m.Size = len(m.Image)

	_, err := r.db.Exec(
		`INSERT INTO manifestations (id, shape, prompt, mime_type, image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Shape, m.Prompt, m.MimeType, m.Image, m.CreatedAt,
	)
	return err
}

// GetByID returns the manifestation with its image bytes.
func (r *ManifestationRepository) GetByID(id string) (*Manifestation, error) {
	m := &Manifestation{}
	err := r.db.QueryRow(
		`SELECT id, shape, prompt, mime_type, image, created_at
		 FROM manifestations WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.Shape, &m.Prompt, &m.MimeType, &m.Image, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.Size = len(m.Image)
	return m, nil
}

// Latest returns the most recently created manifestation.
func (r *ManifestationRepository) Latest() (*Manifestation, error) {
	var id string
	err := r.db.QueryRow(
		`SELECT id FROM manifestations ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(id)
}

// List returns metadata for every manifestation, newest first. Image bytes
// are not loaded.
func (r *ManifestationRepository) List() ([]*Manifestation, error) {
	rows, err := r.db.Query(
		`SELECT id, shape, prompt, mime_type, length(image), created_at
		 FROM manifestations ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Manifestation
	for rows.Next() {
		m := &Manifestation{}
		if err := rows.Scan(&m.ID, &m.Shape, &m.Prompt, &m.MimeType, &m.Size, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// Delete removes a manifestation by ID.
func (r *ManifestationRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM manifestations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}
