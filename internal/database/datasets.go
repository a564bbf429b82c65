package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Tyorden/svustats/internal/model"
)

// DatasetInfo describes a stored dataset without its records.
type DatasetInfo struct {
	Name     string
	Title    string
	Variant  model.Variant
	Episodes int
	Persons  int
	SavedAt  time.Time
}

// SaveDataset writes ds, replacing any dataset stored under the same name.
// The write happens in a single transaction.
func (d *DB) SaveDataset(ctx context.Context, ds *model.Dataset) (err error) {
	if d.readOnly {
		return ErrReadOnly
	}
	if ds.Name == "" {
		return errors.New("dataset has no name")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"persons", "episodes", "datasets"} {
		key := "dataset"
		if table == "datasets" {
			key = "name"
		}
		//nolint:gosec // table and key come from the fixed list above
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+key+" = ?", ds.Name); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (name, title, variant, saved_at) VALUES (?, ?, ?, ?)`,
		ds.Name, ds.Title, string(ds.Variant), formatTimestamp(time.Now()),
	); err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}

	if err = insertEpisodes(ctx, tx, ds); err != nil {
		return err
	}
	if err = insertPersons(ctx, tx, ds); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

func insertEpisodes(ctx context.Context, tx *sql.Tx, ds *model.Dataset) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO episodes (dataset, position, custom_id, season, episode_number, title, summary,
		has_false_suspect, has_public_exposure, needs_deep_review)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare episode insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range ds.Episodes {
		if _, err := stmt.ExecContext(ctx,
			ds.Name, i, e.CustomID, e.Season, e.EpisodeNumber, e.Title, e.Summary,
			string(e.HasFalseSuspect), string(e.HasPublicExposure), string(e.NeedsDeepReview),
		); err != nil {
			return fmt.Errorf("failed to insert episode %s: %w", e.CustomID, err)
		}
	}
	return nil
}

func insertPersons(ctx context.Context, tx *sql.Tx, ds *model.Dataset) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO persons (dataset, position, custom_id, person_id, season, name,
		role_in_plot, accused_of, accusation_origin, innocence_status, exposure_channel, exposure_who_told,
		consequence_category, consequence_severity, consequence_description,
		police_conduct_threat, police_apology, prosecutorial_conduct, prosecutorial_apology,
		quote, notes, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare person insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range ds.Persons {
		if _, err := stmt.ExecContext(ctx,
			ds.Name, i, p.CustomID, p.PersonID, p.Season, p.Name,
			p.RoleInPlot, p.AccusedOf, p.AccusationOrigin, p.InnocenceStatus, p.ExposureChannel, p.ExposureWhoTold,
			p.ConsequenceCategory, p.ConsequenceSeverity, p.ConsequenceDescription,
			p.PoliceConductThreat, p.PoliceApology, p.ProsecutorialConduct, p.ProsecutorialApology,
			p.Quote, p.Notes, p.Tags,
		); err != nil {
			return fmt.Errorf("failed to insert person %s: %w", p.Key(), err)
		}
	}
	return nil
}

// LoadDataset reads the dataset stored under name. An empty name selects
// the only stored dataset and fails when there is more than one.
func (d *DB) LoadDataset(ctx context.Context, name string) (*model.Dataset, error) {
	if name == "" {
		infos, err := d.ListDatasets(ctx)
		if err != nil {
			return nil, err
		}
		switch len(infos) {
		case 0:
			return nil, ErrDatasetNotFound
		case 1:
			name = infos[0].Name
		default:
			return nil, fmt.Errorf("database %s holds %d datasets, name one", d.path, len(infos))
		}
	}

	ds := &model.Dataset{Name: name}
	var variant string
	err := d.db.QueryRowContext(ctx,
		`SELECT title, variant FROM datasets WHERE name = ?`, name,
	).Scan(&ds.Title, &variant)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	ds.Variant = model.Variant(variant)

	if ds.Episodes, err = d.loadEpisodes(ctx, name); err != nil {
		return nil, err
	}
	if ds.Persons, err = d.loadPersons(ctx, name); err != nil {
		return nil, err
	}
	return ds, nil
}

func (d *DB) loadEpisodes(ctx context.Context, name string) ([]model.Episode, error) {
	rows, err := d.db.QueryContext(ctx, `
	SELECT custom_id, season, episode_number, title, summary,
		has_false_suspect, has_public_exposure, needs_deep_review
	FROM episodes WHERE dataset = ? ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]model.Episode, 0)
	for rows.Next() {
		var e model.Episode
		var falseSuspect, exposure, review string
		if err := rows.Scan(&e.CustomID, &e.Season, &e.EpisodeNumber, &e.Title, &e.Summary,
			&falseSuspect, &exposure, &review); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		e.HasFalseSuspect = model.Flag(falseSuspect)
		e.HasPublicExposure = model.Flag(exposure)
		e.NeedsDeepReview = model.Flag(review)
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func (d *DB) loadPersons(ctx context.Context, name string) ([]model.Person, error) {
	rows, err := d.db.QueryContext(ctx, `
	SELECT custom_id, person_id, season, name,
		role_in_plot, accused_of, accusation_origin, innocence_status, exposure_channel, exposure_who_told,
		consequence_category, consequence_severity, consequence_description,
		police_conduct_threat, police_apology, prosecutorial_conduct, prosecutorial_apology,
		quote, notes, tags
	FROM persons WHERE dataset = ? ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	persons := make([]model.Person, 0)
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.CustomID, &p.PersonID, &p.Season, &p.Name,
			&p.RoleInPlot, &p.AccusedOf, &p.AccusationOrigin, &p.InnocenceStatus, &p.ExposureChannel, &p.ExposureWhoTold,
			&p.ConsequenceCategory, &p.ConsequenceSeverity, &p.ConsequenceDescription,
			&p.PoliceConductThreat, &p.PoliceApology, &p.ProsecutorialConduct, &p.ProsecutorialApology,
			&p.Quote, &p.Notes, &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// ListDatasets returns the stored datasets ordered by name.
func (d *DB) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := d.db.QueryContext(ctx, `
	SELECT d.name, d.title, d.variant, d.saved_at,
		(SELECT COUNT(*) FROM episodes e WHERE e.dataset = d.name),
		(SELECT COUNT(*) FROM persons p WHERE p.dataset = d.name)
	FROM datasets d
	ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var infos []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		var variant, savedAt string
		if err := rows.Scan(&info.Name, &info.Title, &variant, &savedAt, &info.Episodes, &info.Persons); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		info.Variant = model.Variant(variant)
		info.SavedAt = parseTimestamp(savedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
