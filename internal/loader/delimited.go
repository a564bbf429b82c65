package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Tyorden/svustats/internal/model"
)

// personColumns maps header names to Person fields. Names match the JSON
// keys of model.Person.
var personColumns = map[string]func(*model.Person) *string{
	"custom_id":               func(p *model.Person) *string { return &p.CustomID },
	"person_id_in_episode":    func(p *model.Person) *string { return &p.PersonID },
	"person_id":               func(p *model.Person) *string { return &p.PersonID },
	"season":                  func(p *model.Person) *string { return &p.Season },
	"name":                    func(p *model.Person) *string { return &p.Name },
	"role_in_plot":            func(p *model.Person) *string { return &p.RoleInPlot },
	"accused_of":              func(p *model.Person) *string { return &p.AccusedOf },
	"accusation_origin":       func(p *model.Person) *string { return &p.AccusationOrigin },
	"innocence_status":        func(p *model.Person) *string { return &p.InnocenceStatus },
	"exposure_channel":        func(p *model.Person) *string { return &p.ExposureChannel },
	"exposure_who_told":       func(p *model.Person) *string { return &p.ExposureWhoTold },
	"consequence_category":    func(p *model.Person) *string { return &p.ConsequenceCategory },
	"consequence_severity":    func(p *model.Person) *string { return &p.ConsequenceSeverity },
	"consequence_description": func(p *model.Person) *string { return &p.ConsequenceDescription },
	"police_conduct_threat":   func(p *model.Person) *string { return &p.PoliceConductThreat },
	"police_apology":          func(p *model.Person) *string { return &p.PoliceApology },
	"prosecutorial_conduct":   func(p *model.Person) *string { return &p.ProsecutorialConduct },
	"prosecutorial_apology":   func(p *model.Person) *string { return &p.ProsecutorialApology },
	"quote":                   func(p *model.Person) *string { return &p.Quote },
	"notes":                   func(p *model.Person) *string { return &p.Notes },
	"tags":                    func(p *model.Person) *string { return &p.Tags },
}

var episodeColumns = map[string]func(*model.Episode) *string{
	"custom_id":      func(e *model.Episode) *string { return &e.CustomID },
	"season":         func(e *model.Episode) *string { return &e.Season },
	"episode_number": func(e *model.Episode) *string { return &e.EpisodeNumber },
	"title":          func(e *model.Episode) *string { return &e.Title },
	"summary":        func(e *model.Episode) *string { return &e.Summary },
	"has_false_suspect": func(e *model.Episode) *string {
		return (*string)(&e.HasFalseSuspect)
	},
	"has_public_exposure": func(e *model.Episode) *string {
		return (*string)(&e.HasPublicExposure)
	},
	"needs_deep_review": func(e *model.Episode) *string {
		return (*string)(&e.NeedsDeepReview)
	},
}

// EpisodesPath returns the sibling episodes file of a persons file:
// "svu.csv" pairs with "svu.episodes.csv".
func EpisodesPath(path string) string {
	ext := ""
	if i := strings.LastIndex(path, "."); i > strings.LastIndexAny(path, `/\`) {
		ext = path[i:]
		path = path[:i]
	}
	return path + ".episodes" + ext
}

func delimiter(format Format) rune {
	if format == FormatTSV {
		return '\t'
	}
	return ','
}

func loadDelimited(path string, format Format) (*model.Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	persons, err := ReadPersons(f, delimiter(format))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var episodes []model.Episode
	epPath := EpisodesPath(path)
	ef, err := os.Open(epPath) //nolint:gosec // derived from the user's path
	switch {
	case err == nil:
		defer ef.Close()
		if episodes, err = ReadEpisodes(ef, delimiter(format)); err != nil {
			return nil, fmt.Errorf("%s: %w", epPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		episodes = episodesFromPersons(persons)
	default:
		return nil, fmt.Errorf("failed to open episodes: %w", err)
	}

	return &model.Dataset{Episodes: episodes, Persons: persons}, nil
}

// ReadPersons reads a persons table. The first row is the header; unknown
// columns are ignored and a missing custom_id column is an error.
func ReadPersons(r io.Reader, comma rune) ([]model.Person, error) {
	return readTable(r, comma, personColumns)
}

// ReadEpisodes reads an episodes table.
func ReadEpisodes(r io.Reader, comma rune) ([]model.Episode, error) {
	return readTable(r, comma, episodeColumns)
}

func readTable[T any](r io.Reader, comma rune, columns map[string]func(*T) *string) ([]T, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	setters := make([]func(*T) *string, len(header))
	hasID := false
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		setters[i] = columns[name]
		if name == "custom_id" {
			hasID = true
		}
	}
	if !hasID {
		return nil, errors.New("header has no custom_id column")
	}

	out := make([]T, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		var item T
		for i, v := range rec {
			if i < len(setters) && setters[i] != nil {
				*setters[i](&item) = strings.TrimSpace(v)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// episodesFromPersons derives bare episodes from the custom_id and season
// of each person, in first-seen order.
func episodesFromPersons(persons []model.Person) []model.Episode {
	seen := map[string]bool{}
	episodes := make([]model.Episode, 0)
	for _, p := range persons {
		if seen[p.CustomID] {
			continue
		}
		seen[p.CustomID] = true
		episodes = append(episodes, model.Episode{CustomID: p.CustomID, Season: p.Season})
	}
	return episodes
}
