// Package artifact persists generated personas as a human-readable text file
// plus a JSON document, and lists or reads them back by artifact id.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"reddit-persona/models"
	"reddit-persona/persona"
)

var (
	// ErrPersistenceFailed 는 결과 파일을 쓰지 못한 경우다. 생성 실행은 error 단계로 끝난다.
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrNotFound          = errors.New("artifact not found")
	ErrInvalidID         = errors.New("invalid artifact id")
)

// SchemaVersion is written into every JSON document.
const SchemaVersion = 1

const timestampLayout = "20060102_150405"

var idPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+)_(\d{8}_\d{6})$`)

// Artifact describes one saved generation.
type Artifact = models.ArtifactMeta

// Document is the JSON file written next to the persona text.
type Document struct {
	SchemaVersion int                     `json:"schema_version"`
	GenerationID  string                  `json:"generation_id,omitempty"`
	Username      string                  `json:"username"`
	GeneratedAt   time.Time               `json:"generated_at"`
	Posts         []models.ActivityRecord `json:"posts"`
	Comments      []models.ActivityRecord `json:"comments"`
	Persona       string                  `json:"persona"`
	PersonaMethod string                  `json:"persona_method"`
	PersonaModel  string                  `json:"persona_model,omitempty"`
	PersonaNote   string                  `json:"persona_note,omitempty"`
	SentimentData models.SentimentProfile `json:"sentiment_data"`
}

type SaveInput struct {
	GenerationID string
	Username     string
	Records      []models.ActivityRecord
	Persona      persona.Result
	Profile      models.SentimentProfile
}

// Store writes artifacts under a single output directory.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

// Save writes <user>_persona_<ts>.txt and <user>_data_<ts>.json atomically.
func (s *Store) Save(in SaveInput) (Artifact, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("%w: create output dir: %w", ErrPersistenceFailed, err)
	}

	now := s.now()
	ts := now.Format(timestampLayout)
	posts, comments := models.SplitByKind(in.Records)
	if posts == nil {
		posts = []models.ActivityRecord{}
	}
	if comments == nil {
		comments = []models.ActivityRecord{}
	}

	a := Artifact{
		ArtifactID:    in.Username + "_" + ts,
		GenerationID:  in.GenerationID,
		Username:      in.Username,
		PersonaFile:   fmt.Sprintf("%s_persona_%s.txt", in.Username, ts),
		DataFile:      fmt.Sprintf("%s_data_%s.json", in.Username, ts),
		PostsCount:    len(posts),
		CommentsCount: len(comments),
		PersonaMethod: in.Persona.Method,
		PersonaModel:  in.Persona.Model,
		Summary:       in.Profile.Summary,
		MBTIType:      in.Profile.MBTI.Type,
		GeneratedAt:   now,
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Reddit Persona for: %s\n", in.Username)
	fmt.Fprintf(&text, "Generated on: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&text, "Posts analyzed: %d\n", len(posts))
	fmt.Fprintf(&text, "Comments analyzed: %d\n", len(comments))
	text.WriteString(strings.Repeat("=", 50) + "\n\n")
	text.WriteString(in.Persona.Text)

	doc := Document{
		SchemaVersion: SchemaVersion,
		GenerationID:  in.GenerationID,
		Username:      in.Username,
		GeneratedAt:   now,
		Posts:         posts,
		Comments:      comments,
		Persona:       in.Persona.Text,
		PersonaMethod: in.Persona.Method,
		PersonaModel:  in.Persona.Model,
		PersonaNote:   in.Persona.Note,
		SentimentData: in.Profile,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: encode document: %w", ErrPersistenceFailed, err)
	}

	if err := writeFileAtomic(filepath.Join(s.dir, a.PersonaFile), []byte(text.String())); err != nil {
		return Artifact{}, fmt.Errorf("%w: write persona: %w", ErrPersistenceFailed, err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, a.DataFile), raw); err != nil {
		// 텍스트 파일만 남지 않도록 되돌린다.
		_ = os.Remove(filepath.Join(s.dir, a.PersonaFile))
		return Artifact{}, fmt.Errorf("%w: write data: %w", ErrPersistenceFailed, err)
	}
	return a, nil
}

// writeFileAtomic 은 같은 디렉터리의 임시 파일에 쓴 뒤 rename 한다.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// List scans the output directory for data documents, newest first.
func (s *Store) List() ([]Artifact, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*_data_*.json"))
	if err != nil {
		return nil, err
	}
	out := make([]Artifact, 0, len(matches))
	for _, path := range matches {
		id, ok := idFromDataFile(filepath.Base(path))
		if !ok {
			continue
		}
		doc, err := s.readDocument(path)
		if err != nil {
			continue
		}
		out = append(out, metaFromDocument(id, doc))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ArtifactID < out[j].ArtifactID
	})
	return out, nil
}

// Get returns the persona text and the JSON document for id.
func (s *Store) Get(id string) (string, Document, error) {
	personaPath, dataPath, err := s.Paths(id)
	if err != nil {
		return "", Document{}, err
	}
	text, err := os.ReadFile(personaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", Document{}, ErrNotFound
		}
		return "", Document{}, err
	}
	doc, err := s.readDocument(dataPath)
	if err != nil {
		return "", Document{}, err
	}
	return string(text), doc, nil
}

// Paths resolves an artifact id to its two files. The id is validated so it
// cannot escape the output directory.
func (s *Store) Paths(id string) (personaPath, dataPath string, err error) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return "", "", ErrInvalidID
	}
	user, ts := m[1], m[2]
	personaPath = filepath.Join(s.dir, fmt.Sprintf("%s_persona_%s.txt", user, ts))
	dataPath = filepath.Join(s.dir, fmt.Sprintf("%s_data_%s.json", user, ts))
	return personaPath, dataPath, nil
}

func (s *Store) readDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func idFromDataFile(name string) (string, bool) {
	base := strings.TrimSuffix(name, ".json")
	i := strings.LastIndex(base, "_data_")
	if i <= 0 {
		return "", false
	}
	id := base[:i] + "_" + base[i+len("_data_"):]
	return id, idPattern.MatchString(id)
}

func metaFromDocument(id string, doc Document) Artifact {
	m := idPattern.FindStringSubmatch(id)
	user, ts := m[1], m[2]
	return Artifact{
		ArtifactID:    id,
		GenerationID:  doc.GenerationID,
		Username:      doc.Username,
		PersonaFile:   fmt.Sprintf("%s_persona_%s.txt", user, ts),
		DataFile:      fmt.Sprintf("%s_data_%s.json", user, ts),
		PostsCount:    len(doc.Posts),
		CommentsCount: len(doc.Comments),
		PersonaMethod: doc.PersonaMethod,
		PersonaModel:  doc.PersonaModel,
		Summary:       doc.SentimentData.Summary,
		MBTIType:      doc.SentimentData.MBTI.Type,
		GeneratedAt:   doc.GeneratedAt,
	}
}
