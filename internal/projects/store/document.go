package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

const (
	schemaVersion = 1
	keyPrefix     = "projects/"
	keySuffix     = ".json"
)

// document is the stored envelope around a project. A deleted document is a tombstone:
// it keeps the id reserved and its revision history monotonic until it is purged.
type document struct {
	Schema    int            `json:"schema"`
	Project   domain.Project `json:"project"`
	Deleted   bool           `json:"deleted,omitempty"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
}

func encodeDocument(d document) ([]byte, error) {
	d.Schema = schemaVersion
	return json.Marshal(d)
}

func decodeDocument(data []byte) (document, error) {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return document{}, fmt.Errorf("decode document: %w", err)
	}
	if d.Schema != schemaVersion {
		return document{}, fmt.Errorf("unsupported document schema %d", d.Schema)
	}
	if d.Project.Comments == nil {
		d.Project.Comments = []domain.Comment{}
	}
	return d, nil
}

func objectKey(id string) string {
	return keyPrefix + id + keySuffix
}

func idFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, keyPrefix) || !strings.HasSuffix(key, keySuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), keySuffix)
	return id, domain.ValidProjectID(id)
}
