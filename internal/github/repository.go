package github

import (
	"encoding/json"
	"fmt"
)

// Repository is the reduced repository entity shown to the user.
type Repository struct {
	Name       string
	APIURL     string
	OwnerLogin string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.OwnerLogin + "/" + r.Name
}

func (r Repository) String() string {
	return r.Name
}

// MapRepository extracts name, url and owner.login from a raw repository
// record. A missing, null or non-string field yields ErrMalformedRecord.
func MapRepository(raw json.RawMessage) (Repository, error) {
	var record map[string]interface{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return Repository{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if record == nil {
		return Repository{}, fmt.Errorf("%w: record is null", ErrMalformedRecord)
	}

	name, err := stringField(record, "name")
	if err != nil {
		return Repository{}, err
	}
	url, err := stringField(record, "url")
	if err != nil {
		return Repository{}, err
	}

	owner, ok := record["owner"].(map[string]interface{})
	if !ok {
		return Repository{}, fmt.Errorf("%w: field %q is missing or not an object", ErrMalformedRecord, "owner")
	}
	login, err := stringField(owner, "login")
	if err != nil {
		return Repository{}, fmt.Errorf("owner: %w", err)
	}

	return Repository{Name: name, APIURL: url, OwnerLogin: login}, nil
}

func stringField(record map[string]interface{}, key string) (string, error) {
	v, ok := record[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is missing or not a string", ErrMalformedRecord, key)
	}
	return v, nil
}
