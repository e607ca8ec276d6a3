package rental

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// formDataAlias drops FormData's methods so the codec can reuse its tags.
type formDataAlias FormData

type formDataWire struct {
	formDataAlias
	Details json.RawMessage `json:"details,omitempty"`
}

// MarshalJSON encodes the common fields plus the category variant under "details".
func (fd FormData) MarshalJSON() ([]byte, error) {
	wire := formDataWire{formDataAlias: formDataAlias(fd)}
	if fd.Details != nil {
		raw, err := json.Marshal(fd.Details)
		if err != nil {
			return nil, fmt.Errorf("encoding details: %w", err)
		}
		wire.Details = raw
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes "details" into the variant selected by "category".
func (fd *FormData) UnmarshalJSON(data []byte) error {
	var wire formDataWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	details, err := decodeDetails(wire.Category, wire.Details)
	if err != nil {
		return err
	}

	*fd = FormData(wire.formDataAlias)
	fd.Details = details
	return nil
}

func decodeDetails(c Category, raw json.RawMessage) (Details, error) {
	d := fieldBag{}.into(c)
	if len(raw) == 0 || string(raw) == "null" {
		return d, nil
	}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decoding %s details: %w", c.OrDefault(), err)
	}
	return d, nil
}

// Clone returns a deep copy of fd.
func (fd *FormData) Clone() *FormData {
	if fd == nil {
		return nil
	}
	data, err := json.Marshal(fd)
	if err != nil {
		// Every field is plain data; encoding cannot fail.
		panic(fmt.Sprintf("rental: cloning form data: %v", err))
	}
	var out FormData
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("rental: cloning form data: %v", err))
	}
	return &out
}

// ParseFormData decodes a draft from JSON or YAML.
func ParseFormData(data []byte) (*FormData, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing form data: %w", err)
	}
	var fd FormData
	if err := json.Unmarshal(jsonData, &fd); err != nil {
		return nil, fmt.Errorf("decoding form data: %w", err)
	}
	fd.normalize()
	return &fd, nil
}

// YAML renders fd as YAML using its JSON field names.
func (fd *FormData) YAML() (string, error) {
	data, err := json.Marshal(fd)
	if err != nil {
		return "", err
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
