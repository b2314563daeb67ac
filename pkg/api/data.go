package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"
)

func sprintfPath(path string, args ...any) string {
	if len(args) == 0 {
		return path
	}

	return fmt.Sprintf(path, args...)
}

type Parameter map[string]string

func (p Parameter) Encode() string {
	var parameters []string
	for key, value := range p {
		parameters = append(parameters, key+"="+url.QueryEscape(value))
	}
	sort.Strings(parameters)
	return strings.Join(parameters, "&")
}

type JSON map[string]any

type Array []JSON

func (j JSON) ToReader() (io.Reader, string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, "", err
	}

	return bytes.NewBuffer(b), "application/json", nil
}

func (j JSON) Get(key string) (any, error) {
	value, ok := j[key]
	if !ok {
		return nil, fmt.Errorf("not found field %s", key)
	}

	return value, nil
}

func (j JSON) GetJSON(key string) (JSON, error) {
	value, err := j.Get(key)
	if err != nil {
		return nil, err
	}

	switch t := value.(type) {
	case JSON:
		return t, nil
	case map[string]any:
		return JSON(t), nil
	}

	return nil, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (j JSON) GetArray(key string) (Array, error) {
	value, err := j.Get(key)
	if err != nil {
		return nil, err
	}

	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid type of field %s (%T)", key, value)
	}

	array := make(Array, 0, len(raw))
	for i := range raw {
		m, ok := raw[i].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid type of element %d of field %s", i, key)
		}

		array = append(array, JSON(m))
	}

	return array, nil
}

func (j JSON) GetString(key string) (string, error) {
	value, err := j.Get(key)
	if err != nil {
		return "", err
	}

	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid type of field %s (%T)", key, value)
	}

	return s, nil
}

func (j JSON) GetInt(key string) (int, error) {
	value, err := j.Get(key)
	if err != nil {
		return 0, err
	}

	switch t := value.(type) {
	case int:
		return t, nil
	case float64:
		if t == float64(int(t)) {
			return int(t), nil
		}
		return 0, fmt.Errorf("invalid type of field %s (actually float64)", key)
	}

	return 0, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (j JSON) GetBool(key string) (bool, error) {
	value, err := j.Get(key)
	if err != nil {
		return false, err
	}

	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("invalid type of field %s (%T)", key, value)
	}

	return b, nil
}

func (j JSON) GetTime(key, layout string) (time.Time, error) {
	s, err := j.GetString(key)
	if err != nil {
		return time.Time{}, err
	}

	return time.Parse(layout, s)
}

// OptionalString returns the string value of key, or def if the field is
// absent or has another type.
func (j JSON) OptionalString(key, def string) string {
	s, err := j.GetString(key)
	if err != nil {
		return def
	}

	return s
}

// OptionalInt returns the integer value of key, or def if the field is
// absent or has another type.
func (j JSON) OptionalInt(key string, def int) int {
	i, err := j.GetInt(key)
	if err != nil {
		return def
	}

	return i
}

func bytesToJSON(b []byte) (JSON, error) {
	j := JSON{}
	if err := json.Unmarshal(b, &j); err != nil {
		return nil, err
	}

	return j, nil
}

func bytesToArray(b []byte) (Array, error) {
	var a []map[string]any
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, err
	}

	array := make(Array, 0, len(a))
	for i := range a {
		array = append(array, JSON(a[i]))
	}

	return array, nil
}
