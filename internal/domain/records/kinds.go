package records

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifica una colección de registros por mascota (/pets/{id}/{kind}).
type Kind string

const (
	KindHealthRecords Kind = "health-records"
	KindVaccines      Kind = "vaccines"
	KindMedications   Kind = "medications"
	KindWeights       Kind = "weights"
	KindMedia         Kind = "media"
	KindMedicalVisits Kind = "medical-visits"
	KindVaccineScans  Kind = "vaccine-scans"
)

// DateLayout es el formato de los campos de fecha.
const DateLayout = "2006-01-02"

type fieldType int

const (
	fieldString fieldType = iota
	fieldDate
	fieldNumber
	fieldInt
)

var kindFields = map[Kind]map[string]fieldType{
	KindHealthRecords: {
		"record_date": fieldDate,
		"description": fieldString,
		"vet_id":      fieldInt,
	},
	KindVaccines: {
		"vaccine_name": fieldString,
		"date":         fieldDate,
		"next_due":     fieldDate,
		"vet_clinic":   fieldString,
		"notes":        fieldString,
	},
	KindMedications: {
		"medication": fieldString,
		"dose":       fieldString,
		"frequency":  fieldString,
		"start_date": fieldDate,
		"end_date":   fieldDate,
		"notes":      fieldString,
	},
	KindWeights: {
		"date":   fieldDate,
		"weight": fieldNumber,
	},
	KindMedia: {
		"url":        fieldString,
		"media_type": fieldString,
	},
	KindMedicalVisits: {
		"vet_id":     fieldInt,
		"visit_date": fieldDate,
		"diagnosis":  fieldString,
		"treatment":  fieldString,
		"notes":      fieldString,
	},
	KindVaccineScans: {
		"file_url":       fieldString,
		"extracted_text": fieldString,
		"ocr_metadata":   fieldString,
	},
}

// Kinds devuelve los tipos soportados en orden estable.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindFields))
	for k := range kindFields {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kindFields[k]; !ok {
		return "", fmt.Errorf("%w: unknown record kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

// FieldNames lista los campos aceptados por un kind.
func FieldNames(k Kind) []string {
	catalog := kindFields[k]
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NormalizeFields valida los campos contra el kind.
// Los null se descartan (igual que un campo ausente); números enteros llegan como float64 desde JSON.
func NormalizeFields(k Kind, raw map[string]any) (map[string]any, error) {
	catalog, ok := kindFields[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown record kind %q", ErrInvalidInput, k)
	}

	out := make(map[string]any, len(raw))
	for name, v := range raw {
		ft, known := catalog[name]
		if !known {
			return nil, fmt.Errorf("%w: field %q not allowed for %s", ErrInvalidInput, name, k)
		}
		if v == nil {
			continue
		}

		switch ft {
		case fieldString:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a string", ErrInvalidInput, name)
			}
			out[name] = s
		case fieldDate:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be YYYY-MM-DD", ErrInvalidInput, name)
			}
			if _, err := time.Parse(DateLayout, s); err != nil {
				return nil, fmt.Errorf("%w: field %q must be YYYY-MM-DD", ErrInvalidInput, name)
			}
			out[name] = s
		case fieldNumber:
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a number", ErrInvalidInput, name)
			}
			out[name] = f
		case fieldInt:
			f, ok := toFloat(v)
			if !ok || f != math.Trunc(f) {
				return nil, fmt.Errorf("%w: field %q must be an integer", ErrInvalidInput, name)
			}
			out[name] = int64(f)
		}
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ParseFieldValue convierte texto (CLI, formularios) al tipo del campo.
func ParseFieldValue(k Kind, name, raw string) (any, error) {
	catalog, ok := kindFields[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown record kind %q", ErrInvalidInput, k)
	}
	ft, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %q not allowed for %s", ErrInvalidInput, name, k)
	}

	raw = strings.TrimSpace(raw)
	switch ft {
	case fieldNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q must be a number", ErrInvalidInput, name)
		}
		return f, nil
	case fieldInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q must be an integer", ErrInvalidInput, name)
		}
		return n, nil
	default:
		return raw, nil
	}
}
