package repository

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"

	apperrors "shopapi/internal/errors"
	"shopapi/internal/model"
	"shopapi/internal/patch"
)

// extraFieldName is the struct field holding out-of-schema attributes.
const extraFieldName = "Extra"

// fieldResolver maps patch field names onto a model's columns.
type fieldResolver struct {
	columns     map[string]*schema.Field
	extraColumn string
}

func newFieldResolver(dest any, namer schema.Namer) (*fieldResolver, error) {
	sch, err := schema.Parse(dest, &sync.Map{}, namer)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	r := &fieldResolver{columns: make(map[string]*schema.Field)}
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		if f.Name == extraFieldName {
			r.extraColumn = f.DBName
			continue
		}
		r.columns[f.DBName] = f
		r.columns[f.Name] = f
		if name := jsonName(f); name != "" {
			r.columns[name] = f
		}
	}
	return r, nil
}

func jsonName(f *schema.Field) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// canonical returns the column name of a known field and name otherwise.
func (r *fieldResolver) canonical(name string) string {
	if f, ok := r.columns[name]; ok {
		return f.DBName
	}
	return name
}

// split separates fields into column assignments and out-of-schema attributes.
func (r *fieldResolver) split(fields patch.MergeSet) (map[string]any, map[string]string, error) {
	columns := make(map[string]any)
	extra := make(map[string]string)
	for name, value := range fields {
		f, ok := r.columns[name]
		if !ok {
			extra[name] = value
			continue
		}
		if f.PrimaryKey {
			return nil, nil, apperrors.ErrImmutableField.Wrap(fmt.Errorf("field %q", name))
		}
		if _, taken := columns[f.DBName]; taken {
			return nil, nil, apperrors.Validation(fmt.Sprintf("field %s is set more than once", f.DBName))
		}
		converted, err := convert(f, value)
		if err != nil {
			return nil, nil, apperrors.Validation(fmt.Sprintf("invalid value for %s", name))
		}
		columns[f.DBName] = converted
	}
	if len(extra) > 0 && r.extraColumn == "" {
		return nil, nil, apperrors.Validation("unknown field")
	}
	return columns, extra, nil
}

// extraRow receives the stored out-of-schema attributes.
type extraRow struct {
	Extra model.Attributes
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// convert parses value into the Go type stored by f.
func convert(f *schema.Field, value string) (any, error) {
	if f.FieldType == decimalType {
		return decimal.NewFromString(value)
	}
	switch f.DataType {
	case schema.Bool:
		return strconv.ParseBool(value)
	case schema.Int:
		return strconv.ParseInt(value, 10, 64)
	case schema.Uint:
		return strconv.ParseUint(value, 10, 64)
	case schema.Float:
		return strconv.ParseFloat(value, 64)
	case schema.Time:
		return time.Parse(time.RFC3339, value)
	default:
		return value, nil
	}
}
