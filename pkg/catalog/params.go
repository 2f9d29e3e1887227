package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/models"
)

const dateLayout = "2006-01-02"

// ConvertParams validates raw positional arguments against the spec's
// declared parameters and converts them to driver-ready values. Validation
// happens entirely client side; nothing reaches the database on failure.
func ConvertParams(spec *models.QuerySpec, raw []string) ([]interface{}, error) {
	if len(raw) != len(spec.Params) {
		return nil, errors.New(errors.CodeInvalidParameter,
			fmt.Sprintf("query %q expects %d parameter(s), got %d", spec.ID, len(spec.Params), len(raw))).
			WithDetail("query_id", spec.ID)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(raw))
	for i, param := range spec.Params {
		value, err := convertParam(param, raw[i])
		if err != nil {
			return nil, err
		}
		args[i] = value
	}
	return args, nil
}

func convertParam(param models.ParamSpec, raw string) (interface{}, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, errors.New(errors.CodeInvalidParameter,
			fmt.Sprintf("parameter %q requires a value", param.Name)).
			WithDetail("parameter", param.Name)
	}

	switch param.Type {
	case models.ParamTypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidParameter,
				fmt.Sprintf("parameter %q must be an integer, got %q", param.Name, raw)).
				WithDetail("parameter", param.Name)
		}
		return n, nil
	case models.ParamTypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidParameter,
				fmt.Sprintf("parameter %q must be a number, got %q", param.Name, raw)).
				WithDetail("parameter", param.Name)
		}
		return f, nil
	case models.ParamTypeDate:
		// time.Parse rejects impossible calendar dates such as month 13.
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidParameter,
				fmt.Sprintf("parameter %q must be a date in YYYY-MM-DD form, got %q", param.Name, raw)).
				WithDetail("parameter", param.Name)
		}
		return t.Format(dateLayout), nil
	case models.ParamTypeString:
		return value, nil
	default:
		return nil, errors.New(errors.CodeInvalidParameter,
			fmt.Sprintf("parameter %q has unsupported type %q", param.Name, param.Type)).
			WithDetail("parameter", param.Name)
	}
}
