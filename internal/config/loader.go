package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/jobboard/internal/catalog"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads the configuration from the environment, applies defaults and
// validates the result. A blank variable counts as unset.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := eachField(reflect.ValueOf(cfg).Elem(), loadField); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// eachField calls fn for every settable leaf field of the struct v,
// descending into nested structs.
func eachField(v reflect.Value, fn func(reflect.StructField, reflect.Value) error) error {
	for i := range v.NumField() {
		field, fv := v.Type().Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := eachField(fv, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(field, fv); err != nil {
			return err
		}
	}
	return nil
}

func loadField(field reflect.StructField, fv reflect.Value) error {
	names := envNames(field)
	if len(names) == 0 {
		return nil
	}

	value := field.Tag.Get("default")
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			value = v
			break
		}
	}
	if value == "" {
		return nil
	}

	if err := setField(fv, value); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", names[0], value, err)
	}
	return nil
}

// envNames returns the variables a field is read from, primary first.
func envNames(field reflect.StructField) []string {
	tag := field.Tag.Get("env")
	if tag == "" {
		return nil
	}
	return strings.Split(tag, ",")
}

func setField(fv reflect.Value, value string) error {
	switch {
	case fv.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))

	case fv.Kind() == reflect.String:
		fv.SetString(value)

	case fv.CanInt():
		n, err := strconv.ParseInt(value, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)

	case fv.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		fv.SetBool(b)

	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		fv.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their primary variable name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if names := envNames(f); len(names) > 0 {
			return names[0]
		}
		return ""
	})

	_ = v.RegisterValidation("feedurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		return catalog.ValidateSchedule(fl.Field().String()) == nil
	})
	return v
}

// Validate checks every field and reports all failures in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func describe(fe validator.FieldError) string {
	subject := fmt.Sprintf("%s (%v)", fe.Field(), fe.Value())
	if s, ok := fe.Value().(string); ok {
		subject = fmt.Sprintf("%s (%q)", fe.Field(), s)
	}

	switch fe.Tag() {
	case "feedurl":
		return subject + " must be an absolute http(s) URL"
	case "cronspec":
		return subject + " is not a valid cron schedule"
	case "oneof":
		return subject + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return subject + " must be at least " + fe.Param()
	case "max", "lte":
		return subject + " must be at most " + fe.Param()
	case "gt":
		return subject + " must be positive"
	case "cidr|ip":
		return subject + " must be a CIDR or an IP address"
	}
	return fmt.Sprintf("%s fails %s", subject, fe.Tag())
}

// String describes the config for startup logs. The feed URL is cut down
// to its host since query strings often carry a token.
func (c *Config) String() string {
	feed := "[bundled sample]"
	if c.Feed.URL != "" {
		feed = "[MASKED]"
		if u, err := url.Parse(c.Feed.URL); err == nil && u.Host != "" {
			feed = u.Scheme + "://" + u.Host + "/..."
		}
	}

	return fmt.Sprintf("Config{Server: {Addr: %s}, Feed: {URL: %s, FetchTimeout: %s, MaxBytes: %d}, "+
		"Catalog: {RefreshSchedule: %q, ReloadDebounce: %s}, Board: {PageSize: %d, ReloadRate: %d}, "+
		"Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(), feed, c.Feed.FetchTimeout, c.Feed.MaxBytes,
		c.Catalog.RefreshSchedule, c.Catalog.ReloadDebounce, c.Board.PageSize, c.Board.ReloadRate,
		c.Logging.Level, c.Logging.Format)
}
