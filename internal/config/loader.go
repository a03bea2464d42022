package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by Load. Process variables win over .env.
const (
	EnvVarEnv         = "CLEARSCRIBE_ENV"
	EnvVarLogLevel    = "CLEARSCRIBE_LOG_LEVEL"
	EnvVarProvider    = "CLEARSCRIBE_STT_PROVIDER"
	EnvVarModel       = "CLEARSCRIBE_STT_MODEL"
	EnvVarLanguage    = "CLEARSCRIBE_STT_LANGUAGE"
	EnvVarMainsHz     = "CLEARSCRIBE_MAINS_HZ"
	EnvVarDeepgramKey = "DEEPGRAM_API_KEY"
	EnvVarOpenAIKey   = "OPENAI_API_KEY"
	EnvVarOpenAIURL   = "OPENAI_BASE_URL"
)

// Loader builds a Config. The zero value reads ".env" and the process
// environment and no TOML file.
type Loader struct {
	// Path is an optional TOML file. Empty skips it.
	Path string

	// EnvFiles are dotenv files; missing files are ignored. Nil means ".env".
	EnvFiles []string

	// LookupEnv reads process variables. Nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the TOML file at path (if any), .env
// and the environment.
func Load(path string) (*Config, error) {
	return Loader{Path: path}.Load()
}

// Load applies every layer and validates the result.
func (l Loader) Load() (*Config, error) {
	cfg := Default()

	if l.Path != "" {
		f, err := os.Open(l.Path)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("open %q: %w", l.Path, err)}
		}
		defer f.Close()
		if err := decodeTOML(f, cfg); err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("parse %q: %w", l.Path, err)}
		}
	}

	lookup, err := l.lookup()
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes TOML from r over the defaults and validates the
// result. The environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeTOML(r, cfg); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode toml: %w", err)
	}
	return nil
}

// lookup merges dotenv values under the process environment.
func (l Loader) lookup() (func(string) (string, bool), error) {
	files := l.EnvFiles
	if files == nil {
		files = []string{".env"}
	}

	dotenv := map[string]string{}
	for _, name := range files {
		vals, err := godotenv.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("read %q: %w", name, err)}
		}
		for k, v := range vals {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}

	process := l.LookupEnv
	if process == nil {
		process = os.LookupEnv
	}
	return func(key string) (string, bool) {
		if v, ok := process(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvVarEnv:         &cfg.Env,
		EnvVarLogLevel:    &cfg.LogLevel,
		EnvVarProvider:    &cfg.STT.Provider,
		EnvVarModel:       &cfg.STT.Model,
		EnvVarLanguage:    &cfg.STT.Language,
		EnvVarDeepgramKey: &cfg.STT.DeepgramAPIKey,
		EnvVarOpenAIKey:   &cfg.STT.OpenAIAPIKey,
		EnvVarOpenAIURL:   &cfg.STT.OpenAIBaseURL,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvVarMainsHz); ok && v != "" {
		hz, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Field: "filters.mains_hz", Err: fmt.Errorf("%s=%q is not an integer", EnvVarMainsHz, v)}
		}
		cfg.Filters.MainsHz = hz
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks cfg against its struct constraints and returns the first
// failure as a ConfigError.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Err: err}
	}
	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return &ConfigError{Field: field, Err: fmt.Errorf("value %v fails %q", fe.Value(), ruleOf(fe))}
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
