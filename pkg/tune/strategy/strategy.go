// Package strategy loads the operator-supplied tuning strategy for the
// managed inference server. The strategy lives in a small key=value file
// (shell-env syntax, # comments) at a well-known path; every field except
// the file itself is optional and falls back to a documented default.
package strategy

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingConfig is returned when the strategy file does not exist.
// The pipeline treats this as fatal: no defaults are substituted for a
// missing file, only for missing fields within an existing file.
var ErrMissingConfig = errors.New("strategy file not found")

// ErrMalformed is returned when the strategy file exists but cannot be
// parsed, or when a numeric override is not a valid integer.
var ErrMalformed = errors.New("malformed strategy file")

// Mode names the tuning strategy that selects the formula table.
type Mode string

// Recognized modes, from most to least conservative. Validation happens in
// the calculator, not here, so operators get the invalid-mode error even if
// they bypass the loader.
const (
	ModeConservative Mode = "conservative"
	ModeBalanced     Mode = "balanced"
	ModeAggressive   Mode = "aggressive"
)

// DefaultMode is used when the strategy file does not set MODE.
const DefaultMode = ModeConservative

// Strategy is the parsed strategy file. Zero values in the override fields
// mean "use the mode's built-in constant". The struct is immutable once
// loaded; the loader never touches process environment variables.
type Strategy struct {
	// Mode selects the formula table in the calculator.
	Mode Mode

	// HeadroomCores overrides the cores reserved for the OS.
	HeadroomCores int

	// CoresPerWorker overrides the per-worker thread count.
	CoresPerWorker int

	// TimeoutSeconds overrides the request timeout written to the server.
	TimeoutSeconds int

	// BatchSize overrides the batch size written to the server.
	BatchSize int
}

// Recognized strategy file keys.
const (
	keyMode           = "MODE"
	keyHeadroomCores  = "HEADROOM_CORES"
	keyCoresPerWorker = "CORES_PER_WORKER"
	keyTimeoutSeconds = "TIMEOUT_S"
	keyBatchSize      = "BATCH_SIZE"
)

// Load reads and parses the strategy file at path.
//
// A missing file returns ErrMissingConfig. Lines that are not key=value
// pairs (or numeric fields that do not parse as integers) return
// ErrMalformed. Unknown keys are ignored so the file can carry settings
// for other tools.
func Load(path string) (Strategy, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Strategy{}, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return Strategy{}, fmt.Errorf("stat strategy file %s: %w", path, err)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return Strategy{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	s := Strategy{Mode: DefaultMode}
	if mode, ok := values[keyMode]; ok && mode != "" {
		s.Mode = Mode(mode)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{keyHeadroomCores, &s.HeadroomCores},
		{keyCoresPerWorker, &s.CoresPerWorker},
		{keyTimeoutSeconds, &s.TimeoutSeconds},
		{keyBatchSize, &s.BatchSize},
	}
	for _, field := range ints {
		raw, ok := values[field.key]
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Strategy{}, fmt.Errorf("%w: %s: %s=%q is not an integer", ErrMalformed, path, field.key, raw)
		}
		*field.dst = n
	}

	return s, nil
}
