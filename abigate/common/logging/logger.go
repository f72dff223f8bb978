package logging

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

type Logger = zerolog.Logger

const filterEnv = "ABIGATE_LOG_FILTER"

var (
	componentsFilter = make(map[string]bool)
	all              = true
	lock             = sync.RWMutex{}
)

// ComponentFilterWriter drops records of components disabled by ApplyComponentsFilter.
type ComponentFilterWriter struct {
	Writer io.Writer
	Name   string
}

func (w ComponentFilterWriter) Write(p []byte) (n int, err error) {
	lock.RLock()
	enabled, found := componentsFilter[w.Name]
	lock.RUnlock()

	if !found {
		enabled = all
	}
	if !enabled {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

func ApplyComponentsFilterEnv() {
	if logFilter := os.Getenv(filterEnv); logFilter != "" {
		ApplyComponentsFilter(logFilter)
	}
}

// ApplyComponentsFilter enables or disables logging per component.
// The filter is a colon-separated list, e.g. "all:-resolver" or "-all:invoker".
func ApplyComponentsFilter(filter string) {
	comps := strings.Split(filter, ":")

	lock.Lock()
	defer lock.Unlock()

	for _, comp := range comps {
		if comp == "" {
			continue
		}

		enabled := true
		if comp[0] == '-' {
			enabled = false
			comp = comp[1:]
		}

		if comp == "all" {
			all = enabled
			for k := range componentsFilter {
				componentsFilter[k] = enabled
			}
		} else {
			componentsFilter[comp] = enabled
		}
	}
}

func SetupGlobalLogger(level string) {
	if err := TrySetupGlobalLevel(level); err != nil {
		panic(err)
	}
	ApplyComponentsFilterEnv()
	log.Logger = NewLogger("global")
}

func TrySetupGlobalLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

func makeComponentFormatter(noColor bool) zerolog.Formatter {
	bold := color.New(color.Bold)
	if noColor {
		bold.DisableColor()
	}
	return func(c any) string {
		return bold.Sprintf("[%s]\t", c)
	}
}

func NewLogger(component string) Logger {
	noColor := os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd()))

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			FieldComponent,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
		FieldsExclude:    []string{FieldComponent},
		FormatFieldValue: makeComponentFormatter(noColor),
		NoColor:          noColor,
	}
	return newLogger(component, ComponentFilterWriter{Writer: consoleWriter, Name: component})
}

// NewLoggerWithWriter writes JSON records to writer. Mostly useful in tests.
func NewLoggerWithWriter(component string, writer io.Writer) Logger {
	return newLogger(component, ComponentFilterWriter{Writer: writer, Name: component})
}

func newLogger(component string, writer io.Writer) Logger {
	return zerolog.New(writer).
		With().
		Str(FieldComponent, component).
		Caller().
		Timestamp().
		Logger()
}

// DecodeRecords splits JSON log output into records.
func DecodeRecords(data []byte) ([]map[string]any, error) {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func Nop() Logger {
	return zerolog.Nop()
}
