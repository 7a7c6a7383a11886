package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/theleeeo/pgjobq/jobqueue"
)

// ScheduleConfig is one entry of the schedules file, keyed by its name:
//
//	nightly-report:
//	  cron: "0 3 * * *"
//	  job: report
//	  args: {kind: daily}
//	  retries: 5
type ScheduleConfig struct {
	Name    string         `yaml:"-"`
	Cron    string         `yaml:"cron"`
	Job     string         `yaml:"job"`
	Args    map[string]any `yaml:"args"`
	Retries int            `yaml:"retries"`
}

func (c ScheduleConfig) Validate() error {
	if c.Cron == "" {
		return fmt.Errorf("cron required")
	}
	if _, err := jobqueue.ParseSchedule(c.Cron); err != nil {
		return fmt.Errorf("invalid cron %q: %w", c.Cron, err)
	}
	if c.Job == "" {
		return fmt.Errorf("job required")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	return nil
}

type Schedules []*ScheduleConfig

func (s Schedules) Validate() error {
	for i, sc := range s {
		if err := sc.Validate(); err != nil {
			if sc.Name != "" {
				return fmt.Errorf("schedule %q: %w", sc.Name, err)
			}
			return fmt.Errorf("schedule %d: %w", i, err)
		}
	}
	return nil
}

// LoadSchedules reads and validates a schedules file. An empty path means no
// schedules.
func LoadSchedules(path string) (Schedules, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseSchedules(data)
}

func ParseSchedules(data []byte) (Schedules, error) {
	var raw map[string]*ScheduleConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	schedules := make(Schedules, 0, len(raw))
	for name, sc := range raw {
		if sc == nil {
			return nil, fmt.Errorf("schedule %q: empty entry", name)
		}
		sc.Name = name
		schedules = append(schedules, sc)
	}
	slices.SortFunc(schedules, func(a, b *ScheduleConfig) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	if err := schedules.Validate(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// Jobqueue converts the file entries into clock schedules.
func (s Schedules) Jobqueue() ([]jobqueue.Schedule, error) {
	out := make([]jobqueue.Schedule, 0, len(s))
	for _, sc := range s {
		var args json.RawMessage
		if len(sc.Args) > 0 {
			b, err := json.Marshal(sc.Args)
			if err != nil {
				return nil, fmt.Errorf("schedule %q: encode args: %w", sc.Name, err)
			}
			args = b
		}
		out = append(out, jobqueue.Schedule{
			Name:    sc.Name,
			Cron:    sc.Cron,
			Job:     sc.Job,
			Args:    args,
			Retries: sc.Retries,
		})
	}
	return out, nil
}
