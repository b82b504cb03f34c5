// Package config loads the capacity ceilings and logging settings of the
// store. Values come from built-in defaults, then an optional YAML file, then
// environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Capacity bounds every collection in the registry. A value of 0 disables the
// ceiling for that collection.
type Capacity struct {
	Users         int `yaml:"users" env:"LMS_MAX_USERS"`
	Courses       int `yaml:"courses" env:"LMS_MAX_COURSES"`
	Assignments   int `yaml:"assignments" env:"LMS_MAX_ASSIGNMENTS"`
	Submissions   int `yaml:"submissions" env:"LMS_MAX_SUBMISSIONS"`
	Notifications int `yaml:"notifications" env:"LMS_MAX_NOTIFICATIONS"`

	CourseStudents        int `yaml:"course_students" env:"LMS_MAX_COURSE_STUDENTS"`
	CourseAssignments     int `yaml:"course_assignments" env:"LMS_MAX_COURSE_ASSIGNMENTS"`
	AssignmentSubmissions int `yaml:"assignment_submissions" env:"LMS_MAX_ASSIGNMENT_SUBMISSIONS"`
	StudentCourses        int `yaml:"student_courses" env:"LMS_MAX_STUDENT_COURSES"`
	FacultyCourses        int `yaml:"faculty_courses" env:"LMS_MAX_FACULTY_COURSES"`
}

// Logging selects the level ("debug", "info", "warn", "error") and format
// ("json" or "text") of the structured logger.
type Logging struct {
	Level  string `yaml:"level" env:"LMS_LOG_LEVEL"`
	Format string `yaml:"format" env:"LMS_LOG_FORMAT"`
}

// Config is the full configuration document.
type Config struct {
	Capacity Capacity `yaml:"capacity"`
	Logging  Logging  `yaml:"logging"`
}

// DefaultCapacity sizes the store for a single department's working set.
var DefaultCapacity = Capacity{
	Users:                 200,
	Courses:               50,
	Assignments:           500,
	Submissions:           5000,
	Notifications:         10000,
	CourseStudents:        60,
	CourseAssignments:     20,
	AssignmentSubmissions: 60,
	StudentCourses:        8,
	FacultyCourses:        5,
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Capacity: DefaultCapacity,
		Logging:  Logging{Level: "info", Format: "json"},
	}
}

// Load reads configPath (skipped when empty or missing), applies environment
// overrides and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects negative capacities and unknown logging settings.
func (c *Config) Validate() error {
	limits := map[string]int{
		"users":                  c.Capacity.Users,
		"courses":                c.Capacity.Courses,
		"assignments":            c.Capacity.Assignments,
		"submissions":            c.Capacity.Submissions,
		"notifications":          c.Capacity.Notifications,
		"course_students":        c.Capacity.CourseStudents,
		"course_assignments":     c.Capacity.CourseAssignments,
		"assignment_submissions": c.Capacity.AssignmentSubmissions,
		"student_courses":        c.Capacity.StudentCourses,
		"faculty_courses":        c.Capacity.FacultyCourses,
	}
	for name, v := range limits {
		if v < 0 {
			return fmt.Errorf("capacity %s must not be negative, got %d", name, v)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	return nil
}
