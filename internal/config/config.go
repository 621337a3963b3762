// Package config handles torus-drive configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Landscape LandscapeConfig `yaml:"landscape"`
	Vehicle   VehicleConfig   `yaml:"vehicle"`
	Camera    CameraConfig    `yaml:"camera"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds desktop viewer display settings.
type WindowConfig struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LandscapeConfig describes the torus and its height map.
type LandscapeConfig struct {
	HeightMap   string  `yaml:"height_map"`   // Image path; empty means a flat field
	FlatSize    int     `yaml:"flat_size"`    // Grid size used when HeightMap is empty
	Resolution  int     `yaml:"resolution"`   // Max grid cells per axis, 0 = native image size
	HeightScale float64 `yaml:"height_scale"` // Height of a full-red pixel before Scale
	InnerRadius float64 `yaml:"inner_radius"`
	OuterRadius float64 `yaml:"outer_radius"`
	Scale       float64 `yaml:"scale"`     // Uniform world scale applied after build
	Clearance   float64 `yaml:"clearance"` // Vehicle height above the surface; negative sits on it, 0 is rejected
	Epsilon     float64 `yaml:"epsilon"`   // UV step for tangent estimation
}

// VehicleConfig holds driving settings.
type VehicleConfig struct {
	Speed     float64 `yaml:"speed"`      // Grid cells per second
	TurnRate  float64 `yaml:"turn_rate"`  // Radians per second
	WheelSpin float64 `yaml:"wheel_spin"` // Wheel radians per cell travelled
	StartU    float64 `yaml:"start_u"`
	StartV    float64 `yaml:"start_v"`
}

// CameraConfig holds viewer camera settings.
type CameraConfig struct {
	FOV         float32 `yaml:"fov"` // Degrees
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Distance    float32 `yaml:"distance"`     // Orbit distance from the vehicle
	ChaseHeight float32 `yaml:"chase_height"` // Chase camera height above the vehicle
	ChaseBehind float32 `yaml:"chase_behind"` // Chase camera distance behind the vehicle
}

// ServerConfig holds pose streaming settings.
type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	TickRate     int           `yaml:"tick_rate"` // Simulation steps per second
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:         "torus-drive",
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			ScreenshotDir: "screenshots",
		},
		Landscape: LandscapeConfig{
			HeightMap:   "",
			FlatSize:    64,
			Resolution:  256,
			HeightScale: 0.1,
			InnerRadius: 0.3,
			OuterRadius: 1,
			Scale:       100,
			Clearance:   1,
			Epsilon:     0.01,
		},
		Vehicle: VehicleConfig{
			Speed:     30,                // 0.5 cells per frame at 60 fps
			TurnRate:  math.Pi / 75 * 60, // pi/75 per frame at 60 fps
			WheelSpin: math.Pi / 4,
		},
		Camera: CameraConfig{
			FOV:         45,
			Near:        0.1,
			Far:         10000,
			Distance:    40,
			ChaseHeight: 8,
			ChaseBehind: 20,
		},
		Server: ServerConfig{
			Listen:       "127.0.0.1:8080",
			TickRate:     60,
			WriteTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks ranges that would otherwise fail deep inside the simulation.
func (c *Config) Validate() error {
	l := c.Landscape
	switch {
	case l.OuterRadius <= l.InnerRadius:
		return fmt.Errorf("%w: landscape.outer_radius (%g) must exceed inner_radius (%g)", ErrInvalid, l.OuterRadius, l.InnerRadius)
	case l.HeightMap == "" && l.FlatSize < 2:
		return fmt.Errorf("%w: landscape.flat_size must be at least 2, got %d", ErrInvalid, l.FlatSize)
	case l.Resolution != 0 && l.Resolution < 2:
		return fmt.Errorf("%w: landscape.resolution must be 0 or at least 2, got %d", ErrInvalid, l.Resolution)
	case l.Scale <= 0:
		return fmt.Errorf("%w: landscape.scale must be positive, got %g", ErrInvalid, l.Scale)
	case l.Clearance == 0:
		return fmt.Errorf("%w: landscape.clearance must not be 0, use a negative value to sit on the surface", ErrInvalid)
	case l.Epsilon <= 0:
		return fmt.Errorf("%w: landscape.epsilon must be positive, got %g", ErrInvalid, l.Epsilon)
	case c.Vehicle.Speed < 0 || c.Vehicle.TurnRate < 0:
		return fmt.Errorf("%w: vehicle speed and turn_rate must not be negative", ErrInvalid)
	case c.Server.TickRate <= 0:
		return fmt.Errorf("%w: server.tick_rate must be positive, got %d", ErrInvalid, c.Server.TickRate)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	return nil
}
