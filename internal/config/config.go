package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	MovesDir     string   `mapstructure:"moves_dir"`
	TreesDir     string   `mapstructure:"trees_dir"`
	Weights      []string `mapstructure:"weights"`
	MeanPath     string   `mapstructure:"mean_path"`
	StdPath      string   `mapstructure:"std_path"`
	Threads      int      `mapstructure:"threads"`
	CacheDir     string   `mapstructure:"cache_dir"`
	DatasetPath  string   `mapstructure:"dataset_path"`
	ModelPath    string   `mapstructure:"model_path"`
	Hidden       int      `mapstructure:"hidden"`
	Epochs       int      `mapstructure:"epochs"`
	BatchSize    int      `mapstructure:"batch_size"`
	LearningRate float64  `mapstructure:"learning_rate"`
	TrainSplit   float64  `mapstructure:"train_split"`
	Seed         int64    `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("moves_dir", "moves")
	v.SetDefault("trees_dir", "trees")
	v.SetDefault("weights", []string{"lc0", "maia"})
	v.SetDefault("mean_path", "shared/mean.csv")
	v.SetDefault("std_path", "shared/std.csv")
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("cache_dir", "")
	v.SetDefault("dataset_path", "dataset.csv")
	v.SetDefault("model_path", "shared/model.nn")
	v.SetDefault("hidden", 25)
	v.SetDefault("epochs", 21)
	v.SetDefault("batch_size", 256)
	v.SetDefault("learning_rate", 0.001)
	v.SetDefault("train_split", 0.9)
	v.SetDefault("seed", 1)
}

// Setup reads the optional config file, then BRILLIANT_* environment
// variables, then overrides, each taking precedence over the previous.
func Setup(cfgPath string, overrides map[string]string) (*Config, error) {
	var v = viper.New()
	setDefaults(v)

	v.SetEnvPrefix("brilliant")
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %v: %w", cfgPath, err)
		}
	}

	for key, value := range overrides {
		if key == "weights" {
			v.Set(key, strings.Split(value, ","))
			continue
		}
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Weights) != 2 {
		return fmt.Errorf("two weight sets expected, got %v", c.Weights)
	}
	for _, w := range c.Weights {
		if strings.TrimSpace(w) == "" {
			return errors.New("empty weight set name")
		}
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.TrainSplit <= 0 || c.TrainSplit > 1 {
		return fmt.Errorf("train_split %v out of (0, 1]", c.TrainSplit)
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("hidden %v must be positive", c.Hidden)
	}
	return nil
}
