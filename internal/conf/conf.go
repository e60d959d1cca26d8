package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of configs/config.yaml.
type Bootstrap struct {
	Server       *Server       `json:"server"`
	Data         *Data         `json:"data"`
	Ranking      *Ranking      `json:"ranking"`
	Recommend    *Recommend    `json:"recommend"`
	Housekeeping *Housekeeping `json:"housekeeping"`
}

type Server struct {
	HTTP *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database    *Data_Database    `json:"database"`
	Redis       *Data_Redis       `json:"redis"`
	SocialGraph *Data_SocialGraph `json:"social_graph"`
}

type Data_Database struct {
	Driver string              `json:"driver"`
	Source string              `json:"source"`
	Pool   *Data_Database_Pool `json:"pool"`
	// Migrations is the directory holding the golang-migrate files.
	Migrations string `json:"migrations"`
}

type Data_Database_Pool struct {
	MaxOpenConns    int32 `json:"max_open_conns"`
	MinIdleConns    int32 `json:"min_idle_conns"`
	MaxConnLifetime int32 `json:"max_conn_lifetime"`  // minutes
	MaxConnIdleTime int32 `json:"max_conn_idle_time"` // minutes
}

type Data_Redis struct {
	Network      string   `json:"network"`
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	DB           int      `json:"db"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

type Data_SocialGraph struct {
	Breaker *Data_SocialGraph_Breaker `json:"breaker"`
}

type Data_SocialGraph_Breaker struct {
	MaxRequests      uint32   `json:"max_requests"`
	Interval         Duration `json:"interval"`
	Timeout          Duration `json:"timeout"`
	FailureThreshold uint32   `json:"failure_threshold"`
}

// Ranking holds the explore scoring weights.
// Ranking weights are pointers so an explicit zero can switch a signal off.
type Ranking struct {
	LikeWeight     *float64 `json:"like_weight"`
	CommentWeight  *float64 `json:"comment_weight"`
	RecencyWeight  *float64 `json:"recency_weight"`
	RecencyHorizon Duration `json:"recency_horizon"`
}

type Recommend struct {
	CacheTTL          Duration                `json:"cache_ttl"`
	CandidatePoolSize int32                   `json:"candidate_pool_size"`
	MaxResults        int                     `json:"max_results"`
	DefaultLimit      int                     `json:"default_limit"`
	FollowBoost       float64                 `json:"follow_boost"`
	ComputeTimeout    Duration                `json:"compute_timeout"`
	Experiments       []*Recommend_Experiment `json:"experiments"`
}

type Recommend_Experiment struct {
	Algorithm string `json:"algorithm"`
	Weight    int    `json:"weight"`
}

type Housekeeping struct {
	Enabled       bool     `json:"enabled"`
	SweepSchedule string   `json:"sweep_schedule"`
	SafetyMargin  Duration `json:"safety_margin"`
}

// Duration decodes "1.5s", "15m" style strings as well as plain nanosecond numbers.
type Duration time.Duration

func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
}
