package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type AppConfig struct {
	RDS      *redis.Client  `yaml:"-"`
	DB       *gorm.DB       `yaml:"-"`
	Logger   *logrus.Logger `yaml:"-"`
	NatsConn *nats.Conn     `yaml:"-"`

	RootWorkingDir    string            `yaml:"-"`
	Client            ClientInfo        `yaml:"client"`
	LogSettings       LogSettings       `yaml:"log_settings"`
	LivekitInfo       LivekitInfo       `yaml:"livekit_info"`
	RoomSettings      RoomSettings      `yaml:"room_settings"`
	UserServiceInfo   UserServiceInfo   `yaml:"user_service_info"`
	NatsInfo          NatsInfo          `yaml:"nats_info"`
	RedisInfo         RedisInfo         `yaml:"redis_info"`
	DatabaseInfo      DatabaseInfo      `yaml:"database_info"`
	RecorderSettings  RecorderSettings  `yaml:"recorder_settings"`
	TranscriptionInfo TranscriptionInfo `yaml:"transcription_info"`
}

type ClientInfo struct {
	Port           int            `yaml:"port"`
	Debug          bool           `yaml:"debug"`
	ApiKey         string         `yaml:"api_key"`
	Secret         string         `yaml:"secret"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
	ProxyHeader    string         `yaml:"proxy_header"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogFile    string  `yaml:"log_file"`
	MaxSize    int     `yaml:"max_size"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAge     int     `yaml:"max_age"`
	LogLevel   *string `yaml:"log_level"`

	// Format is either "text" or "json".
	Format string `yaml:"format"`
}

type LivekitInfo struct {
	Host          string        `yaml:"host"`
	ApiKey        string        `yaml:"api_key"`
	Secret        string        `yaml:"secret"`
	TokenValidity time.Duration `yaml:"token_validity"`
}

// IsConfigured reports whether join credentials can be signed and the
// provider reached.
func (l LivekitInfo) IsConfigured() bool {
	return l.Host != "" && l.ApiKey != "" && l.Secret != ""
}

type RoomSettings struct {
	// CodeCase is either "lower" or "upper".
	CodeCase              string        `yaml:"code_case"`
	EvictionInterval      time.Duration `yaml:"eviction_interval"`
	RoomTTL               time.Duration `yaml:"room_ttl"`
	ProviderLookupTimeout time.Duration `yaml:"provider_lookup_timeout"`
}

type UserServiceInfo struct {
	Url     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type NatsInfo struct {
	Enabled  bool         `yaml:"enabled"`
	NatsUrls []string     `yaml:"nats_urls"`
	User     string       `yaml:"user"`
	Password string       `yaml:"password"`
	Nkey     *string      `yaml:"nkey"`
	Subjects NatsSubjects `yaml:"subjects"`
}

type NatsSubjects struct {
	RoomEvents string `yaml:"room_events"`
}

type RedisInfo struct {
	Host              string   `yaml:"host"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DBName            int      `yaml:"db"`
	UseTLS            bool     `yaml:"use_tls"`
	MasterName        string   `yaml:"sentinel_master_name"`
	SentinelUsername  string   `yaml:"sentinel_username"`
	SentinelPassword  string   `yaml:"sentinel_password"`
	SentinelAddresses []string `yaml:"sentinel_addresses"`
}

type DatabaseInfo struct {
	Host            string          `yaml:"host"`
	Port            int32           `yaml:"port"`
	Username        string          `yaml:"username"`
	Password        string          `yaml:"password"`
	DBName          string          `yaml:"db"`
	Prefix          string          `yaml:"prefix"`
	Charset         *string         `yaml:"charset"`
	Loc             *string         `yaml:"loc"`
	ConnMaxLifetime *time.Duration  `yaml:"conn_max_lifetime"`
	MaxOpenConns    *int            `yaml:"max_open_conns"`
	Replicas        []ReplicaDBInfo `yaml:"replicas"`
}

// ReplicaDBInfo holds connection details for a read replica database.
type ReplicaDBInfo struct {
	Host     string `yaml:"host"`
	Port     int32  `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RecorderSettings struct {
	ServerUrl     string        `yaml:"server_url"`
	Quota         time.Duration `yaml:"quota"` // capped at DefaultRecordingQuota
	TickInterval  time.Duration `yaml:"tick_interval"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	JoinMedia     bool          `yaml:"join_media"`
	Capture       CaptureInfo   `yaml:"capture"`
	StateStore    StateStore    `yaml:"state_store"`
}

type CaptureInfo struct {
	// Source is either "ffmpeg" (local device) or "livekit" (room audio).
	Source string `yaml:"source"`

	// Participant is the identity whose microphone is recorded when
	// Source is "livekit". Empty follows the first audio track.
	Participant string   `yaml:"participant"`
	FFmpegPath  string   `yaml:"ffmpeg_path"`
	InputFormat string   `yaml:"input_format"`
	InputDevice string   `yaml:"input_device"`
	SampleRate  int      `yaml:"sample_rate"`
	ExtraArgs   []string `yaml:"extra_args"`
}

type StateStore struct {
	// Driver is one of "file", "redis" or "database".
	Driver string        `yaml:"driver"`
	Path   string        `yaml:"path"`
	Expiry time.Duration `yaml:"expiry"`
}

type TranscriptionInfo struct {
	// Provider is either "openai" (any OpenAI compatible endpoint) or "google".
	Provider       string        `yaml:"provider"`
	ApiKey         string        `yaml:"api_key"`
	BaseUrl        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	Language       string        `yaml:"language"`
	Temperature    float64       `yaml:"temperature"`
	MaxWorkers     int           `yaml:"max_workers"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ReadYamlConfigFile reads and parses the config file, without applying defaults.
func ReadYamlConfigFile(filename string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	appCnf := new(AppConfig)
	err = yaml.Unmarshal(yamlFile, appCnf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	appCnf.RootWorkingDir = wd

	return appCnf, nil
}

// New applies default values and validates the config.
func New(appCnf *AppConfig) (*AppConfig, error) {
	if appCnf == nil {
		return nil, errors.New("config can't be nil")
	}
	if appCnf.Client.Port == 0 {
		appCnf.Client.Port = DefaultPort
	}
	if appCnf.Client.PrometheusConf.MetricsPath == "" {
		appCnf.Client.PrometheusConf.MetricsPath = "/metrics"
	}

	// default validation of token is 10 minutes
	if appCnf.LivekitInfo.TokenValidity <= 0 {
		appCnf.LivekitInfo.TokenValidity = DefaultTokenValidity
	}

	rs := &appCnf.RoomSettings
	rs.CodeCase = strings.ToLower(rs.CodeCase)
	switch rs.CodeCase {
	case "":
		rs.CodeCase = CodeCaseLower
	case CodeCaseLower, CodeCaseUpper:
	default:
		return nil, fmt.Errorf("invalid room_settings.code_case %q", rs.CodeCase)
	}
	if rs.EvictionInterval <= 0 {
		rs.EvictionInterval = DefaultEvictionInterval
	}
	if rs.RoomTTL <= 0 {
		rs.RoomTTL = DefaultRoomTTL
	}
	if rs.ProviderLookupTimeout <= 0 {
		rs.ProviderLookupTimeout = DefaultProviderLookupTimeout
	}
	if appCnf.UserServiceInfo.Timeout <= 0 {
		appCnf.UserServiceInfo.Timeout = DefaultUserServiceTimeout
	}
	if appCnf.NatsInfo.Subjects.RoomEvents == "" {
		appCnf.NatsInfo.Subjects.RoomEvents = DefaultRoomEventsSubject
	}

	rc := &appCnf.RecorderSettings
	// a config file may shorten the quota, never extend it
	if rc.Quota <= 0 || rc.Quota > DefaultRecordingQuota {
		rc.Quota = DefaultRecordingQuota
	}
	if rc.TickInterval <= 0 {
		rc.TickInterval = DefaultTickInterval
	}
	if rc.FlushInterval <= 0 {
		rc.FlushInterval = DefaultFlushInterval
	}
	switch rc.Capture.Source {
	case "":
		rc.Capture.Source = CaptureSourceFFmpeg
	case CaptureSourceFFmpeg, CaptureSourceLivekit:
	default:
		return nil, fmt.Errorf("invalid recorder_settings.capture.source %q", rc.Capture.Source)
	}
	if rc.Capture.FFmpegPath == "" {
		rc.Capture.FFmpegPath = "ffmpeg"
	}
	if rc.Capture.SampleRate <= 0 {
		rc.Capture.SampleRate = DefaultSampleRate
	}
	if rc.StateStore.Driver == "" {
		rc.StateStore.Driver = StateStoreFile
	}
	if rc.StateStore.Expiry <= 0 {
		rc.StateStore.Expiry = DefaultStateExpiry
	}
	if rc.StateStore.Driver == StateStoreFile {
		p := rc.StateStore.Path
		if p == "" {
			p = "./room_state"
		}
		if strings.HasPrefix(p, "./") && appCnf.RootWorkingDir != "" {
			p = filepath.Join(appCnf.RootWorkingDir, p)
		}
		rc.StateStore.Path = p
	}

	ti := &appCnf.TranscriptionInfo
	if ti.Provider == "" {
		ti.Provider = TranscriptionProviderOpenAI
	}
	if ti.Provider == TranscriptionProviderOpenAI {
		if ti.BaseUrl == "" {
			ti.BaseUrl = DefaultTranscriptionBaseUrl
		}
		if ti.Model == "" {
			ti.Model = DefaultTranscriptionModel
		}
	}
	if ti.Provider == TranscriptionProviderGoogle && ti.Model == "" {
		ti.Model = DefaultGoogleTranscriptionModel
	}
	if ti.Language == "" {
		ti.Language = DefaultTranscriptionLanguage
	}
	if ti.MaxWorkers <= 0 {
		ti.MaxWorkers = DefaultTranscriptionWorkers
	}
	if ti.RequestTimeout <= 0 {
		ti.RequestTimeout = DefaultTranscriptionTimeout
	}

	if appCnf.DatabaseInfo.Prefix != "" {
		dbTablePrefix = appCnf.DatabaseInfo.Prefix
	}

	return appCnf, nil
}

var dbTablePrefix string

func FormatDBTable(table string) string {
	if dbTablePrefix != "" {
		return dbTablePrefix + table
	}
	return table
}
