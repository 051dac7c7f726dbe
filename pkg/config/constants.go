package config

import "time"

const (
	DefaultPort          = 4000
	DefaultTokenValidity = 10 * time.Minute

	CodeCaseLower = "lower"
	CodeCaseUpper = "upper"

	DefaultEvictionInterval      = 5 * time.Minute
	DefaultRoomTTL               = time.Hour
	DefaultProviderLookupTimeout = 5 * time.Second
	DefaultUserServiceTimeout    = 5 * time.Second
	DefaultRoomEventsSubject     = "classroom.room_events"

	DefaultRecordingQuota = 10 * time.Minute
	DefaultTickInterval   = time.Second
	DefaultFlushInterval  = 30 * time.Second
	DefaultSampleRate     = 16000
	DefaultTrackWait      = 30 * time.Second

	CaptureSourceFFmpeg  = "ffmpeg"
	CaptureSourceLivekit = "livekit"

	StateStoreFile     = "file"
	StateStoreRedis    = "redis"
	StateStoreDatabase = "database"
	DefaultStateExpiry = 24 * time.Hour

	TranscriptionProviderOpenAI     = "openai"
	TranscriptionProviderGoogle     = "google"
	DefaultTranscriptionBaseUrl     = "https://api.groq.com/openai/v1/"
	DefaultTranscriptionModel       = "whisper-large-v3"
	DefaultGoogleTranscriptionModel = "gemini-2.5-flash"
	DefaultTranscriptionLanguage    = "vi"
	DefaultTranscriptionWorkers     = 4
	DefaultTranscriptionTimeout     = 60 * time.Second
)
