package config

import "time"

const (
	// Complaint codes
	CodePrefix     = "NGR"
	CodeDigits     = 6
	CodeClaimTTL   = 30 * 24 * time.Hour
	CodeMaxRetries = 5

	// Notification schedule (delays relative to arming)
	ConfirmationDelay    = 0
	AcknowledgementDelay = 5 * time.Second
	ResolutionDelay      = 30 * time.Second

	// Scheduler worker
	SchedulerPollInterval = 250 * time.Millisecond
	StageRetryBackoff     = 2 * time.Second
	StageMaxAttempts      = 3

	// Media analysis
	AnalysisTimeout = 20 * time.Second

	// Media uploads
	MaxImageUploadBytes = 10 << 20
	MaxVoiceUploadBytes = 5 << 20
	ImageMaxWidth       = 1600
	ImageMaxHeight      = 1600
	ImageJPEGQuality    = 80
)
